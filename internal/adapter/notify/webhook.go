// Package notify forwards change notifications to the host.
package notify

import (
	"context"
	"errors"
	"fmt"
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"github.com/burenotti/nutrition_counselling/internal/domain/session"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var ErrDeliveryFailed = errors.New("change notification delivery failed")

// Webhook posts each notification payload as plain text to the host. With an
// empty URL notifications are only logged.
type Webhook struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

func NewWebhook(url string, timeout time.Duration, logger *slog.Logger) *Webhook {
	return &Webhook{
		url:     url,
		client:  &http.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

// Handle is a message bus handler. Events that are not notifications are
// ignored.
func (w *Webhook) Handle(event domain.Event) error {
	n, ok := event.(session.Notification)
	if !ok {
		return nil
	}
	payload, err := n.Payload()
	if err != nil {
		return err
	}

	logger := w.logger.With("type", n.Type(), "payload", payload)
	if w.url == "" {
		logger.Info("change notification")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, strings.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("X-Notification-Type", n.Type())
	if ref, ok := event.(interface{ Reference() (string, string) }); ok {
		sessionID, counsellingID := ref.Reference()
		req.Header.Set("X-Session-Id", sessionID)
		req.Header.Set("X-Counselling-Id", counsellingID)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return errors.Join(err, ErrDeliveryFailed)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: host answered %d", ErrDeliveryFailed, resp.StatusCode)
	}
	logger.Debug("change notification delivered")
	return nil
}
