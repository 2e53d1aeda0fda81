package messagebus

import (
	"errors"
	"github.com/burenotti/nutrition_counselling/internal/domain"
	"log/slog"
	"sync"
)

var ErrClosed = errors.New("message bus closed")

// AnyEvent subscribes a handler to every event type.
const AnyEvent = "*"

type EventHandler func(event domain.Event) error

// MessageBus delivers events to handlers on a single worker goroutine, so
// handlers observe events in publish order.
type MessageBus struct {
	logger     *slog.Logger
	handlersMu sync.RWMutex
	handlers   map[string][]EventHandler
	mu         sync.RWMutex
	queue      chan domain.Event
	closed     bool
	wg         sync.WaitGroup
}

func New(logger *slog.Logger, buffer int) *MessageBus {
	b := &MessageBus{
		logger:   logger,
		handlers: make(map[string][]EventHandler),
		queue:    make(chan domain.Event, buffer),
	}
	b.wg.Add(1)
	go b.run()
	return b
}

func (b *MessageBus) Register(eventType string, handler EventHandler) {
	b.handlersMu.Lock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	b.handlersMu.Unlock()
}

func (b *MessageBus) PublishEvents(events ...domain.Event) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	for _, event := range events {
		b.queue <- event
	}
	return nil
}

// Close stops accepting events and waits until queued ones are handled.
func (b *MessageBus) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *MessageBus) run() {
	defer b.wg.Done()
	for event := range b.queue {
		b.handlersMu.RLock()
		handlers := append(append([]EventHandler(nil), b.handlers[event.Type()]...), b.handlers[AnyEvent]...)
		b.handlersMu.RUnlock()

		for _, handler := range handlers {
			if err := handler(event); err != nil {
				b.logger.Error("failed to handle event", "type", event.Type(), "err", err)
			}
		}
	}
}
