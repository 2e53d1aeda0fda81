// Package webapi reads counselling records from the data platform Web API.
package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/burenotti/nutrition_counselling/internal/domain/metabolic"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrUnexpectedResponse = errors.New("unexpected web api response")

const apiPath = "/api/data/v9.2/"

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithToken sets a bearer token issued to the service by the platform.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Retrieve issues a single GET for the record. Not found and permission
// errors map to the metabolic sentinels; nothing is retried.
func (c *Client) Retrieve(
	ctx context.Context,
	counsellingID string,
	spec metabolic.FieldSpec,
) (*metabolic.RawRecord, error) {
	u := fmt.Sprintf("%s%s%s(%s)%s",
		c.baseURL, apiPath, entitySet(spec.Entity), url.PathEscape(counsellingID), spec.Query())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, metabolic.ErrRecordNotFound
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, metabolic.ErrAccessDenied
	case resp.StatusCode == http.StatusNoContent:
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnexpectedResponse, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, errors.Join(fmt.Errorf("decode record: %w", err), ErrUnexpectedResponse)
	}
	if doc == nil {
		return nil, nil
	}
	return decodeRecord(doc, spec)
}

func decodeRecord(doc map[string]json.RawMessage, spec metabolic.FieldSpec) (*metabolic.RawRecord, error) {
	raw := &metabolic.RawRecord{}
	if err := decodeFields(doc, spec.Select, raw); err != nil {
		return nil, err
	}

	if spec.Expand == "" {
		return raw, nil
	}
	member, ok := doc[spec.Expand]
	if !ok || string(member) == "null" {
		return raw, nil
	}
	var memberDoc map[string]json.RawMessage
	if err := json.Unmarshal(member, &memberDoc); err != nil {
		return nil, errors.Join(fmt.Errorf("decode %s: %w", spec.Expand, err), ErrUnexpectedResponse)
	}
	if err := decodeFields(memberDoc, spec.ExpandSelect, raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func decodeFields(doc map[string]json.RawMessage, fields []string, raw *metabolic.RawRecord) error {
	for _, f := range fields {
		value, ok := doc[f]
		if !ok {
			continue
		}
		dest := raw.Target(f)
		if dest == nil {
			return fmt.Errorf("%w: field %s is not supported", ErrUnexpectedResponse, f)
		}
		if err := json.Unmarshal(value, dest); err != nil {
			return errors.Join(fmt.Errorf("decode %s: %w", f, err), ErrUnexpectedResponse)
		}
	}
	return nil
}

// entitySet returns the Web API collection name of an entity.
func entitySet(entity string) string {
	if strings.HasSuffix(entity, "s") {
		return entity + "es"
	}
	return entity + "s"
}
