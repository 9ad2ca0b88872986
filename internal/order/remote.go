package order

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// RemoteStore persists orders through a third-party HTTP API exposing plain
// CRUD under /orders. Failures are surfaced to the caller and logged; there
// is no retry here because submission is already idempotency-guarded at the
// HTTP layer.
type RemoteStore struct {
	BaseURL string
	HTTP    *http.Client
	Logger  *zerolog.Logger
}

func (s RemoteStore) client() *http.Client {
	if s.HTTP != nil {
		return s.HTTP
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (s RemoteStore) url(parts ...string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	if len(parts) == 0 {
		return base + "/orders"
	}
	return base + "/orders/" + strings.Join(parts, "/")
}

func (s RemoteStore) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error().Err(err).Str("method", method).Str("url", rawURL).Msg("orders api request failed")
		}
		return fmt.Errorf("orders api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		if s.Logger != nil {
			s.Logger.Error().Int("status", resp.StatusCode).Str("method", method).Str("url", rawURL).Msg("orders api returned error status")
		}
		return fmt.Errorf("orders api: unexpected status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("orders api: decode response: %w", err)
	}
	return nil
}

func (s RemoteStore) Create(ctx context.Context, rec Record) (Record, error) {
	var out Record
	if err := s.do(ctx, http.MethodPost, s.url(), rec, &out); err != nil {
		return Record{}, err
	}
	if out.ID == "" {
		out = rec
	}
	return out, nil
}

func (s RemoteStore) Get(ctx context.Context, id string) (Record, error) {
	var out Record
	if err := s.do(ctx, http.MethodGet, s.url(url.PathEscape(id)), nil, &out); err != nil {
		return Record{}, err
	}
	return out, nil
}

func (s RemoteStore) List(ctx context.Context, status Status) ([]Record, error) {
	listURL := s.url()
	if status != "" {
		listURL += "?status=" + url.QueryEscape(string(status))
	}
	var out []Record
	if err := s.do(ctx, http.MethodGet, listURL, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s RemoteStore) Update(ctx context.Context, rec Record) (Record, error) {
	var out Record
	if err := s.do(ctx, http.MethodPut, s.url(url.PathEscape(rec.ID)), rec, &out); err != nil {
		return Record{}, err
	}
	if out.ID == "" {
		out = rec
	}
	return out, nil
}

func (s RemoteStore) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, s.url(url.PathEscape(id)), nil, nil)
}
