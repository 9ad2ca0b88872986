package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrDLQEntryNotFound indicates the referenced dead letter entry no longer
// exists, typically because it was requeued or purged concurrently.
var ErrDLQEntryNotFound = errors.New("queue: dlq entry not found")

// DLQEntry is a dead lettered task as stored in Redis. Token is the opaque
// handle used to requeue or delete the exact entry.
type DLQEntry struct {
	Kind           string          `json:"kind"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
	Attempts       int             `json:"attempts"`
	LastError      string          `json:"lastError,omitempty"`
	Payload        json.RawMessage `json:"payload"`
	Token          string          `json:"token"`
}

// DLQ reads and drains the dead letter lists written by Worker.
type DLQ struct {
	R      *redis.Client
	Prefix string
}

func (d DLQ) key(kind string) string {
	if d.Prefix == "" {
		return fmt.Sprintf("queue:%s:dlq", kind)
	}
	return fmt.Sprintf("%s:%s:dlq", d.Prefix, kind)
}

// List returns a page of dead letter entries for the kind, newest first,
// together with the total list length.
func (d DLQ) List(ctx context.Context, kind string, limit, offset int) ([]DLQEntry, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	key := d.key(kind)
	total, err := d.R.LLen(ctx, key).Result()
	if err != nil {
		return nil, 0, err
	}
	raws, err := d.R.LRange(ctx, key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, 0, err
	}
	entries := make([]DLQEntry, 0, len(raws))
	for _, raw := range raws {
		msg, err := decodeMessage(raw)
		if err != nil {
			continue
		}
		entries = append(entries, DLQEntry{
			Kind:           msg.Kind,
			IdempotencyKey: msg.Key,
			Attempts:       msg.Attempt,
			LastError:      msg.LastError,
			Payload:        json.RawMessage(msg.Payload),
			Token:          raw,
		})
	}
	return entries, total, nil
}

// Size returns the number of dead letter entries for the kind.
func (d DLQ) Size(ctx context.Context, kind string) (int64, error) {
	return d.R.LLen(ctx, d.key(kind)).Result()
}

// Delete removes the entry identified by token.
func (d DLQ) Delete(ctx context.Context, kind, token string) error {
	removed, err := d.R.LRem(ctx, d.key(kind), 1, token).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrDLQEntryNotFound
	}
	QueueDLQSize.WithLabelValues(kind).Dec()
	return nil
}

// Requeue moves the entry identified by token back onto its queue with a
// fresh attempt budget.
func (d DLQ) Requeue(ctx context.Context, kind, token string, enq Enqueuer) error {
	msg, err := decodeMessage(token)
	if err != nil {
		return fmt.Errorf("queue: malformed dlq token: %w", err)
	}
	removed, err := d.R.LRem(ctx, d.key(kind), 1, token).Result()
	if err != nil {
		return err
	}
	if removed == 0 {
		return ErrDLQEntryNotFound
	}
	QueueDLQSize.WithLabelValues(kind).Dec()
	return enq.Enqueue(ctx, Task{
		Kind:           msg.Kind,
		Payload:        msg.Payload,
		IdempotencyKey: msg.Key,
		MaxAttempts:    msg.MaxAttempts,
	})
}
