package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// ErrNotFound indicates the requested draft does not exist or has expired.
var ErrNotFound = errors.New("draft not found")

// Store persists draft sessions as JSON documents in Redis. The TTL is
// refreshed on every write so an active editing session never expires
// mid-edit.
type Store struct {
	R   *redis.Client
	TTL time.Duration
}

func (s Store) ttl() time.Duration {
	if s.TTL <= 0 {
		return 24 * time.Hour
	}
	return s.TTL
}

func draftKey(id string) string {
	return "draft:" + id
}

// Get loads the draft by id.
func (s Store) Get(ctx context.Context, id string) (Draft, error) {
	if s.R == nil {
		return Draft{}, errors.New("draft store not configured")
	}
	data, err := s.R.Get(ctx, draftKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Draft{}, ErrNotFound
		}
		return Draft{}, err
	}
	var d Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return Draft{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return d, nil
}

// Put stores the draft and refreshes its TTL.
func (s Store) Put(ctx context.Context, d Draft) error {
	if s.R == nil {
		return errors.New("draft store not configured")
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.R.Set(ctx, draftKey(d.ID), data, s.ttl()).Err()
}

// Delete drops the draft. Missing keys are not an error.
func (s Store) Delete(ctx context.Context, id string) error {
	if s.R == nil {
		return errors.New("draft store not configured")
	}
	return s.R.Del(ctx, draftKey(id)).Err()
}
