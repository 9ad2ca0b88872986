package order

import (
	"context"
	"errors"
	"time"

	"github.com/agrovendas/sales-api/internal/obs"
)

// ErrNotFound indicates the order does not exist in the backing store.
var ErrNotFound = errors.New("order not found")

// Store abstracts order persistence. Two implementations exist: RemoteStore
// talks to the external orders API and PGStore keeps orders in Postgres.
// Which one runs is a deployment choice made through configuration.
type Store interface {
	Create(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context, status Status) ([]Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id string) error
}

type instrumentedStore struct {
	next Store
}

// Instrument wraps a Store so every call reports latency and outcome to the
// store metrics. Wrapping a nil store returns nil.
func Instrument(s Store) Store {
	if s == nil {
		return nil
	}
	return instrumentedStore{next: s}
}

func observeStore(op string, start time.Time, err error) {
	if obs.StoreRequestLatency == nil {
		return
	}
	result := "ok"
	if err != nil && !errors.Is(err, ErrNotFound) {
		result = "error"
	}
	obs.StoreRequestLatency.WithLabelValues(op, result).Observe(obs.DurationMillis(time.Since(start)))
}

func (s instrumentedStore) Create(ctx context.Context, rec Record) (Record, error) {
	start := time.Now()
	out, err := s.next.Create(ctx, rec)
	observeStore("create", start, err)
	return out, err
}

func (s instrumentedStore) Get(ctx context.Context, id string) (Record, error) {
	start := time.Now()
	out, err := s.next.Get(ctx, id)
	observeStore("get", start, err)
	return out, err
}

func (s instrumentedStore) List(ctx context.Context, status Status) ([]Record, error) {
	start := time.Now()
	out, err := s.next.List(ctx, status)
	observeStore("list", start, err)
	return out, err
}

func (s instrumentedStore) Update(ctx context.Context, rec Record) (Record, error) {
	start := time.Now()
	out, err := s.next.Update(ctx, rec)
	observeStore("update", start, err)
	return out, err
}

func (s instrumentedStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Delete(ctx, id)
	observeStore("delete", start, err)
	return err
}
