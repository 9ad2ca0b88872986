package queue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/queue"
)

// deadLetter drives a task through all its attempts so it lands in the DLQ.
func deadLetter(t *testing.T, client *redis.Client, prefix, kind string, payload []byte) {
	t.Helper()
	enq := queue.Enqueuer{R: client, Prefix: prefix}
	require.NoError(t, enq.Enqueue(context.Background(), queue.Task{
		Kind:           kind,
		Payload:        payload,
		IdempotencyKey: "dead-1",
		MaxAttempts:    2,
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	worker := queue.Worker{
		R:                 client,
		Prefix:            prefix,
		Kind:              kind,
		Concurrency:       1,
		VisibilityTimeout: time.Second,
		RetryBase:         5 * time.Millisecond,
		Handler: func(ctx context.Context, task queue.Task) error {
			return errors.New("handler always fails")
		},
	}
	go func() { _ = worker.Run(ctx) }()

	dlq := queue.DLQ{R: client, Prefix: prefix}
	require.Eventually(t, func() bool {
		size, err := dlq.Size(context.Background(), kind)
		return err == nil && size == 1
	}, 2*time.Second, 10*time.Millisecond)
	cancel()
}

func TestDLQListAndDelete(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	deadLetter(t, client, "dlqtest", "export", []byte(`{"orderId":"ord-1"}`))

	dlq := queue.DLQ{R: client, Prefix: "dlqtest"}
	entries, total, err := dlq.List(context.Background(), "export", 10, 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	require.Equal(t, "export", entries[0].Kind)
	require.Equal(t, "dead-1", entries[0].IdempotencyKey)
	require.Equal(t, 2, entries[0].Attempts)
	require.Equal(t, "handler always fails", entries[0].LastError)
	require.JSONEq(t, `{"orderId":"ord-1"}`, string(entries[0].Payload))

	require.NoError(t, dlq.Delete(context.Background(), "export", entries[0].Token))
	size, err := dlq.Size(context.Background(), "export")
	require.NoError(t, err)
	require.Zero(t, size)

	require.ErrorIs(t, dlq.Delete(context.Background(), "export", entries[0].Token), queue.ErrDLQEntryNotFound)
}

func TestDLQRequeue(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	deadLetter(t, client, "requeue", "export", []byte(`{"orderId":"ord-2"}`))

	dlq := queue.DLQ{R: client, Prefix: "requeue"}
	entries, _, err := dlq.List(context.Background(), "export", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	enq := queue.Enqueuer{R: client, Prefix: "requeue"}
	require.NoError(t, dlq.Requeue(context.Background(), "export", entries[0].Token, enq))

	size, err := dlq.Size(context.Background(), "export")
	require.NoError(t, err)
	require.Zero(t, size)

	depth, err := client.ZCard(context.Background(), "requeue:queue:export").Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), depth)
}
