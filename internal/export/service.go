package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/agrovendas/sales-api/internal/obs"
	"github.com/agrovendas/sales-api/internal/order"
	"github.com/agrovendas/sales-api/internal/queue"
)

// TaskKind is the queue task kind for asynchronous document generation.
const TaskKind = "order-export"

type taskPayload struct {
	OrderID string `json:"orderId"`
}

type recordSource interface {
	Get(ctx context.Context, id string) (order.Record, error)
}

// Service generates order documents and stores them on disk. It serves both
// the synchronous download endpoint and the background export worker.
type Service struct {
	Orders recordSource
	Dir    string
	Logger *zerolog.Logger
}

func (s Service) path(orderID string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("pedido-%s.xlsx", orderID))
}

func (s Service) count(result string) {
	if obs.ExportJobsTotal != nil {
		obs.ExportJobsTotal.WithLabelValues(result).Inc()
	}
}

// Generate builds the document for the order and writes it to the export
// directory, returning the file path.
func (s Service) Generate(ctx context.Context, orderID string) (string, error) {
	rec, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		s.count("error")
		return "", err
	}
	data, err := Workbook(rec)
	if err != nil {
		s.count("error")
		return "", err
	}
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		s.count("error")
		return "", err
	}
	path := s.path(orderID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.count("error")
		return "", err
	}
	s.count("ok")
	if s.Logger != nil {
		s.Logger.Info().Str("order_id", orderID).Str("path", path).Msg("order document exported")
	}
	return path, nil
}

// Document returns the stored document for the order, generating it on the
// fly when the background job has not produced it yet.
func (s Service) Document(ctx context.Context, orderID string) (string, []byte, error) {
	path := s.path(orderID)
	data, err := os.ReadFile(path)
	if err == nil {
		return filepath.Base(path), data, nil
	}
	if !os.IsNotExist(err) {
		return "", nil, err
	}
	path, err = s.Generate(ctx, orderID)
	if err != nil {
		return "", nil, err
	}
	data, err = os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(path), data, nil
}

// HandleTask processes an export queue task.
func (s Service) HandleTask(ctx context.Context, t queue.Task) error {
	var p taskPayload
	if err := json.Unmarshal(t.Payload, &p); err != nil {
		return fmt.Errorf("decode export task: %w", err)
	}
	if p.OrderID == "" {
		return fmt.Errorf("export task without order id")
	}
	_, err := s.Generate(ctx, p.OrderID)
	return err
}

// Enqueue returns an enqueue function for scheduling exports after order
// submission. The order id doubles as the idempotency key so repeated
// submissions of the same order collapse into one pending job.
func Enqueue(enq queue.Enqueuer, maxAttempts int) func(ctx context.Context, orderID string) error {
	return func(ctx context.Context, orderID string) error {
		payload, err := json.Marshal(taskPayload{OrderID: orderID})
		if err != nil {
			return err
		}
		return enq.Enqueue(ctx, queue.Task{
			Kind:           TaskKind,
			Payload:        payload,
			IdempotencyKey: orderID,
			MaxAttempts:    maxAttempts,
		})
	}
}
