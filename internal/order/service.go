package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrovendas/sales-api/internal/draft"
	"github.com/agrovendas/sales-api/internal/obs"
	"github.com/agrovendas/sales-api/internal/pricing"
)

// ErrInvalidState indicates a workflow transition that the order's current
// status does not allow.
var ErrInvalidState = errors.New("invalid order state")

// ValidationError carries the full list of submission problems so the caller
// can fix them all in one round trip.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return "order validation failed: " + strings.Join(e.Issues, "; ")
}

// Service implements the order submission and approval workflow on top of a
// Store. ExportEnqueue, when set, schedules document generation after a
// successful persist; enqueue failures are logged and never fail the
// submission itself.
type Service struct {
	Store         Store
	Drafts        draft.Service
	Validator     *validator.Validate
	Logger        *zerolog.Logger
	Now           func() time.Time
	ExportEnqueue func(ctx context.Context, orderID string) error
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type submitClient struct {
	Registration string `validate:"required"`
	Name         string `validate:"required"`
}

func (s Service) check(d draft.Draft) error {
	var issues []string

	if s.Validator != nil {
		sc := submitClient{Registration: d.Client.Registration, Name: d.Client.Name}
		if err := s.Validator.Struct(sc); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					issues = append(issues, fmt.Sprintf("client %s is required", strings.ToLower(fe.Field())))
				}
			} else {
				issues = append(issues, "client information is invalid")
			}
		}
	}

	if len(d.Order.Lines) == 0 {
		issues = append(issues, "order has no lines")
	}
	for i, ln := range d.Order.Lines {
		switch {
		case ln.ProductID == "":
			issues = append(issues, fmt.Sprintf("line %d has no product", i))
		case ln.Quantity <= 0:
			issues = append(issues, fmt.Sprintf("line %d has no quantity", i))
		case !ln.Priced && !ln.ManualPrice:
			issues = append(issues, fmt.Sprintf("line %d could not be priced", i))
		}
	}

	if !d.Order.PaymentMethod.Valid() {
		issues = append(issues, "payment method not chosen")
	} else if d.Order.PaymentMethod == pricing.Installment && !pricing.KnownSchedule(d.Order.Schedule) {
		issues = append(issues, "installment schedule not chosen")
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func (s Service) countSubmit(result string) {
	if obs.OrdersSubmittedTotal != nil {
		obs.OrdersSubmittedTotal.WithLabelValues(result).Inc()
	}
}

// Submit finalizes the draft into a persisted order awaiting approval. A
// draft opened from an existing order updates that order in place and sends
// it back through approval. On success the draft session is discarded and a
// document export job is scheduled.
func (s Service) Submit(ctx context.Context, draftID string) (Record, error) {
	v, err := s.Drafts.Get(ctx, draftID)
	if err != nil {
		return Record{}, err
	}
	if err := s.check(v.Draft); err != nil {
		s.countSubmit("rejected")
		return Record{}, err
	}

	now := s.now()
	rec := Record{
		ID:        uuid.NewString(),
		Client:    v.Client,
		Order:     v.Order,
		Status:    StatusAwaitingApproval,
		OrderDate: v.OrderDate,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if v.EditOf != "" {
		existing, err := s.Store.Get(ctx, v.EditOf)
		if err != nil {
			s.countSubmit("error")
			return Record{}, err
		}
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		rec, err = s.Store.Update(ctx, rec)
		if err != nil {
			s.countSubmit("error")
			return Record{}, err
		}
	} else {
		rec, err = s.Store.Create(ctx, rec)
		if err != nil {
			s.countSubmit("error")
			return Record{}, err
		}
	}
	s.countSubmit("ok")

	if s.ExportEnqueue != nil {
		if err := s.ExportEnqueue(ctx, rec.ID); err != nil && s.Logger != nil {
			s.Logger.Error().Err(err).Str("order_id", rec.ID).Msg("failed to enqueue document export")
		}
	}
	if err := s.Drafts.Discard(ctx, draftID); err != nil && s.Logger != nil {
		s.Logger.Warn().Err(err).Str("draft_id", draftID).Msg("failed to discard submitted draft")
	}
	return rec, nil
}

// Get loads a persisted order.
func (s Service) Get(ctx context.Context, id string) (Record, error) {
	return s.Store.Get(ctx, id)
}

// List returns persisted orders, optionally filtered by status.
func (s Service) List(ctx context.Context, status Status) ([]Record, error) {
	return s.Store.List(ctx, status)
}

// Replace overwrites a persisted order document in place. The stored record
// must exist; its id and creation time are kept. Edits that need repricing go
// through Edit and a fresh submit instead.
func (s Service) Replace(ctx context.Context, id string, rec Record) (Record, error) {
	existing, err := s.Store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rec.ID = existing.ID
	rec.CreatedAt = existing.CreatedAt
	if !rec.Status.Valid() {
		rec.Status = existing.Status
	}
	rec.UpdatedAt = s.now()
	return s.Store.Update(ctx, rec)
}

// Delete removes a persisted order.
func (s Service) Delete(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

// Validate approves an order awaiting approval.
func (s Service) Validate(ctx context.Context, id string) (Record, error) {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.Status != StatusAwaitingApproval {
		return Record{}, fmt.Errorf("%w: order is %s", ErrInvalidState, rec.Status)
	}
	rec.Status = StatusValidated
	rec.UpdatedAt = s.now()
	rec, err = s.Store.Update(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	if obs.OrdersValidatedTotal != nil {
		obs.OrdersValidatedTotal.WithLabelValues("ok").Inc()
	}
	return rec, nil
}

// Edit reopens a persisted order as a draft session for modification. The
// draft carries a reference back to the order so Submit updates it instead
// of creating a duplicate.
func (s Service) Edit(ctx context.Context, id string) (draft.View, error) {
	rec, err := s.Store.Get(ctx, id)
	if err != nil {
		return draft.View{}, err
	}
	d := draft.Draft{
		Client:    rec.Client,
		Order:     rec.Order,
		OrderDate: rec.OrderDate,
		EditOf:    rec.ID,
	}
	return s.Drafts.Import(ctx, d)
}
