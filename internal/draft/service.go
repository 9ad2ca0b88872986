package draft

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agrovendas/sales-api/internal/obs"
	"github.com/agrovendas/sales-api/internal/pricing"
)

// ErrInvalidInput indicates a malformed edit request.
var ErrInvalidInput = errors.New("invalid input")

// ClientInfo identifies the buyer of a draft order. Registration is the
// directory key used to look up purchase history.
type ClientInfo struct {
	Registration string `json:"registration"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	TradeName    string `json:"tradeName"`
	CNPJ         string `json:"cnpj"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
}

// Draft is an in-progress order editing session. Every mutation derives a
// fully recalculated Order, so a stored draft is always internally
// consistent: totals, line weights and tier prices reflect the current
// lines.
type Draft struct {
	ID        string        `json:"id"`
	Client    ClientInfo    `json:"client"`
	Order     pricing.Order `json:"order"`
	OrderDate time.Time     `json:"orderDate"`
	EditOf    string        `json:"editOf,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// View is a Draft enriched with derived payment due dates. Due dates are
// recomputed per response rather than stored so a schedule change never
// leaves stale dates behind.
type View struct {
	Draft
	DueDates []time.Time `json:"dueDates,omitempty"`
}

type catalogSource interface {
	Catalog(ctx context.Context) (pricing.Catalog, error)
}

// Service manages draft order sessions. Catalog lookups degrade to an
// empty catalog on upstream failure: lines keep their identity and the
// engine tags them unpriced instead of failing the edit.
type Service struct {
	Store   Store
	Catalog catalogSource
	Logger  *zerolog.Logger
	Now     func() time.Time
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) catalog(ctx context.Context) pricing.Catalog {
	cat, err := s.Catalog.Catalog(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Warn().Err(err).Msg("catalog unavailable, pricing degraded")
		}
		return pricing.Catalog{}
	}
	return cat
}

func (s Service) view(d Draft) View {
	v := View{Draft: d}
	if d.Order.PaymentMethod == pricing.Installment && d.Order.Schedule != "" {
		if dates, err := pricing.DueDates(d.Order.Schedule, d.OrderDate); err == nil {
			v.DueDates = dates
		}
	}
	return v
}

// Create opens a new draft for the given client with a single empty line,
// mirroring a fresh order form.
func (s Service) Create(ctx context.Context, client ClientInfo) (View, error) {
	now := s.now()
	d := Draft{
		ID:        uuid.NewString(),
		Client:    client,
		OrderDate: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	d.Order = pricing.AddLine(d.Order)
	d.Order = pricing.Recalc(d.Order, s.catalog(ctx))
	if err := s.Store.Put(ctx, d); err != nil {
		return View{}, err
	}
	return s.view(d), nil
}

// Import stores an externally constructed draft under a fresh id, used
// when reopening a persisted order for editing. The order is recalculated
// against the current catalog; manually pinned prices survive untouched.
func (s Service) Import(ctx context.Context, d Draft) (View, error) {
	now := s.now()
	d.ID = uuid.NewString()
	if d.OrderDate.IsZero() {
		d.OrderDate = now
	}
	d.CreatedAt = now
	d.UpdatedAt = now
	d.Order = s.recalc(ctx, d.Order)
	if err := s.Store.Put(ctx, d); err != nil {
		return View{}, err
	}
	return s.view(d), nil
}

// Get returns the draft by id.
func (s Service) Get(ctx context.Context, id string) (View, error) {
	d, err := s.Store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.view(d), nil
}

// Discard deletes the draft session.
func (s Service) Discard(ctx context.Context, id string) error {
	return s.Store.Delete(ctx, id)
}

func (s Service) recalc(ctx context.Context, o pricing.Order) pricing.Order {
	if obs.RecalcTotal != nil {
		obs.RecalcTotal.Inc()
	}
	return pricing.Recalc(o, s.catalog(ctx))
}

func (s Service) mutate(ctx context.Context, id string, fn func(pricing.Order) (pricing.Order, error)) (View, error) {
	d, err := s.Store.Get(ctx, id)
	if err != nil {
		return View{}, err
	}
	o, err := fn(d.Order)
	if err != nil {
		return View{}, err
	}
	d.Order = s.recalc(ctx, o)
	d.UpdatedAt = s.now()
	if err := s.Store.Put(ctx, d); err != nil {
		return View{}, err
	}
	return s.view(d), nil
}

// AddLine appends an empty line to the draft.
func (s Service) AddLine(ctx context.Context, id string) (View, error) {
	return s.mutate(ctx, id, func(o pricing.Order) (pricing.Order, error) {
		return pricing.AddLine(o), nil
	})
}

// RemoveLine deletes the line at idx and reprices the remaining lines,
// which may shift every line onto a different tier.
func (s Service) RemoveLine(ctx context.Context, id string, idx int) (View, error) {
	return s.mutate(ctx, id, func(o pricing.Order) (pricing.Order, error) {
		return pricing.RemoveLine(o, idx)
	})
}

// Line edit fields accepted by EditLine.
const (
	FieldProduct   = "product"
	FieldQuantity  = "quantity"
	FieldUnitPrice = "unitPrice"
)

// EditLine applies a single field edit to the line at idx. Editing the
// product or quantity releases any manual price pin on the line; editing
// the unit price pins it.
func (s Service) EditLine(ctx context.Context, id string, idx int, field string, value json.RawMessage) (View, error) {
	return s.mutate(ctx, id, func(o pricing.Order) (pricing.Order, error) {
		switch field {
		case FieldProduct:
			var productID string
			if err := json.Unmarshal(value, &productID); err != nil {
				return o, ErrInvalidInput
			}
			return pricing.SetProduct(o, idx, strings.TrimSpace(productID))
		case FieldQuantity:
			var qty int
			if err := json.Unmarshal(value, &qty); err != nil {
				return o, ErrInvalidInput
			}
			return pricing.SetQuantity(o, idx, qty)
		case FieldUnitPrice:
			var price pricing.Money
			if err := json.Unmarshal(value, &price); err != nil {
				return o, ErrInvalidInput
			}
			return pricing.SetUnitPrice(o, idx, price)
		default:
			return o, ErrInvalidInput
		}
	})
}

// SetPayment sets the payment method and, for installment orders, the
// schedule. Upfront clears any previously chosen schedule.
func (s Service) SetPayment(ctx context.Context, id string, method pricing.Method, schedule string) (View, error) {
	if !method.Valid() {
		return View{}, ErrInvalidInput
	}
	if method == pricing.Installment && !pricing.KnownSchedule(schedule) {
		return View{}, ErrInvalidInput
	}
	return s.mutate(ctx, id, func(o pricing.Order) (pricing.Order, error) {
		o.PaymentMethod = method
		if method == pricing.Installment {
			o.Schedule = schedule
		} else {
			o.Schedule = ""
		}
		return o, nil
	})
}
