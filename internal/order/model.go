package order

import (
	"encoding/json"
	"time"

	"github.com/agrovendas/sales-api/internal/draft"
	"github.com/agrovendas/sales-api/internal/pricing"
)

// Status tracks an order through the approval workflow.
type Status string

const (
	// StatusAwaitingApproval is the state of every freshly submitted order.
	StatusAwaitingApproval Status = "awaiting_approval"
	// StatusValidated marks an order approved by a reviewer.
	StatusValidated Status = "validated"
)

// Valid reports whether s is a known workflow status.
func (s Status) Valid() bool {
	return s == StatusAwaitingApproval || s == StatusValidated
}

// Record is a persisted sales order.
type Record struct {
	ID        string           `json:"id"`
	Client    draft.ClientInfo `json:"client"`
	Order     pricing.Order    `json:"order"`
	Status    Status           `json:"status"`
	OrderDate time.Time        `json:"orderDate"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// UnmarshalJSON decodes a record, treating lines from payloads that predate
// the manualPrice flag as pinned. Those lines were stored with their final
// unit price and no way to tell tier pricing from an override, so repricing
// them on edit would silently change agreed amounts.
func (rec *Record) UnmarshalJSON(data []byte) error {
	type alias Record
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*rec = Record(a)

	var probe struct {
		Order struct {
			Lines []map[string]json.RawMessage `json:"lines"`
		} `json:"order"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil
	}
	for i, ln := range probe.Order.Lines {
		if i >= len(rec.Order.Lines) {
			break
		}
		if _, ok := ln["manualPrice"]; !ok {
			rec.Order.Lines[i].ManualPrice = true
		}
	}
	return nil
}

// DueDates derives the installment due dates for the record, or nil for
// upfront orders.
func (rec Record) DueDates() []time.Time {
	if rec.Order.PaymentMethod != pricing.Installment || rec.Order.Schedule == "" {
		return nil
	}
	dates, err := pricing.DueDates(rec.Order.Schedule, rec.OrderDate)
	if err != nil {
		return nil
	}
	return dates
}
