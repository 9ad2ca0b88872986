package pricing

import "math"

// Money represents a monetary value stored in minor units.
type Money = int64

// Unbounded marks the threshold of the final tier in a price table.
const Unbounded = math.MaxFloat64

// Tier maps a cumulative order weight threshold (in tons) to a unit price.
// Tables are ordered by ascending threshold and terminated by an Unbounded tier.
type Tier struct {
	UpToTons  float64 `json:"upToTons"`
	UnitPrice Money   `json:"unitPrice"`
}

// Product describes a sellable catalog entry with its weight-tiered price table.
type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Kind         string  `json:"kind"`
	Category     string  `json:"category"`
	UnitWeightKg float64 `json:"unitWeightKg"`
	Tiers        []Tier  `json:"tiers"`
}

// Catalog indexes products by id for line resolution during recalculation.
type Catalog map[string]Product

// PriceFor returns the tier unit price applicable at the given order weight.
// The boundary is inclusive: a weight exactly on a threshold selects that tier.
// The second return value reports whether the product could be priced at all;
// a false result means "unpriced", which callers must not conflate with a
// legitimately free item.
func (p Product) PriceFor(orderWeightTons float64) (Money, bool) {
	for _, t := range p.Tiers {
		if orderWeightTons <= t.UpToTons {
			return t.UnitPrice, true
		}
	}
	return 0, false
}

// Line is a single order line. UnitPrice, LineWeightKg, LineTotal and Priced
// are derived by Recalc; ManualPrice pins UnitPrice against tier repricing.
type Line struct {
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	Quantity     int     `json:"quantity"`
	UnitPrice    Money   `json:"unitPrice"`
	LineWeightKg float64 `json:"lineWeightKg"`
	LineTotal    Money   `json:"lineTotal"`
	ManualPrice  bool    `json:"manualPrice"`
	Priced       bool    `json:"priced"`
}

// Order aggregates lines with derived totals and the payment choice.
type Order struct {
	Lines         []Line  `json:"lines"`
	TotalWeightKg float64 `json:"totalWeightKg"`
	TotalAmount   Money   `json:"totalAmount"`
	PaymentMethod Method  `json:"paymentMethod"`
	Schedule      string  `json:"installmentSchedule,omitempty"`
}

// Recalc derives every computed field of the order from its raw line inputs
// and the catalog. Tier selection uses the order-wide weight, so a heavier
// order can lower the unit price of every non-pinned line in the same pass.
// The function is pure and idempotent; it must run after every line mutation.
func Recalc(o Order, cat Catalog) Order {
	var totalKg float64
	for _, ln := range o.Lines {
		p, ok := cat[ln.ProductID]
		if !ok || ln.Quantity <= 0 {
			continue
		}
		totalKg += p.UnitWeightKg * float64(ln.Quantity)
	}
	orderTons := totalKg / 1000

	lines := make([]Line, len(o.Lines))
	var total Money
	for i, ln := range o.Lines {
		p, ok := cat[ln.ProductID]
		if ok {
			ln.ProductName = p.Name
			ln.LineWeightKg = p.UnitWeightKg * float64(ln.Quantity)
		} else {
			ln.LineWeightKg = 0
		}
		switch {
		case ln.ManualPrice:
			ln.Priced = true
		case ok:
			ln.UnitPrice, ln.Priced = p.PriceFor(orderTons)
		default:
			ln.UnitPrice, ln.Priced = 0, false
		}
		ln.LineTotal = Money(ln.Quantity) * ln.UnitPrice
		lines[i] = ln
		total += ln.LineTotal
	}

	o.Lines = lines
	o.TotalWeightKg = totalKg
	o.TotalAmount = total
	return o
}
