package pricing

import (
	"errors"
	"fmt"
)

// ErrLineIndex reports a line index outside the order's line list.
var ErrLineIndex = errors.New("pricing: line index out of range")

// ErrNegativeValue reports a negative quantity or unit price.
var ErrNegativeValue = errors.New("pricing: value must not be negative")

// AddLine appends an empty, unpinned line. The caller must run Recalc afterwards.
func AddLine(o Order) Order {
	o.Lines = append(append([]Line(nil), o.Lines...), Line{})
	return o
}

// RemoveLine drops the line at idx. Removing a line can move the order into a
// lower tier bracket, so the caller must run Recalc on the result.
func RemoveLine(o Order, idx int) (Order, error) {
	if idx < 0 || idx >= len(o.Lines) {
		return o, fmt.Errorf("%w: %d", ErrLineIndex, idx)
	}
	lines := make([]Line, 0, len(o.Lines)-1)
	lines = append(lines, o.Lines[:idx]...)
	lines = append(lines, o.Lines[idx+1:]...)
	o.Lines = lines
	return o, nil
}

// SetProduct switches the line to a different product. All derived fields are
// invalidated and zeroed, and the line is unpinned so the next Recalc prices
// it from the tier table again.
func SetProduct(o Order, idx int, productID string) (Order, error) {
	if idx < 0 || idx >= len(o.Lines) {
		return o, fmt.Errorf("%w: %d", ErrLineIndex, idx)
	}
	lines := append([]Line(nil), o.Lines...)
	lines[idx] = Line{ProductID: productID}
	o.Lines = lines
	return o, nil
}

// SetQuantity updates the line quantity and unpins the line: a quantity change
// means the user wants tier pricing to apply again.
func SetQuantity(o Order, idx int, qty int) (Order, error) {
	if idx < 0 || idx >= len(o.Lines) {
		return o, fmt.Errorf("%w: %d", ErrLineIndex, idx)
	}
	if qty < 0 {
		return o, fmt.Errorf("%w: quantity %d", ErrNegativeValue, qty)
	}
	lines := append([]Line(nil), o.Lines...)
	lines[idx].Quantity = qty
	lines[idx].ManualPrice = false
	o.Lines = lines
	return o, nil
}

// SetUnitPrice pins the line at an explicit unit price. Subsequent Recalc
// passes keep the pinned price regardless of tier changes; only editing the
// line's product or quantity unpins it again.
func SetUnitPrice(o Order, idx int, price Money) (Order, error) {
	if idx < 0 || idx >= len(o.Lines) {
		return o, fmt.Errorf("%w: %d", ErrLineIndex, idx)
	}
	if price < 0 {
		return o, fmt.Errorf("%w: unit price %d", ErrNegativeValue, price)
	}
	lines := append([]Line(nil), o.Lines...)
	lines[idx].UnitPrice = price
	lines[idx].ManualPrice = true
	o.Lines = lines
	return o, nil
}
