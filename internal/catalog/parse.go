package catalog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agrovendas/sales-api/internal/pricing"
)

// Worksheet column layouts. The gateway publishes two product worksheets:
// supplements carry three price tiers, feeds carry five. The first row of
// each grid is a header.
const (
	supplementColumns = 6
	feedColumns       = 9
)

// CategorySupplements and CategoryFeeds tag which worksheet a product came from.
const (
	CategorySupplements = "supplements"
	CategoryFeeds       = "feeds"
)

// RowError tags a worksheet row rejected by schema validation.
type RowError struct {
	Category string `json:"category"`
	Row      int    `json:"row"`
	Reason   string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("catalog: %s row %d: %s", e.Category, e.Row, e.Reason)
}

// ParseSupplements converts the supplements worksheet grid into products.
// Layout: name, kind, unit kg, price <=8t, price <=15t, price unbounded.
func ParseSupplements(values [][]string) ([]pricing.Product, []RowError) {
	return parseRows(values, CategorySupplements, "sup", supplementColumns, []float64{8, 15, pricing.Unbounded}, 3)
}

// ParseFeeds converts the feeds worksheet grid into products.
// Layout: name, kind, unit kg, packaging, then prices at <=2t, <=6t, <=10t,
// <=15t and unbounded.
func ParseFeeds(values [][]string) ([]pricing.Product, []RowError) {
	return parseRows(values, CategoryFeeds, "feed", feedColumns, []float64{2, 6, 10, 15, pricing.Unbounded}, 4)
}

// parseRows walks a worksheet grid skipping the header row. Rows that fail
// schema validation are rejected and tagged, never coerced: a malformed price
// must not silently become a free product.
func parseRows(values [][]string, category, idPrefix string, minCols int, thresholds []float64, priceCol int) ([]pricing.Product, []RowError) {
	if len(values) == 0 {
		return nil, nil
	}
	products := make([]pricing.Product, 0, len(values)-1)
	var rejected []RowError
	for i := 1; i < len(values); i++ {
		row := values[i]
		if len(row) < minCols {
			rejected = append(rejected, RowError{Category: category, Row: i, Reason: fmt.Sprintf("expected %d columns, got %d", minCols, len(row))})
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			rejected = append(rejected, RowError{Category: category, Row: i, Reason: "empty product name"})
			continue
		}
		kg, err := parseDecimal(row[2])
		if err != nil || kg <= 0 {
			rejected = append(rejected, RowError{Category: category, Row: i, Reason: fmt.Sprintf("invalid unit weight %q", row[2])})
			continue
		}
		tiers := make([]pricing.Tier, 0, len(thresholds))
		bad := false
		for t, threshold := range thresholds {
			price, err := parseMoney(row[priceCol+t])
			if err != nil || price <= 0 {
				rejected = append(rejected, RowError{Category: category, Row: i, Reason: fmt.Sprintf("invalid tier price %q", row[priceCol+t])})
				bad = true
				break
			}
			tiers = append(tiers, pricing.Tier{UpToTons: threshold, UnitPrice: price})
		}
		if bad {
			continue
		}
		products = append(products, pricing.Product{
			ID:           fmt.Sprintf("%s-%d", idPrefix, i),
			Name:         name,
			Kind:         strings.TrimSpace(row[1]),
			Category:     category,
			UnitWeightKg: kg,
			Tiers:        tiers,
		})
	}
	return products, rejected
}

// parseDecimal accepts the sheet's decimal-comma notation ("102,5") as well
// as plain dot notation.
func parseDecimal(s string) (float64, error) {
	trimmed := strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if trimmed == "" {
		return 0, fmt.Errorf("empty numeric cell")
	}
	return strconv.ParseFloat(trimmed, 64)
}

// parseMoney converts a decimal currency cell into minor units.
func parseMoney(s string) (pricing.Money, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	return pricing.Money(math.Round(v * 100)), nil
}
