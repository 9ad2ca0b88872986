package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/catalog"
	"github.com/agrovendas/sales-api/internal/pricing"
)

func supplementGrid() [][]string {
	return [][]string{
		{"Produto", "Tipo", "Kg", "Ate 8t", "Ate 15t", "Acima"},
		{"Mineral Mix", "mineral", "25", "10,00", "9,00", "8,00"},
		{"Proteico Plus", "proteico", "30", "102,50", "98,00", "95,50"},
	}
}

func feedGrid() [][]string {
	return [][]string{
		{"Produto", "Tipo", "Kg", "Emb", "2t", "6t", "10t", "15t", "Acima"},
		{"Racao Corte", "corte", "40", "saco", "55,00", "52,00", "50,00", "48,00", "45,00"},
	}
}

func TestParseSupplements(t *testing.T) {
	products, rejected := catalog.ParseSupplements(supplementGrid())
	require.Empty(t, rejected)
	require.Len(t, products, 2)

	p := products[0]
	require.Equal(t, "sup-1", p.ID)
	require.Equal(t, "Mineral Mix", p.Name)
	require.Equal(t, catalog.CategorySupplements, p.Category)
	require.Equal(t, 25.0, p.UnitWeightKg)
	require.Equal(t, []pricing.Tier{
		{UpToTons: 8, UnitPrice: 1000},
		{UpToTons: 15, UnitPrice: 900},
		{UpToTons: pricing.Unbounded, UnitPrice: 800},
	}, p.Tiers)

	// decimal comma
	require.Equal(t, pricing.Money(10250), products[1].Tiers[0].UnitPrice)
}

func TestParseFeeds(t *testing.T) {
	products, rejected := catalog.ParseFeeds(feedGrid())
	require.Empty(t, rejected)
	require.Len(t, products, 1)

	p := products[0]
	require.Equal(t, "feed-1", p.ID)
	require.Equal(t, catalog.CategoryFeeds, p.Category)
	require.Len(t, p.Tiers, 5)
	require.Equal(t, 2.0, p.Tiers[0].UpToTons)
	require.Equal(t, pricing.Unbounded, p.Tiers[4].UpToTons)
	require.Equal(t, pricing.Money(4500), p.Tiers[4].UnitPrice)
}

func TestParseRejectsMalformedRows(t *testing.T) {
	grid := [][]string{
		{"Produto", "Tipo", "Kg", "Ate 8t", "Ate 15t", "Acima"},
		{"Short Row", "x", "25"},
		{"", "x", "25", "10", "9", "8"},
		{"Bad Weight", "x", "abc", "10", "9", "8"},
		{"Bad Price", "x", "25", "free", "9", "8"},
		{"Zero Price", "x", "25", "0", "9", "8"},
		{"Good", "x", "25", "10", "9", "8"},
	}
	products, rejected := catalog.ParseSupplements(grid)
	require.Len(t, products, 1)
	require.Equal(t, "Good", products[0].Name)
	require.Len(t, rejected, 5)

	// row numbers are 1-based grid indexes, header excluded
	require.Equal(t, 1, rejected[0].Row)
	require.Contains(t, rejected[0].Reason, "columns")
	require.Contains(t, rejected[2].Reason, "unit weight")
	require.Contains(t, rejected[3].Reason, "tier price")
}

func TestParseEmptyGrid(t *testing.T) {
	products, rejected := catalog.ParseSupplements(nil)
	require.Empty(t, products)
	require.Empty(t, rejected)

	products, rejected = catalog.ParseFeeds([][]string{{"header only"}})
	require.Empty(t, products)
	require.Empty(t, rejected)
}
