package catalog_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/catalog"
	"github.com/agrovendas/sales-api/internal/pricing"
)

type fakeSheets struct {
	grids map[string][][]string
	err   error
	calls int
}

func (f *fakeSheets) Values(_ context.Context, sheet string) ([][]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.grids[sheet], nil
}

func newTestService(t *testing.T, src *fakeSheets) *catalog.Service {
	t.Helper()
	svc, err := catalog.NewService(catalog.ServiceConfig{Sheets: src, Logger: zerolog.Nop()})
	require.NoError(t, err)
	return svc
}

type productsResponse struct {
	Data []pricing.Product `json:"data"`
}

func TestProductsHandler(t *testing.T) {
	src := &fakeSheets{grids: map[string][][]string{
		catalog.SheetSupplements: supplementGrid(),
		catalog.SheetFeeds:       feedGrid(),
	}}
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: newTestService(t, src)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.Products(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp productsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	require.Equal(t, "sup-1", resp.Data[0].ID)
	require.Equal(t, "feed-1", resp.Data[2].ID)

	t.Run("category filter", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products?category=feeds", nil)
		rec := httptest.NewRecorder()
		handler.Products(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp productsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Data, 1)
		require.Equal(t, catalog.CategoryFeeds, resp.Data[0].Category)
	})
}

func TestProductHandler(t *testing.T) {
	src := &fakeSheets{grids: map[string][][]string{
		catalog.SheetSupplements: supplementGrid(),
		catalog.SheetFeeds:       feedGrid(),
	}}
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: newTestService(t, src)})

	get := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id, nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("productId", id)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
		rec := httptest.NewRecorder()
		handler.Product(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, get("sup-2").Code)
	require.Equal(t, http.StatusNotFound, get("sup-99").Code)
}

func TestProductsHandlerUpstreamError(t *testing.T) {
	src := &fakeSheets{err: errors.New("gateway down")}
	handler := catalog.NewHandler(catalog.HandlerConfig{Service: newTestService(t, src)})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	handler.Products(rec, req)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestCatalogDegradesToEmptyOnError(t *testing.T) {
	src := &fakeSheets{err: errors.New("gateway down")}
	svc := newTestService(t, src)

	cat, err := svc.Catalog(context.Background())
	require.Error(t, err)
	require.Empty(t, cat)

	// The pricing engine keeps working against the empty catalog.
	order := pricing.Recalc(pricing.Order{Lines: []pricing.Line{{ProductID: "sup-1", Quantity: 10}}}, cat)
	require.False(t, order.Lines[0].Priced)
	require.Equal(t, pricing.Money(0), order.TotalAmount)
}
