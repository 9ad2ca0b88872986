package order_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/order"
	"github.com/agrovendas/sales-api/internal/pricing"
)

func remoteFixture(t *testing.T) (order.RemoteStore, *memStore) {
	t.Helper()
	backing := newMemStore()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var rec order.Record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		rec, _ = backing.Create(r.Context(), rec)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		recs, _ := backing.List(r.Context(), order.Status(r.URL.Query().Get("status")))
		_ = json.NewEncoder(w).Encode(recs)
	})
	mux.HandleFunc("GET /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		rec, err := backing.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("PUT /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		var rec order.Record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rec))
		rec, err := backing.Update(r.Context(), rec)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("DELETE /orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := backing.Delete(r.Context(), r.PathValue("id")); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return order.RemoteStore{BaseURL: srv.URL, HTTP: srv.Client()}, backing
}

func sampleRecord(id string) order.Record {
	return order.Record{
		ID:     id,
		Status: order.StatusAwaitingApproval,
		Order: pricing.Order{
			Lines: []pricing.Line{{
				ProductID: "sup-1",
				Quantity:  100,
				UnitPrice: 1000,
				LineTotal: 100000,
				Priced:    true,
			}},
			TotalAmount:   100000,
			PaymentMethod: pricing.Upfront,
		},
		OrderDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestRemoteStoreRoundTrip(t *testing.T) {
	store, _ := remoteFixture(t)
	ctx := context.Background()

	created, err := store.Create(ctx, sampleRecord("ord-1"))
	require.NoError(t, err)
	require.Equal(t, "ord-1", created.ID)

	got, err := store.Get(ctx, "ord-1")
	require.NoError(t, err)
	require.Equal(t, created.Order.TotalAmount, got.Order.TotalAmount)

	got.Status = order.StatusValidated
	updated, err := store.Update(ctx, got)
	require.NoError(t, err)
	require.Equal(t, order.StatusValidated, updated.Status)

	pending, err := store.List(ctx, order.StatusAwaitingApproval)
	require.NoError(t, err)
	require.Empty(t, pending)
	validated, err := store.List(ctx, order.StatusValidated)
	require.NoError(t, err)
	require.Len(t, validated, 1)

	require.NoError(t, store.Delete(ctx, "ord-1"))
	_, err = store.Get(ctx, "ord-1")
	require.ErrorIs(t, err, order.ErrNotFound)
	require.ErrorIs(t, store.Delete(ctx, "ord-1"), order.ErrNotFound)
}

func TestRemoteStoreSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	store := order.RemoteStore{BaseURL: srv.URL, HTTP: srv.Client()}
	_, err := store.Create(context.Background(), sampleRecord("ord-1"))
	require.Error(t, err)
	require.NotErrorIs(t, err, order.ErrNotFound)
}
