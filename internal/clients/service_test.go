package clients_test

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

	"github.com/agrovendas/sales-api/internal/clients"
)

type fakeSheets struct {
	grids map[string][][]string
	errs  map[string]error
}

func (f *fakeSheets) Values(_ context.Context, sheet string) ([][]string, error) {
	if err := f.errs[sheet]; err != nil {
		return nil, err
	}
	return f.grids[sheet], nil
}

func directoryGrids() map[string][][]string {
	return map[string][][]string{
		clients.SheetClients: {
			{"Cliente", "Código", "Fantasia", "CNPJ", "Endereco", "Telefone", "Inscricao"},
			{"Fazenda Boa Vista", "C001", "Boa Vista", "11.111/0001", "Estrada 1", "99999-0001", "INS-1"},
			{"Agropecuaria Sul", "C002", "AgroSul", "22.222/0001", "Estrada 2", "99999-0002", "INS-2"},
			{"Sitio Novo", "C003", "Sitio", "33.333/0001", "Estrada 3", "99999-0003", "INS-3"},
		},
		clients.SheetHistory: {
			{"Inscricao", "Data", "Produto"},
			{"INS-1", "10/01/2024", "Mineral Mix"},
			{"INS-2", "05/03/2024", "Racao Corte"},
			{"INS-1", "20/02/2024", "Racao Corte"},
		},
	}
}

func newService(t *testing.T, src *fakeSheets) *clients.Service {
	t.Helper()
	svc, err := clients.NewService(clients.ServiceConfig{Sheets: src, Logger: zerolog.Nop(), DefaultLimit: 10, MaxLimit: 100})
	require.NoError(t, err)
	return svc
}

func TestListOrdersByLastPurchase(t *testing.T) {
	svc := newService(t, &fakeSheets{grids: directoryGrids()})

	result, err := svc.List(context.Background(), "", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)

	// INS-2 bought most recently (05/03), INS-1 on 20/02, INS-3 never.
	require.Equal(t, "INS-2", result.Items[0].Registration)
	require.Equal(t, "INS-1", result.Items[1].Registration)
	require.Equal(t, "INS-3", result.Items[2].Registration)

	require.Equal(t, "05/03/2024", result.Items[0].LastPurchase)
	require.Equal(t, "20/02/2024", result.Items[1].LastPurchase)
	require.Empty(t, result.Items[2].LastPurchase)
}

func TestListSearch(t *testing.T) {
	svc := newService(t, &fakeSheets{grids: directoryGrids()})

	result, err := svc.List(context.Background(), "agrosul", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Equal(t, "Agropecuaria Sul", result.Items[0].Name)

	result, err = svc.List(context.Background(), "c00", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
}

func TestListPagination(t *testing.T) {
	svc := newService(t, &fakeSheets{grids: directoryGrids()})

	result, err := svc.List(context.Background(), "", 2, 2)
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	require.Len(t, result.Items, 1)
	require.Equal(t, "INS-3", result.Items[0].Registration)
}

func TestListSurvivesMissingHistory(t *testing.T) {
	src := &fakeSheets{
		grids: directoryGrids(),
		errs:  map[string]error{clients.SheetHistory: errors.New("boom")},
	}
	svc := newService(t, src)

	result, err := svc.List(context.Background(), "", 1, 10)
	require.NoError(t, err)
	require.Equal(t, 3, result.Total)
	for _, c := range result.Items {
		require.Empty(t, c.LastPurchase)
	}
}

func TestHistory(t *testing.T) {
	svc := newService(t, &fakeSheets{grids: directoryGrids()})

	history, err := svc.History(context.Background(), "INS-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	// most recent first
	require.Equal(t, "20/02/2024", history[0]["Data"])
	require.Equal(t, "10/01/2024", history[1]["Data"])
}

func TestHistoryHandler(t *testing.T) {
	svc := newService(t, &fakeSheets{grids: directoryGrids()})
	handler := &clients.Handler{Service: svc}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/clients/INS-9/history", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("registration", "INS-9")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
	rec := httptest.NewRecorder()
	handler.History(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Data []map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Empty(t, resp.Data)
}
