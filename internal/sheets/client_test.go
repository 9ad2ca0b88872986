package sheets_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/sheets"
)

func TestValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/clientes_adriel", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"values":[["Cliente","CNPJ"],["ACME","123"]]}`))
	}))
	defer srv.Close()

	c := sheets.New(srv.URL, "adriel", srv.Client())
	values, err := c.Values(context.Background(), "clientes")
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Cliente", "CNPJ"}, {"ACME", "123"}}, values)
}

func TestValuesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := sheets.New(srv.URL, "adriel", srv.Client())
	_, err := c.Values(context.Background(), "clientes")
	require.Error(t, err)
}

func TestValuesBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{`))
	}))
	defer srv.Close()

	c := sheets.New(srv.URL, "adriel", srv.Client())
	_, err := c.Values(context.Background(), "clientes")
	require.Error(t, err)
}
