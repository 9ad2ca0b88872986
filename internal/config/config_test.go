package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agrovendas/sales-api/internal/config"
)

func baseEnv() map[string]string {
	return map[string]string{
		"REDIS_URL":      "redis://localhost:6379/0",
		"SHEETS_BASE_URL": "https://sheets.example.com/",
		"SHEETS_ACCOUNT": "adriel",
		"ORDERS_API_URL": "https://orders.example.com",
		"DATABASE_URL":   "",
		"ORDER_STORE":    "",
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.LoadForTests(baseEnv())
	require.NoError(t, err)
	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.Equal(t, config.StoreRemote, cfg.OrderStore)
	require.Equal(t, "https://sheets.example.com", cfg.SheetsBaseURL)
	require.Equal(t, 5*time.Minute, cfg.CatalogCacheTTL)
	require.Equal(t, 24*time.Hour, cfg.DraftTTL)
	require.Equal(t, 120, cfg.RateLimitMax)
}

func TestLoadRequiredFields(t *testing.T) {
	env := baseEnv()
	env["REDIS_URL"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["SHEETS_BASE_URL"] = ""
	_, err = config.LoadForTests(env)
	require.Error(t, err)

	env = baseEnv()
	env["ORDERS_API_URL"] = ""
	_, err = config.LoadForTests(env)
	require.Error(t, err)
}

func TestLoadPostgresStore(t *testing.T) {
	env := baseEnv()
	env["ORDER_STORE"] = "postgres"
	env["ORDERS_API_URL"] = ""
	_, err := config.LoadForTests(env)
	require.Error(t, err)

	env["DATABASE_URL"] = "postgres://localhost:5432/sales"
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	require.Equal(t, config.StorePostgres, cfg.OrderStore)
}

func TestLoadUnknownStore(t *testing.T) {
	env := baseEnv()
	env["ORDER_STORE"] = "mongo"
	_, err := config.LoadForTests(env)
	require.Error(t, err)
}
