package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrovendas/sales-api/internal/lock"
	"github.com/agrovendas/sales-api/internal/obs"
	"github.com/agrovendas/sales-api/internal/pricing"
)

// Worksheet names on the spreadsheet gateway. The gateway publishes them in
// Portuguese; they are an external contract, not ours to rename.
const (
	SheetSupplements = "produtos_nutrimentos"
	SheetFeeds       = "produtos_racoes"
)

const cacheKey = "catalog:v1"

const (
	refreshLockKey = "catalog:refresh:lock"
	refreshLockTTL = 30 * time.Second
)

type sheetSource interface {
	Values(ctx context.Context, sheet string) ([][]string, error)
}

// Service merges the two product worksheets into one catalog, with a Redis
// cache in front of the gateway.
type Service struct {
	sheets sheetSource
	cache  *Cache
	locker *lock.Locker
	logger zerolog.Logger
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Sheets sheetSource
	Cache  *Cache
	Locker *lock.Locker
	Logger zerolog.Logger
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Sheets == nil {
		return nil, errors.New("catalog: sheet source is required")
	}
	return &Service{sheets: cfg.Sheets, cache: cfg.Cache, locker: cfg.Locker, logger: cfg.Logger}, nil
}

// Products returns the merged catalog in worksheet order, supplements first.
// The cached copy is served when fresh; otherwise both worksheets are fetched
// and re-parsed.
func (s *Service) Products(ctx context.Context) ([]pricing.Product, error) {
	var cached []pricing.Product
	hit, err := s.cache.GetJSON(ctx, cacheKey, &cached)
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache read")
	}
	if hit {
		return cached, nil
	}
	return s.Refresh(ctx)
}

// Refresh bypasses the cache, fetches both worksheets and stores the merged
// result. Rows failing schema validation are logged and counted, never
// served. With a Locker configured, concurrent refreshes collapse into a
// single gateway fetch; losers serve the copy the winner stored.
func (s *Service) Refresh(ctx context.Context) ([]pricing.Product, error) {
	if s.locker == nil {
		return s.refresh(ctx)
	}
	var merged []pricing.Product
	ran, err := s.locker.Try(ctx, refreshLockKey, refreshLockTTL, func(ctx context.Context) error {
		var ferr error
		merged, ferr = s.refresh(ctx)
		return ferr
	})
	if ran {
		return merged, err
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog refresh lock")
	}
	var cached []pricing.Product
	if hit, cerr := s.cache.GetJSON(ctx, cacheKey, &cached); cerr == nil && hit {
		return cached, nil
	}
	return s.refresh(ctx)
}

func (s *Service) refresh(ctx context.Context) ([]pricing.Product, error) {
	supplements, err := s.fetch(ctx, SheetSupplements, CategorySupplements, ParseSupplements)
	if err != nil {
		return nil, err
	}
	feeds, err := s.fetch(ctx, SheetFeeds, CategoryFeeds, ParseFeeds)
	if err != nil {
		return nil, err
	}
	merged := append(supplements, feeds...)
	if err := s.cache.SetJSON(ctx, cacheKey, merged); err != nil {
		s.logger.Warn().Err(err).Msg("catalog cache write")
	}
	return merged, nil
}

// Catalog returns the product index used by the pricing engine. A fetch
// failure yields an empty catalog and the error: callers keep working with
// unpriced lines rather than failing the whole order flow.
func (s *Service) Catalog(ctx context.Context) (pricing.Catalog, error) {
	products, err := s.Products(ctx)
	cat := make(pricing.Catalog, len(products))
	for _, p := range products {
		cat[p.ID] = p
	}
	return cat, err
}

func (s *Service) fetch(ctx context.Context, sheet, category string, parse func([][]string) ([]pricing.Product, []RowError)) ([]pricing.Product, error) {
	values, err := s.sheets.Values(ctx, sheet)
	if err != nil {
		countRefresh(category, "error")
		return nil, err
	}
	products, rejected := parse(values)
	for _, rej := range rejected {
		s.logger.Warn().
			Str("category", rej.Category).
			Int("row", rej.Row).
			Str("reason", rej.Reason).
			Msg("catalog row rejected")
	}
	if obs.CatalogRejectedRows != nil && len(rejected) > 0 {
		obs.CatalogRejectedRows.Add(float64(len(rejected)))
	}
	countRefresh(category, "ok")
	return products, nil
}

func countRefresh(category, result string) {
	if obs.CatalogRefreshTotal != nil {
		obs.CatalogRefreshTotal.WithLabelValues(category, result).Inc()
	}
}
