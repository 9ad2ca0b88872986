package clients

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Worksheet names on the spreadsheet gateway.
const (
	SheetClients = "clientes"
	SheetHistory = "historico_clientes"
)

type sheetSource interface {
	Values(ctx context.Context, sheet string) ([][]string, error)
}

// Service lists clients and their purchase history from the gateway
// worksheets.
type Service struct {
	sheets       sheetSource
	logger       zerolog.Logger
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Sheets       sheetSource
	Logger       zerolog.Logger
	DefaultLimit int
	MaxLimit     int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Sheets == nil {
		return nil, errors.New("clients: sheet source is required")
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 10
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{sheets: cfg.Sheets, logger: cfg.Logger, defaultLimit: defaultLimit, maxLimit: maxLimit}, nil
}

// ListResult carries one page of clients plus the unfiltered total.
type ListResult struct {
	Items []Client
	Total int
	Page  int
	Limit int
}

// List returns clients matching the search term, ordered by most recent
// purchase first. Clients with no history sort last in stable sheet order.
func (s *Service) List(ctx context.Context, query string, page, limit int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	clientRows, err := s.sheets.Values(ctx, SheetClients)
	if err != nil {
		return ListResult{}, err
	}
	historyRows, err := s.sheets.Values(ctx, SheetHistory)
	if err != nil {
		// History is an enrichment; a missing history sheet must not hide
		// the client directory.
		s.logger.Warn().Err(err).Msg("purchase history unavailable")
	}

	lastPurchase := map[string]time.Time{}
	for _, row := range parseTable(historyRows) {
		p := Purchase(row)
		reg := p.Registration()
		if reg == "" {
			continue
		}
		if d := p.Date(); d.After(lastPurchase[reg]) {
			lastPurchase[reg] = d
		}
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	all := make([]Client, 0)
	for _, row := range parseTable(clientRows) {
		c := clientFromRow(row)
		if needle != "" && !matches(c, needle) {
			continue
		}
		if d, ok := lastPurchase[c.Registration]; ok {
			c.LastPurchase = d.Format("02/01/2006")
		}
		all = append(all, c)
	}

	sort.SliceStable(all, func(i, j int) bool {
		return lastOf(lastPurchase, all[i]).After(lastOf(lastPurchase, all[j]))
	})

	total := len(all)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return ListResult{Items: all[start:end], Total: total, Page: page, Limit: limit}, nil
}

// History returns all purchase rows for the given client registration, most
// recent first.
func (s *Service) History(ctx context.Context, registration string) ([]Purchase, error) {
	rows, err := s.sheets.Values(ctx, SheetHistory)
	if err != nil {
		return nil, err
	}
	reg := strings.TrimSpace(registration)
	var history []Purchase
	for _, row := range parseTable(rows) {
		p := Purchase(row)
		if p.Registration() == reg {
			history = append(history, p)
		}
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date().After(history[j].Date())
	})
	return history, nil
}

func matches(c Client, needle string) bool {
	for _, field := range []string{c.Name, c.Code, c.TradeName} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func lastOf(dates map[string]time.Time, c Client) time.Time {
	return dates[c.Registration]
}
