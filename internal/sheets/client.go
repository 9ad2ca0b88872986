// Package sheets talks to the spreadsheet gateway API that fronts the
// company's Google Sheets. Every worksheet is exposed as a JSON endpoint
// returning the raw cell grid.
package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/agrovendas/sales-api/internal/resilience"
)

// Client fetches worksheet grids from the gateway. When Resilient is set,
// requests go through the retrying circuit-breaker wrapper instead of the
// plain HTTP client.
type Client struct {
	BaseURL   string
	Account   string
	HTTP      *http.Client
	Resilient *resilience.HTTPClient
}

type valuesPayload struct {
	Values [][]string `json:"values"`
}

// New constructs a Client with a sane default timeout.
func New(baseURL, account string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{BaseURL: baseURL, Account: account, HTTP: httpClient}
}

// Values fetches the cell grid of the named worksheet. Worksheets are
// published per account, e.g. sheet "clientes" and account "adriel" resolve
// to GET {base}/clientes_adriel.
func (c *Client) Values(ctx context.Context, sheet string) ([][]string, error) {
	if c == nil || c.BaseURL == "" {
		return nil, fmt.Errorf("sheets: client not configured")
	}
	url := fmt.Sprintf("%s/%s_%s", c.BaseURL, sheet, c.Account)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	var resp *http.Response
	if c.Resilient != nil {
		resp, err = c.Resilient.Do(ctx, req)
	} else {
		resp, err = c.HTTP.Do(req)
	}
	if err != nil {
		return nil, fmt.Errorf("sheets: fetch %s: %w", sheet, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheets: fetch %s: unexpected status %d", sheet, resp.StatusCode)
	}
	var payload valuesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("sheets: decode %s: %w", sheet, err)
	}
	return payload.Values, nil
}
