package clients

import (
	"strings"
	"time"
)

// Header names used by the clients and history worksheets. These are the
// gateway's column labels, an external contract.
const (
	colName         = "Cliente"
	colCode         = "Código"
	colTradeName    = "Fantasia"
	colCNPJ         = "CNPJ"
	colAddress      = "Endereco"
	colPhone        = "Telefone"
	colRegistration = "Inscricao"
	colDate         = "Data"
)

// Client is a directory entry from the clients worksheet.
type Client struct {
	Registration string `json:"registration"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	TradeName    string `json:"tradeName"`
	CNPJ         string `json:"cnpj"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	LastPurchase string `json:"lastPurchase,omitempty"`
}

// Purchase is one purchase-history row, keyed by worksheet header. The
// history sheet carries free-form columns beyond the two we interpret
// (registration and date), so the row is kept as-is for display.
type Purchase map[string]string

// Registration returns the client registration the purchase belongs to.
func (p Purchase) Registration() string { return strings.TrimSpace(p[colRegistration]) }

// Date parses the purchase date (dd/mm/yyyy). The zero time is returned for
// missing or malformed dates.
func (p Purchase) Date() time.Time {
	t, err := time.ParseInLocation("02/01/2006", strings.TrimSpace(p[colDate]), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseTable zips the header row with each data row, like the worksheets are
// consumed everywhere else: first row is the schema, the rest are records.
func parseTable(values [][]string) []map[string]string {
	if len(values) < 2 {
		return nil
	}
	header := values[0]
	rows := make([]map[string]string, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make(map[string]string, len(header))
		for i, key := range header {
			if i < len(raw) {
				row[key] = raw[i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func clientFromRow(row map[string]string) Client {
	return Client{
		Registration: strings.TrimSpace(row[colRegistration]),
		Code:         strings.TrimSpace(row[colCode]),
		Name:         strings.TrimSpace(row[colName]),
		TradeName:    strings.TrimSpace(row[colTradeName]),
		CNPJ:         strings.TrimSpace(row[colCNPJ]),
		Address:      strings.TrimSpace(row[colAddress]),
		Phone:        strings.TrimSpace(row[colPhone]),
	}
}
