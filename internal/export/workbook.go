package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/agrovendas/sales-api/internal/common"
	"github.com/agrovendas/sales-api/internal/order"
	"github.com/agrovendas/sales-api/internal/pricing"
)

const sheetName = "Pedido"

// Workbook renders the order as an xlsx document: a client block, the line
// item table with formatted currency and weights, order totals and, for
// installment orders, the payment due dates.
func Workbook(rec order.Record) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()
	xl.SetSheetName(xl.GetSheetName(0), sheetName)

	row := 1
	writeRow := func(cells []any) {
		cellRef, _ := excelize.CoordinatesToCellName(1, row)
		_ = xl.SetSheetRow(sheetName, cellRef, &cells)
		row++
	}

	writeRow([]any{"Pedido", rec.ID})
	writeRow([]any{"Data", rec.OrderDate.Format("02/01/2006")})
	writeRow([]any{"Cliente", rec.Client.Name})
	if rec.Client.TradeName != "" {
		writeRow([]any{"Fantasia", rec.Client.TradeName})
	}
	if rec.Client.CNPJ != "" {
		writeRow([]any{"CNPJ", rec.Client.CNPJ})
	}
	if rec.Client.Address != "" {
		writeRow([]any{"Endereço", rec.Client.Address})
	}
	if rec.Client.Phone != "" {
		writeRow([]any{"Telefone", rec.Client.Phone})
	}
	row++

	writeRow([]any{"Produto", "Quantidade", "Preço Unitário", "Peso", "Total"})
	for _, ln := range rec.Order.Lines {
		name := ln.ProductName
		if name == "" {
			name = ln.ProductID
		}
		writeRow([]any{
			name,
			ln.Quantity,
			common.FormatBRL(ln.UnitPrice),
			common.FormatKg(ln.LineWeightKg),
			common.FormatBRL(ln.LineTotal),
		})
	}
	row++

	writeRow([]any{"Peso total", common.FormatKg(rec.Order.TotalWeightKg)})
	writeRow([]any{"Valor total", common.FormatBRL(rec.Order.TotalAmount)})

	switch rec.Order.PaymentMethod {
	case pricing.Installment:
		writeRow([]any{"Pagamento", "Parcelado " + rec.Order.Schedule})
		dates := rec.DueDates()
		per := pricing.Money(0)
		if len(dates) > 0 {
			per = rec.Order.TotalAmount / pricing.Money(len(dates))
		}
		for i, d := range dates {
			writeRow([]any{
				fmt.Sprintf("Parcela %d", i+1),
				d.Format("02/01/2006"),
				common.FormatBRL(per),
			})
		}
	case pricing.Upfront:
		writeRow([]any{"Pagamento", "À vista"})
	}

	_ = xl.SetColWidth(sheetName, "A", "A", 24)
	_ = xl.SetColWidth(sheetName, "B", "E", 16)

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return append([]byte(nil), buf.Bytes()...), nil
}
