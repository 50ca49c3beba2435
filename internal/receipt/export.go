package receipt

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const (
	receiptsSheet = "Receipts"
	itemsSheet    = "Items"

	// ExportContentType is the MIME type of ExportReceipts output
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	receiptHeaders = []any{"Date", "Merchant", "Category", "Subtotal", "Tax", "Total", "Items", "Source", "Receipt ID"}
	itemHeaders    = []any{"Receipt ID", "Merchant", "Item", "Price"}
)

// ExportReceipts returns a user's receipts as an XLSX workbook, newest first.
// The Receipts sheet has one row per receipt and the Items sheet one row per line item.
func (s *Service) ExportReceipts(userID string) ([]byte, error) {
	receipts, err := s.db.ListReceipts(userID, 0)
	if err != nil {
		return nil, fmt.Errorf("listing receipts: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", receiptsSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("adding sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}
	for sheet, headers := range map[string][]any{receiptsSheet: receiptHeaders, itemsSheet: itemHeaders} {
		if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
			return nil, fmt.Errorf("writing %s header: %w", sheet, err)
		}
		last, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return nil, fmt.Errorf("%s header cell: %w", sheet, err)
		}
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return nil, fmt.Errorf("styling %s header: %w", sheet, err)
		}
	}

	itemRow := 2
	for i, r := range receipts {
		record := r.ParsedData
		row := []any{
			record.Date,
			record.Merchant,
			record.Category,
			record.Subtotal.InexactFloat64(),
			record.Tax.InexactFloat64(),
			record.Total.InexactFloat64(),
			len(record.Items),
			string(r.Source),
			r.ID,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("receipt %s cell: %w", r.ID, err)
		}
		if err := f.SetSheetRow(receiptsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("writing receipt %s: %w", r.ID, err)
		}

		for _, item := range record.Items {
			line := []any{r.ID, record.Merchant, item.Name, item.Price.InexactFloat64()}
			cell, err := excelize.CoordinatesToCellName(1, itemRow)
			if err != nil {
				return nil, fmt.Errorf("items of %s cell: %w", r.ID, err)
			}
			if err := f.SetSheetRow(itemsSheet, cell, &line); err != nil {
				return nil, fmt.Errorf("writing items of %s: %w", r.ID, err)
			}
			itemRow++
		}
	}

	widths := []struct {
		sheet, from, to string
		width           float64
	}{
		{receiptsSheet, "A", "A", 12}, // date
		{receiptsSheet, "B", "C", 24}, // merchant, category
		{receiptsSheet, "D", "F", 12}, // amounts
		{receiptsSheet, "I", "I", 38}, // id
		{itemsSheet, "A", "A", 38},
		{itemsSheet, "B", "C", 28},
	}
	for _, w := range widths {
		if err := f.SetColWidth(w.sheet, w.from, w.to, w.width); err != nil {
			return nil, fmt.Errorf("sizing %s columns: %w", w.sheet, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	slog.Info("Exported receipts", "user_id", userID, "rows", len(receipts), "items", itemRow-2)
	return buf.Bytes(), nil
}
