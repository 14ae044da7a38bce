// Package export produces the XLSX expense report used for the yearly
// income-norm declaration.
package export

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/rocont/driverledger/internal/repository"
)

// Service is a tiny façade over the receipt repository that produces XLSX
// bytes for exports.
type Service struct {
	receipts repository.ReceiptRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(receipts repository.ReceiptRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{receipts: receipts, logger: logger, now: time.Now}
}

// ExportReceiptsXLSX returns an XLSX workbook (as bytes) for the date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all receipts.
func (s *Service) ExportReceiptsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := s.now()

	var fromDate, toDate *time.Time
	if from != nil {
		f := dateOnly(*from)
		fromDate = &f
	}
	if to != nil {
		t := dateOnly(*to)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		t := dateOnly(s.now().UTC())
		toDate = &t
	}

	recs, err := s.receipts.List(ctx, fromDate, toDate)
	if err != nil {
		return nil, eris.Wrap(err, "export: query receipts")
	}

	f := excelize.NewFile()
	const sheet = "Receipts"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, eris.Wrap(err, "export: new sheet")
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Data",
		"Categorie",
		"Furnizor",
		"CIF",
		"Document",
		"Baza (RON)",
		"TVA (RON)",
		"Total (RON)",
		"Descriere",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		if !r.TxDate.IsZero() {
			write(1, r.TxDate.Format("2006-01-02"))
		} else {
			write(1, "")
		}
		write(2, string(r.Category))
		write(3, r.SupplierName)
		write(4, r.SupplierTaxID)
		write(5, r.DocumentNumber)
		if r.NetAmount != nil {
			write(6, r.NetAmount.StringFixed(2))
		}
		if r.VatAmount != nil {
			write(7, r.VatAmount.StringFixed(2))
		}
		write(8, r.TotalAmount.StringFixed(2))
		write(9, truncate(r.Description, 140))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 12) // date
	_ = f.SetColWidth(sheet, "B", "B", 16) // category
	_ = f.SetColWidth(sheet, "C", "C", 32) // supplier
	_ = f.SetColWidth(sheet, "D", "E", 16) // tax id, document
	_ = f.SetColWidth(sheet, "F", "H", 12) // amounts
	_ = f.SetColWidth(sheet, "I", "I", 48) // description

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, eris.Wrap(err, "export: xlsx write")
	}

	s.logger.Info("export.xlsx.ok",
		zap.Int("rows", len(recs)),
		zap.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)
	return buf.Bytes(), nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
