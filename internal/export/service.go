package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-tracker/internal/entity"
)

const (
	SheetInvoices = "Invoices"
	SheetLines    = "Lines"
	SheetIssues   = "Issues"
)

// Row is one processed document. Invoice is nil when processing failed.
type Row struct {
	Filename string
	Invoice  *entity.ProcessedInvoice
	Error    string
}

// Service writes processing results as an XLSX workbook.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
}

func newSheet(f *excelize.File, name string, headers []string) (*sheetWriter, error) {
	if index, _ := f.GetSheetIndex(name); index == -1 {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w := &sheetWriter{f: f, sheet: name, row: 1}
	vals := make([]any, len(headers))
	for i, h := range headers {
		vals[i] = h
	}
	w.write(vals...)
	return w, nil
}

func (w *sheetWriter) write(vals ...any) {
	for i, v := range vals {
		cell, _ := excelize.CoordinatesToCellName(i+1, w.row)
		_ = w.f.SetCellValue(w.sheet, cell, v)
	}
	w.row++
}

// InvoicesXLSX returns a workbook with an Invoices summary sheet, one Lines
// row per line item and one Issues row per validation finding.
func (s *Service) InvoicesXLSX(_ context.Context, rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	invoices, err := newSheet(f, SheetInvoices, []string{
		"File", "Provider", "Provider RUT", "Buyer", "Buyer RUT", "Lines",
		"Subtotal", "IVA", "IVA Rate", "Total", "Valid", "Issues", "Error",
	})
	if err != nil {
		return nil, err
	}
	lines, err := newSheet(f, SheetLines, []string{
		"File", "Line", "Rubro", "Rubro Code", "Quantity", "Unit Price", "Subtotal",
	})
	if err != nil {
		return nil, err
	}
	issues, err := newSheet(f, SheetIssues, []string{"File", "Code", "Field", "Message"})
	if err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	if idx, _ := f.GetSheetIndex(SheetInvoices); idx >= 0 {
		f.SetActiveSheet(idx)
	}

	for _, r := range rows {
		if r.Invoice == nil {
			invoices.write(r.Filename, "", "", "", "", 0, "", "", "", "", false, 0, r.Error)
			continue
		}
		inv, val := r.Invoice.Invoice, r.Invoice.Validation
		invoices.write(
			r.Filename,
			inv.Provider.Name, inv.Provider.RUT,
			inv.Buyer.Name, inv.Buyer.RUT,
			len(inv.LineItems),
			inv.Totals.Subtotal, inv.Totals.IVA, inv.Totals.IVARate, inv.Totals.Total,
			val.IsValid, len(val.Issues), r.Error,
		)
		for i, li := range inv.LineItems {
			code := ""
			if li.RubroCode != nil {
				code = *li.RubroCode
			}
			lines.write(r.Filename, i+1, li.RubroRaw, code, li.Quantity, li.UnitPrice, li.Subtotal)
		}
		for _, is := range val.Issues {
			issues.write(r.Filename, is.Code, is.Field, is.Message)
		}
	}

	_ = f.SetColWidth(SheetInvoices, "A", "A", 32)
	_ = f.SetColWidth(SheetInvoices, "B", "E", 24)
	_ = f.SetColWidth(SheetInvoices, "M", "M", 60)
	_ = f.SetColWidth(SheetLines, "C", "C", 40)
	_ = f.SetColWidth(SheetIssues, "D", "D", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(rows),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
