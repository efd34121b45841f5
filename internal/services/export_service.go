package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"maps"
	"path"
	"slices"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-ledger/internal/jobs"
	"github.com/sjperalta/fintera-ledger/internal/models"
	"github.com/sjperalta/fintera-ledger/internal/storage"
	"github.com/sjperalta/fintera-ledger/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Export kinds and formats
const (
	ExportBalance = "balance"
	ExportResults = "results"

	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

var contentTypes = map[string]string{
	FormatCSV:  "text/csv",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	FormatPDF:  "application/pdf",
}

// ExportRequest selects the statement and the rendering
type ExportRequest struct {
	Kind   string
	Format string
	AsOf   *time.Time
	Period models.Period
}

// ExportFile is a rendered statement ready to download
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
	ArchivePath string
}

// statementTable is the format-neutral shape every renderer consumes
type statementTable struct {
	Title     string
	Subtitle  string
	Rows      [][]string
	Bold      map[int]bool
	NetIncome decimal.Decimal
}

type ExportService struct {
	statements *StatementService
	storage    *storage.LocalStorage
	worker     *jobs.Worker
	now        func() time.Time
}

func NewExportService(statements *StatementService, store *storage.LocalStorage, worker *jobs.Worker) *ExportService {
	return &ExportService{statements: statements, storage: store, worker: worker, now: time.Now}
}

// Export renders a statement and archives a copy under
// exports/<tenant>/YYYY/MM in the background
func (s *ExportService) Export(ctx context.Context, tenantID string, req ExportRequest) (*ExportFile, error) {
	contentType, ok := contentTypes[req.Format]
	if !ok {
		return nil, fmt.Errorf("%w: format %q", ErrUnknownExport, req.Format)
	}

	var table *statementTable
	switch req.Kind {
	case ExportBalance:
		bg, err := s.statements.GetBalanceGeneral(ctx, tenantID, req.AsOf)
		if err != nil {
			return nil, err
		}
		table = balanceTable(bg)
	case ExportResults:
		er, err := s.statements.GetEstadoResultados(ctx, tenantID, req.Period)
		if err != nil {
			return nil, err
		}
		table = resultsTable(er)
	default:
		return nil, fmt.Errorf("%w: kind %q", ErrUnknownExport, req.Kind)
	}

	var data []byte
	var err error
	switch req.Format {
	case FormatCSV:
		data, err = renderCSV(table)
	case FormatXLSX:
		data, err = renderXLSX(table)
	case FormatPDF:
		data, err = renderPDF(table)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", req.Format, err)
	}

	now := s.now()
	file := &ExportFile{
		Filename:    fmt.Sprintf("%s_%s.%s", req.Kind, now.Format("2006-01-02"), req.Format),
		ContentType: contentType,
		Data:        data,
	}
	file.ArchivePath = s.archive(ctx, tenantID, file, now)
	return file, nil
}

func (s *ExportService) archive(ctx context.Context, tenantID string, file *ExportFile, at time.Time) string {
	if s.storage == nil {
		return ""
	}
	rel, err := storage.ArchivePath(path.Join("exports", tenantID), file.Filename, at)
	if err != nil {
		logger.FromContext(ctx).Warn("[ExportService] export not archived", "tenant_id", tenantID, "error", err)
		return ""
	}

	data := file.Data
	save := func(context.Context) error { return s.storage.Save(rel, data) }
	if s.worker == nil {
		if err := save(ctx); err != nil {
			logger.FromContext(ctx).Warn("[ExportService] export not archived", "tenant_id", tenantID, "error", err)
			return ""
		}
		return rel
	}
	s.worker.Enqueue(save)
	return rel
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func balanceTable(bg *models.BalanceGeneral) *statementTable {
	t := &statementTable{
		Title:     "Balance General",
		Subtitle:  asOfLabel(bg.AsOf, bg.GeneratedAt),
		Bold:      map[int]bool{},
		NetIncome: bg.Totals.NetIncome,
	}
	section := func(title string, lines []models.StatementLine, total decimal.Decimal) {
		t.Bold[len(t.Rows)] = true
		t.Rows = append(t.Rows, []string{"", title, ""})
		for _, l := range lines {
			t.Rows = append(t.Rows, []string{l.Code, l.Name, money(l.Balance)})
		}
		t.Bold[len(t.Rows)] = true
		t.Rows = append(t.Rows, []string{"", "Total " + title, money(total)})
	}

	t.Rows = append(t.Rows, []string{"Código", "Cuenta", "Saldo"})
	t.Bold[0] = true
	section("Activos", bg.Assets, bg.Totals.Assets)
	section("Pasivos", bg.Liabilities, bg.Totals.Liabilities)
	section("Patrimonio", bg.Equity, bg.Totals.Equity)
	t.Rows = append(t.Rows, []string{"", "Utilidad del Período", money(bg.Totals.NetIncome)})
	t.Bold[len(t.Rows)] = true
	t.Rows = append(t.Rows, []string{"", "Pasivo + Patrimonio + Utilidad",
		money(bg.Totals.Liabilities.Add(bg.Totals.Equity).Add(bg.Totals.NetIncome))})
	return t
}

func resultsTable(er *models.EstadoResultados) *statementTable {
	t := &statementTable{
		Title:     "Estado de Resultados",
		Subtitle:  periodLabel(er.Period),
		Bold:      map[int]bool{0: true},
		NetIncome: er.NetIncome,
	}
	t.Rows = append(t.Rows, []string{"Código", "Concepto", "Monto"})
	for _, l := range er.Revenue.Lines {
		t.Rows = append(t.Rows, []string{l.Code, l.Name, money(l.Balance)})
	}
	add := func(label string, v decimal.Decimal, bold bool) {
		if bold {
			t.Bold[len(t.Rows)] = true
		}
		t.Rows = append(t.Rows, []string{"", label, money(v)})
	}
	add("Total Ingresos", er.Revenue.Total, true)
	add("Costo de Ventas", er.COGS, false)
	add("Utilidad Bruta", er.GrossProfit, true)
	for _, name := range slices.Sorted(maps.Keys(er.OperatingExpenses.ByCategory)) {
		add(name, er.OperatingExpenses.ByCategory[name], false)
	}
	add("Total Gastos Operativos", er.OperatingExpenses.Total, true)
	add("Utilidad Neta", er.NetIncome, true)
	return t
}

func asOfLabel(asOf *time.Time, generated time.Time) string {
	if asOf != nil {
		return "Al " + asOf.Format("02/01/2006")
	}
	return "Al " + generated.Format("02/01/2006")
}

func periodLabel(p models.Period) string {
	from, to := "inicio", "hoy"
	if p.From != nil {
		from = p.From.Format("02/01/2006")
	}
	if p.To != nil {
		to = p.To.Format("02/01/2006")
	}
	return fmt.Sprintf("Del %s al %s", from, to)
}

func renderCSV(t *statementTable) ([]byte, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)
	_ = writer.Write([]string{t.Title, t.Subtitle})
	_ = writer.Write([]string{""})
	for _, row := range t.Rows {
		_ = writer.Write(row)
	}
	writer.Flush()
	return buf.Bytes(), writer.Error()
}

func renderXLSX(t *statementTable) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Estado"
	_ = f.SetSheetName("Sheet1", sheet)

	titleStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})

	_ = f.SetCellValue(sheet, "A1", t.Title)
	_ = f.SetCellStyle(sheet, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheet, "A2", t.Subtitle)

	for i, row := range t.Rows {
		r := i + 4
		for j, v := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, r)
			if err != nil {
				return nil, err
			}
			if j == 2 && i > 0 && v != "" {
				if amount, err := decimal.NewFromString(v); err == nil {
					f64, _ := amount.Float64()
					_ = f.SetCellValue(sheet, cell, f64)
					continue
				}
			}
			_ = f.SetCellValue(sheet, cell, v)
		}
		if t.Bold[i] {
			_ = f.SetCellStyle(sheet, fmt.Sprintf("A%d", r), fmt.Sprintf("C%d", r), boldStyle)
		}
	}
	_ = f.SetColWidth(sheet, "B", "B", 40)
	_ = f.SetColWidth(sheet, "C", "C", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(t *statementTable) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, tr(t.Title))
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 10, tr(t.Subtitle))
	pdf.Ln(12)

	for i, row := range t.Rows {
		style := ""
		if t.Bold[i] {
			style = "B"
		}
		pdf.SetFont("Arial", style, 10)
		pdf.CellFormat(25, 7, tr(row[0]), "", 0, "L", false, 0, "")
		pdf.CellFormat(110, 7, tr(row[1]), "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(row[2]), "", 1, "R", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, tr("Utilidad neta en letras: "+NumberToWords(t.NetIncome)), "", "L", false)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
