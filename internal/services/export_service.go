package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/cnc-voile/cantine-service/internal/models"
)

// Export formats accepted by the reporting endpoint.
const (
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ExportFile is a rendered report ready to be served as a download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ===== SERVICE INTERFACE =====

type ExportService interface {
	Export(ctx context.Context, format string, from, to *time.Time) (*ExportFile, error)
}

// ===== SERVICE IMPLEMENTATION =====

type exportService struct {
	stats  StatsService
	logger *slog.Logger
}

func NewExportService(stats StatsService, logger *slog.Logger) ExportService {
	return &exportService{
		stats:  stats,
		logger: logger,
	}
}

func (s *exportService) Export(ctx context.Context, format string, from, to *time.Time) (*ExportFile, error) {
	rows, err := s.stats.ExportRows(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stats, err := s.stats.Aggregate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	stamp := time.Now().Format("2006-01-02")

	switch format {
	case FormatCSV:
		data, err := renderCSV(rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("reservations_%s.csv", stamp),
			ContentType: "text/csv; charset=utf-8",
			Data:        data,
		}, nil

	case FormatPDF:
		data, err := renderPDF(stats, rows, from, to)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("reservations_%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil

	case FormatXLSX:
		data, err := renderXLSX(stats, rows)
		if err != nil {
			return nil, err
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("reservations_%s.xlsx", stamp),
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil

	default:
		return nil, fmt.Errorf("%w: unknown export format %q", ErrValidationFailed, format)
	}
}

// renderCSV writes the detail listing prefixed with a UTF-8 byte order
// mark so spreadsheet software picks the right encoding.
func renderCSV(rows []models.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write([]byte{0xEF, 0xBB, 0xBF})

	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"ID", "Date", "Nom", "Status"}); err != nil {
		return nil, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.Date,
			row.Name,
			row.Status,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

func renderPDF(stats *models.ReservationStats, rows []models.ExportRow, from, to *time.Time) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr("Rapport des réservations"), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(rangeLabel(from, to)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Status counts
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Repas par statut"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, status := range sortedKeys(stats.ByStatus) {
		pdf.CellFormat(90, 6, tr(status), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 6, strconv.Itoa(stats.ByStatus[status]), "1", 1, "R", false, 0, "")
	}
	pdf.CellFormat(90, 6, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, strconv.Itoa(stats.TotalMeals), "1", 1, "R", false, 0, "")
	pdf.Ln(4)

	// Per-user breakdown
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Repas par personne"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(60, 6, "Nom", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 6, "Code", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 6, "Voile", "1", 0, "R", false, 0, "")
	pdf.CellFormat(20, 6, "Bar", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, tr("Bénévole"), "1", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, name := range sortedUserKeys(stats.ByUser) {
		b := stats.ByUser[name]
		pdf.CellFormat(60, 6, tr(name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, b.ShortID, "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, strconv.Itoa(b.Total), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, strconv.Itoa(b.Voile), "1", 0, "R", false, 0, "")
		pdf.CellFormat(20, 6, strconv.Itoa(b.Bar), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, strconv.Itoa(b.Benevole), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	// Detail listing
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, tr("Détail des réservations"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(20, 6, "ID", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Date", "1", 0, "C", false, 0, "")
	pdf.CellFormat(80, 6, "Nom", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 6, "Status", "1", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range rows {
		pdf.CellFormat(20, 6, strconv.FormatUint(uint64(row.ID), 10), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, row.Date, "1", 0, "C", false, 0, "")
		pdf.CellFormat(80, 6, tr(row.Name), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 6, tr(row.Status), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func renderXLSX(stats *models.ReservationStats, rows []models.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const (
		sheetSummary = "Résumé"
		sheetByUser  = "Par personne"
		sheetDetail  = "Détail"
	)

	f.SetSheetName("Sheet1", sheetSummary)

	f.SetCellValue(sheetSummary, "A1", "Statut")
	f.SetCellValue(sheetSummary, "B1", "Repas")
	line := 2
	for _, status := range sortedKeys(stats.ByStatus) {
		f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", line), status)
		f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", line), stats.ByStatus[status])
		line++
	}
	f.SetCellValue(sheetSummary, fmt.Sprintf("A%d", line), "Total")
	f.SetCellValue(sheetSummary, fmt.Sprintf("B%d", line), stats.TotalMeals)

	if _, err := f.NewSheet(sheetByUser); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	headers := []string{"Nom", "Code", "Total", "Voile", "Bar", "Bénévole"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetByUser, cell, h)
	}
	line = 2
	for _, name := range sortedUserKeys(stats.ByUser) {
		b := stats.ByUser[name]
		values := []interface{}{name, b.ShortID, b.Total, b.Voile, b.Bar, b.Benevole}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, line)
			f.SetCellValue(sheetByUser, cell, v)
		}
		line++
	}

	if _, err := f.NewSheet(sheetDetail); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	detailHeaders := []string{"ID", "Date", "Nom", "Status"}
	for i, h := range detailHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetDetail, cell, h)
	}
	for i, row := range rows {
		values := []interface{}{row.ID, row.Date, row.Name, row.Status}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+2)
			f.SetCellValue(sheetDetail, cell, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render xlsx: %w", err)
	}

	return buf.Bytes(), nil
}

func rangeLabel(from, to *time.Time) string {
	f, t := "...", "..."
	if from != nil {
		f = from.Format("02/01/2006")
	}
	if to != nil {
		t = to.Format("02/01/2006")
	}
	return fmt.Sprintf("Du %s au %s", f, t)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedUserKeys(m map[string]*models.UserBreakdown) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
