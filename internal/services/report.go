package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/tooltag/tooltag-backend/internal/apperr"
	"github.com/tooltag/tooltag-backend/internal/logger"
	"github.com/tooltag/tooltag-backend/internal/storage"
)

// ReportService renders the fulfilled view as a downloadable PDF.
type ReportService interface {
	Build(ctx context.Context, f FulfilledFilter) ([]byte, error)
}

type reportService struct {
	log       *logger.Logger
	fulfilled FulfilledService
	photos    *storage.PhotoStore
	fontPath  string
}

// NewReportService builds PDF reports. fontPath optionally points at a TTF
// for the chart; empty means the built-in bitmap face.
func NewReportService(baseLog *logger.Logger, fulfilled FulfilledService, photos *storage.PhotoStore, fontPath string) ReportService {
	return &reportService{
		log:       baseLog.With("service", "ReportService"),
		fulfilled: fulfilled,
		photos:    photos,
		fontPath:  fontPath,
	}
}

func (s *reportService) Build(ctx context.Context, f FulfilledFilter) ([]byte, error) {
	records, err := s.fulfilled.List(ctx, f)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 18)
	pdf.AddPage()

	// Core fonts are cp1252; accented text must go through the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	s.header(pdf, tr, f, len(records))

	for i, rec := range records {
		s.record(pdf, tr, rec, i)
	}
	if len(records) == 0 {
		pdf.SetFont("Helvetica", "I", 11)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 12, "No fulfilled records match the current filters.", "", 1, "C", false, 0, "")
	}

	s.chartPage(pdf, records)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperr.Storage("render report pdf", err)
	}
	return buf.Bytes(), nil
}

func (s *reportService) header(pdf *gofpdf.Fpdf, tr func(string) string, f FulfilledFilter, total int) {
	pdf.SetFillColor(44, 62, 80)
	pdf.Rect(0, 0, 210, 26, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(10, 6)
	pdf.CellFormat(0, 8, "Fulfilled Requests Report", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetX(10)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Filters: %s    Total records: %d", filterSummary(f), total)), "", 1, "L", false, 0, "")
	pdf.SetY(30)
	pdf.SetTextColor(0, 0, 0)
}

func filterSummary(f FulfilledFilter) string {
	var parts []string
	if strings.TrimSpace(f.Title) != "" {
		parts = append(parts, "title~"+f.Title)
	}
	if strings.TrimSpace(f.Priority) != "" {
		parts = append(parts, "priority="+f.Priority)
	}
	if strings.TrimSpace(f.FulfilledBy) != "" {
		parts = append(parts, "fulfilled by~"+f.FulfilledBy)
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

func (s *reportService) record(pdf *gofpdf.Fpdf, tr func(string) string, rec *FulfilledRecord, idx int) {
	if idx%2 == 0 {
		pdf.SetFillColor(245, 246, 248)
	} else {
		pdf.SetFillColor(255, 255, 255)
	}

	when := ""
	if rec.FulfilledAt != nil {
		when = rec.FulfilledAt.Format("02/01/2006 15:04")
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(22, 7, strings.ToUpper(rec.Source), "", 0, "L", true, 0, "")
	pdf.CellFormat(88, 7, tr(clip(rec.Title, 60)), "", 0, "L", true, 0, "")
	pdf.CellFormat(28, 7, tr(clip(rec.Priority, 16)), "", 0, "L", true, 0, "")
	pdf.CellFormat(32, 7, when, "", 0, "L", true, 0, "")
	pdf.CellFormat(0, 7, tr(clip(rec.FulfilledBy, 18)), "", 1, "L", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if rec.Machine != "" || rec.ItemName != "" || rec.ItemCode != "" {
		line := strings.TrimSpace(strings.Join(nonEmpty(rec.Machine, rec.ItemName, rec.ItemCode), "  |  "))
		pdf.CellFormat(0, 5, tr(clip(line, 110)), "", 1, "L", true, 0, "")
	}
	if rec.Description != "" {
		pdf.SetTextColor(90, 90, 90)
		pdf.CellFormat(0, 5, tr(clip(rec.Description, 110)), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	if rec.Source == SourceRequest && len(rec.Photos) > 0 {
		s.thumbnails(pdf, rec.Photos)
	}
	pdf.Ln(2)
}

// thumbnails lays fulfillment photos out in a small grid. Unreadable files
// are skipped rather than failing the whole report.
func (s *reportService) thumbnails(pdf *gofpdf.Fpdf, photos []string) {
	const (
		thumbW  = 28.0
		thumbH  = 21.0
		gap     = 3.0
		perRow  = 6
		leftPad = 10.0
	)
	x, y := leftPad, pdf.GetY()+1
	placed := 0
	for _, name := range photos {
		path := s.photos.Path(name)
		if path == "" {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			s.log.Warn("Skipping unreadable report photo", "photo", name, "error", err)
			continue
		}
		imgType := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		if imgType == "jpg" {
			imgType = "jpeg"
		}
		if imgType != "png" && imgType != "jpeg" && imgType != "gif" {
			continue
		}
		opts := gofpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
		if pdf.Err() {
			s.log.Warn("Skipping undecodable report photo", "photo", name, "error", pdf.Error())
			pdf.ClearError()
			continue
		}
		if placed > 0 && placed%perRow == 0 {
			x = leftPad
			y += thumbH + gap
		}
		pdf.ImageOptions(name, x, y, thumbW, thumbH, false, opts, 0, "")
		x += thumbW + gap
		placed++
	}
	if placed > 0 {
		pdf.SetY(y + thumbH + gap)
	}
}

func (s *reportService) chartPage(pdf *gofpdf.Fpdf, records []*FulfilledRecord) {
	counts := make(map[string]int)
	for _, rec := range records {
		p := strings.TrimSpace(rec.Priority)
		if p == "" {
			p = "unset"
		}
		counts[p]++
	}

	png, err := renderPriorityChart(counts, s.fontPath)
	if err != nil {
		s.log.Warn("Failed to render priority chart; report ships without it", "error", err)
		return
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, "Records per Priority", "", 1, "L", false, 0, "")
	opts := gofpdf.ImageOptions{ImageType: "png"}
	pdf.RegisterImageOptionsReader("priority-chart", opts, bytes.NewReader(png))
	pdf.ImageOptions("priority-chart", 15, 35, 180, 0, false, opts, 0, "")
}

// clip shortens s to at most n runes; slicing by runes keeps multibyte
// characters intact.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
