// Package pdf renders adherence reports.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dosewise/dosewise/pkg/model"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"
)

// Generator generates adherence report PDFs
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a new Generator
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{
		logger: logger,
	}
}

// ReportData contains all data needed for report generation
type ReportData struct {
	ProfileName string
	DateRange   string
	Medications []model.Medication
	Logs        []model.LogEntry
	Summary     string
	Taken       int
	Skipped     int
}

// Generate creates a PDF report from the provided data
func (g *Generator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating adherence report",
		zap.String("profile", data.ProfileName),
		zap.String("date_range", data.DateRange),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	g.addTitle(pdf, "Medication Adherence Report", data.ProfileName, data.DateRange)
	g.addAdherenceSummary(pdf, data)
	g.addMedicationList(pdf, data.Medications)
	g.addDoseLog(pdf, data.Logs, data.Medications)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("adherence report generated",
		zap.Int("size_bytes", buf.Len()),
	)

	return buf.Bytes(), nil
}

// addTitle adds the report title and header information
func (g *Generator) addTitle(pdf *gofpdf.Fpdf, title, profileName, dateRange string) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Profile: %s", profileName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Period: %s", dateRange), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(10)
}

// addSectionHeader adds a section header
func (g *Generator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

// addAdherenceSummary adds the overall taken/skipped counts and the
// optional narrative paragraph.
func (g *Generator) addAdherenceSummary(pdf *gofpdf.Fpdf, data *ReportData) {
	g.addSectionHeader(pdf, "Summary")

	total := data.Taken + data.Skipped
	rate := 0.0
	if total > 0 {
		rate = float64(data.Taken) / float64(total) * 100
	}

	pdf.CellFormat(0, 6, fmt.Sprintf("Doses taken: %d", data.Taken), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Doses skipped: %d", data.Skipped), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Adherence rate: %.0f%%", rate), "", 1, "L", false, 0, "")

	if data.Summary != "" {
		pdf.Ln(3)
		pdf.MultiCell(0, 5, data.Summary, "", "L", false)
	}
	pdf.Ln(8)
}

// addMedicationList adds the tracked medications table
func (g *Generator) addMedicationList(pdf *gofpdf.Fpdf, meds []model.Medication) {
	g.addSectionHeader(pdf, "Medications")

	if len(meds) == 0 {
		pdf.CellFormat(0, 6, "No medications tracked in this period.", "", 1, "L", false, 0, "")
		pdf.Ln(8)
		return
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(60, 7, "Name", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, "Dosage", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Frequency", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Stock", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, med := range meds {
		stock := fmt.Sprintf("%d", med.Stock)
		if med.LowStock() {
			stock += " (low)"
		}
		pdf.CellFormat(60, 7, med.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, med.Dosage, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, string(med.Frequency), "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, stock, "1", 1, "L", false, 0, "")
	}
	pdf.Ln(8)
}

// addDoseLog adds the per-dose history. Deleted medications show as
// "Unknown".
func (g *Generator) addDoseLog(pdf *gofpdf.Fpdf, logs []model.LogEntry, meds []model.Medication) {
	g.addSectionHeader(pdf, "Dose History")

	if len(logs) == 0 {
		pdf.CellFormat(0, 6, "No doses logged in this period.", "", 1, "L", false, 0, "")
		return
	}

	names := make(map[string]string, len(meds))
	for _, med := range meds {
		names[med.ID] = med.Name
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(35, 7, "Date", "1", 0, "L", false, 0, "")
	pdf.CellFormat(25, 7, "Time", "1", 0, "L", false, 0, "")
	pdf.CellFormat(75, 7, "Medication", "1", 0, "L", false, 0, "")
	pdf.CellFormat(35, 7, "Status", "1", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, entry := range logs {
		name, ok := names[entry.MedicationID]
		if !ok {
			name = "Unknown"
		}
		pdf.CellFormat(35, 7, entry.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 7, entry.ScheduledTime, "1", 0, "L", false, 0, "")
		pdf.CellFormat(75, 7, name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, string(entry.Status), "1", 1, "L", false, 0, "")
	}
}
