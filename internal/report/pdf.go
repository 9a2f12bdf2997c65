package report

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/campusio/intl-office/internal/core/port"
)

// PDFGenerator renders office reports as landscape A4 PDF tables.
type PDFGenerator struct{}

// NewPDFGenerator constructs a PDFGenerator.
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

func newDoc(title string) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	return pdf
}

func tableHeader(pdf *fpdf.Fpdf, widths []float64, headers []string) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(220, 230, 241)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
}

func tableRow(pdf *fpdf.Fpdf, widths []float64, cells []string) {
	for i, c := range cells {
		pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}

// VisaSummary renders visa-extension rows into a PDF table.
func (g *PDFGenerator) VisaSummary(rows []port.VisaReportRow) (*bytes.Buffer, error) {
	pdf := newDoc("Visa Extension Applications")

	widths := []float64{55, 35, 30, 30, 25, 30, 36}
	tableHeader(pdf, widths, []string{"Applicant", "Department", "Passport", "Country", "Status", "Submitted", "Requested Until"})

	for _, row := range rows {
		tableRow(pdf, widths, []string{
			row.ApplicantName,
			row.Department,
			row.PassportNumber,
			row.Country,
			string(row.Status),
			formatDate(row.SubmittedAt),
			row.RequestedUntil.Format(dateLayout),
		})
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Total applications: %d", len(rows)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize pdf: %w", err)
	}

	return &buf, nil
}

// MOUSummary renders memorandum rows into a PDF table.
func (g *PDFGenerator) MOUSummary(rows []port.MOUReportRow) (*bytes.Buffer, error) {
	pdf := newDoc("Memoranda of Understanding")

	widths := []float64{70, 50, 30, 40, 25, 28, 28}
	tableHeader(pdf, widths, []string{"Title", "Partner", "Country", "Owner", "Status", "Proposed", "Signed"})

	for _, row := range rows {
		tableRow(pdf, widths, []string{
			row.Title,
			row.PartnerName,
			row.PartnerCountry,
			row.OwnerName,
			string(row.Status),
			formatDate(row.ProposedAt),
			formatDate(row.SignedAt),
		})
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, fmt.Sprintf("Total memoranda: %d", len(rows)), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("serialize pdf: %w", err)
	}

	return &buf, nil
}
