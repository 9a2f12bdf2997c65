package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/infra/telemetry"
	"github.com/campusio/intl-office/internal/report"
)

// ReportFormat names a supported export format.
type ReportFormat string

const (
	FormatExcel ReportFormat = "xlsx"
	FormatPDF   ReportFormat = "pdf"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// Report is a rendered export ready for download.
type Report struct {
	FileName    string
	ContentType string
	Content     []byte
}

// ReportService renders visa and memorandum exports for office staff.
type ReportService struct {
	visas   port.VisaExtensionRepository
	mous    port.MOURepository
	excel   *report.ExcelGenerator
	pdf     *report.PDFGenerator
	metrics *telemetry.Provider
	now     func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(visas port.VisaExtensionRepository, mous port.MOURepository, excel *report.ExcelGenerator, pdf *report.PDFGenerator, metrics *telemetry.Provider) *ReportService {
	return &ReportService{
		visas:   visas,
		mous:    mous,
		excel:   excel,
		pdf:     pdf,
		metrics: metrics,
		now:     time.Now,
	}
}

// WithClock overrides the time source (testing).
func (s *ReportService) WithClock(now func() time.Time) *ReportService {
	if now != nil {
		s.now = now
	}
	return s
}

// VisaReport exports visa-extension applications in the requested format.
func (s *ReportService) VisaReport(ctx context.Context, actor domain.Actor, filter port.VisaFilter, format ReportFormat) (*Report, error) {
	if !actor.Can(domain.PermReportGenerate) {
		return nil, ErrPermissionDenied
	}

	rows, err := s.visas.ListForReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("collect visa report rows: %w", err)
	}

	stamp := s.now().UTC().Format("2006-01-02")

	switch format {
	case FormatExcel:
		buf, err := s.excel.VisaWorkbook(rows)
		if err != nil {
			return nil, fmt.Errorf("render visa workbook: %w", err)
		}
		s.metrics.ObserveReport(visaEntity, string(format))
		return &Report{
			FileName:    fmt.Sprintf("visa-extensions-%s.xlsx", stamp),
			ContentType: mimeXLSX,
			Content:     buf.Bytes(),
		}, nil
	case FormatPDF:
		buf, err := s.pdf.VisaSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("render visa pdf: %w", err)
		}
		s.metrics.ObserveReport(visaEntity, string(format))
		return &Report{
			FileName:    fmt.Sprintf("visa-extensions-%s.pdf", stamp),
			ContentType: mimePDF,
			Content:     buf.Bytes(),
		}, nil
	}

	return nil, fmt.Errorf("%w: unsupported format %q", ErrValidation, format)
}

// MOUReport exports memoranda in the requested format.
func (s *ReportService) MOUReport(ctx context.Context, actor domain.Actor, filter port.MOUFilter, format ReportFormat) (*Report, error) {
	if !actor.Can(domain.PermReportGenerate) {
		return nil, ErrPermissionDenied
	}

	rows, err := s.mous.ListForReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("collect mou report rows: %w", err)
	}

	stamp := s.now().UTC().Format("2006-01-02")

	switch format {
	case FormatExcel:
		buf, err := s.excel.MOUWorkbook(rows)
		if err != nil {
			return nil, fmt.Errorf("render mou workbook: %w", err)
		}
		s.metrics.ObserveReport(mouEntity, string(format))
		return &Report{
			FileName:    fmt.Sprintf("mous-%s.xlsx", stamp),
			ContentType: mimeXLSX,
			Content:     buf.Bytes(),
		}, nil
	case FormatPDF:
		buf, err := s.pdf.MOUSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("render mou pdf: %w", err)
		}
		s.metrics.ObserveReport(mouEntity, string(format))
		return &Report{
			FileName:    fmt.Sprintf("mous-%s.pdf", stamp),
			ContentType: mimePDF,
			Content:     buf.Bytes(),
		}, nil
	}

	return nil, fmt.Errorf("%w: unsupported format %q", ErrValidation, format)
}
