package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/usecase"
)

// ReportHandler exposes downloadable visa and memorandum exports.
type ReportHandler struct {
	reports *usecase.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *usecase.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// RegisterRoutes binds report routes under an authenticated group.
func (h *ReportHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/visas", h.visas)
	r.GET("/mous", h.mous)
}

func reportFormat(c *gin.Context) usecase.ReportFormat {
	format := usecase.ReportFormat(c.Query("format"))
	if format == "" {
		format = usecase.FormatExcel
	}
	return format
}

func (h *ReportHandler) visas(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	filter := port.VisaFilter{
		OwnerID: c.Query("owner_id"),
		Status:  domain.VisaStatus(c.Query("status")),
		Country: c.Query("country"),
	}
	if from, ok := queryTime(c, "from"); ok {
		filter.From = &from
	}
	if to, ok := queryTime(c, "to"); ok {
		filter.To = &to
	}

	report, err := h.reports.VisaReport(c.Request.Context(), actor, filter, reportFormat(c))
	if err != nil {
		respondWorkflowError(c, err, "failed to generate report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Content)
}

func (h *ReportHandler) mous(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	filter := port.MOUFilter{
		OwnerID: c.Query("owner_id"),
		Status:  domain.MOUStatus(c.Query("status")),
		Country: c.Query("country"),
	}
	if from, ok := queryTime(c, "from"); ok {
		filter.From = &from
	}
	if to, ok := queryTime(c, "to"); ok {
		filter.To = &to
	}

	report, err := h.reports.MOUReport(c.Request.Context(), actor, filter, reportFormat(c))
	if err != nil {
		respondWorkflowError(c, err, "failed to generate report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.FileName))
	c.Data(http.StatusOK, report.ContentType, report.Content)
}
