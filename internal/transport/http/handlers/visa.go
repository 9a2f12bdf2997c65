package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/usecase"
)

// VisaHandler exposes visa-extension workflow endpoints.
type VisaHandler struct {
	visas *usecase.VisaService
}

// NewVisaHandler constructs VisaHandler.
func NewVisaHandler(visas *usecase.VisaService) *VisaHandler {
	return &VisaHandler{visas: visas}
}

// RegisterRoutes binds visa routes under an authenticated group.
func (h *VisaHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.POST("/:id/submit", h.submit)
	r.PUT("/:id/status", h.changeStatus)
	r.DELETE("/:id", h.remove)
	r.GET("/:id/history", h.history)
	r.POST("/reminders", h.sendReminders)
}

// VisaRequest defines the applicant-editable payload.
type VisaRequest struct {
	PassportNumber    string    `json:"passport_number" binding:"required"`
	Country           string    `json:"country" binding:"required"`
	CurrentVisaExpiry time.Time `json:"current_visa_expiry" binding:"required"`
	RequestedUntil    time.Time `json:"requested_until" binding:"required"`
	Reason            string    `json:"reason"`
}

func (r VisaRequest) toInput() usecase.VisaInput {
	return usecase.VisaInput{
		PassportNumber:    r.PassportNumber,
		Country:           r.Country,
		CurrentVisaExpiry: r.CurrentVisaExpiry,
		RequestedUntil:    r.RequestedUntil,
		Reason:            r.Reason,
	}
}

// VisaResponse is the wire form of a visa extension.
type VisaResponse struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	PassportNumber    string     `json:"passport_number"`
	Country           string     `json:"country"`
	CurrentVisaExpiry time.Time  `json:"current_visa_expiry"`
	RequestedUntil    time.Time  `json:"requested_until"`
	Reason            string     `json:"reason,omitempty"`
	Status            string     `json:"status"`
	ReviewerID        *string    `json:"reviewer_id,omitempty"`
	RevisionCount     int        `json:"revision_count"`
	SubmittedAt       *time.Time `json:"submitted_at,omitempty"`
	ApprovedAt        *time.Time `json:"approved_at,omitempty"`
	RejectedAt        *time.Time `json:"rejected_at,omitempty"`
	ExtendedAt        *time.Time `json:"extended_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toVisaResponse(visa domain.VisaExtension) VisaResponse {
	return VisaResponse{
		ID:                visa.ID,
		OwnerID:           visa.OwnerID,
		PassportNumber:    visa.PassportNumber,
		Country:           visa.Country,
		CurrentVisaExpiry: visa.CurrentVisaExpiry,
		RequestedUntil:    visa.RequestedUntil,
		Reason:            visa.Reason,
		Status:            string(visa.Status),
		ReviewerID:        visa.ReviewerID,
		RevisionCount:     visa.RevisionCount,
		SubmittedAt:       visa.SubmittedAt,
		ApprovedAt:        visa.ApprovedAt,
		RejectedAt:        visa.RejectedAt,
		ExtendedAt:        visa.ExtendedAt,
		CreatedAt:         visa.CreatedAt,
		UpdatedAt:         visa.UpdatedAt,
	}
}

// VisaListResponse wraps a page of visa extensions.
type VisaListResponse struct {
	Visas []VisaResponse `json:"visas"`
	Meta  ListMeta       `json:"meta"`
}

func (h *VisaHandler) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req VisaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	visa, err := h.visas.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		respondWorkflowError(c, err, "failed to create application")
		return
	}

	c.JSON(http.StatusCreated, toVisaResponse(*visa))
}

func (h *VisaHandler) list(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	filter := port.VisaFilter{
		OwnerID: c.Query("owner_id"),
		Status:  domain.VisaStatus(c.Query("status")),
		Country: c.Query("country"),
		Search:  c.Query("search"),
		Limit:   limit,
		Offset:  offset,
	}
	if from, ok := queryTime(c, "from"); ok {
		filter.From = &from
	}
	if to, ok := queryTime(c, "to"); ok {
		filter.To = &to
	}

	visas, total, err := h.visas.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondWorkflowError(c, err, "failed to list applications")
		return
	}

	items := make([]VisaResponse, 0, len(visas))
	for _, visa := range visas {
		items = append(items, toVisaResponse(visa))
	}

	c.JSON(http.StatusOK, VisaListResponse{
		Visas: items,
		Meta:  ListMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	})
}

func (h *VisaHandler) get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	visa, err := h.visas.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to load application")
		return
	}

	c.JSON(http.StatusOK, toVisaResponse(*visa))
}

func (h *VisaHandler) update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req VisaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	visa, err := h.visas.Update(c.Request.Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		respondWorkflowError(c, err, "failed to update application")
		return
	}

	c.JSON(http.StatusOK, toVisaResponse(*visa))
}

func (h *VisaHandler) submit(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	visa, err := h.visas.Submit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to submit application")
		return
	}

	c.JSON(http.StatusOK, toVisaResponse(*visa))
}

func (h *VisaHandler) changeStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	visa, err := h.visas.ChangeStatus(c.Request.Context(), actor, c.Param("id"), domain.VisaStatus(req.Status), req.Comment)
	if err != nil {
		respondWorkflowError(c, err, "failed to change status")
		return
	}

	c.JSON(http.StatusOK, toVisaResponse(*visa))
}

func (h *VisaHandler) remove(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.visas.Remove(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondWorkflowError(c, err, "failed to delete application")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "application deleted"})
}

func (h *VisaHandler) history(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	entries, err := h.visas.History(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to load history")
		return
	}

	items := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		items = append(items, HistoryEntry{
			ID:         entry.ID,
			FromStatus: string(entry.FromStatus),
			ToStatus:   string(entry.ToStatus),
			Comment:    entry.Comment,
			ChangedBy:  entry.ChangedBy,
			ChangedAt:  entry.ChangedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"history": items})
}

// ReminderRequest configures the expiry sweep horizon in days.
type ReminderRequest struct {
	WithinDays int `json:"within_days"`
}

func (h *VisaHandler) sendReminders(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	sent, err := h.visas.SendExpiryReminders(c.Request.Context(), actor, time.Duration(req.WithinDays)*24*time.Hour)
	if err != nil {
		respondWorkflowError(c, err, "failed to send reminders")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reminders_sent": sent})
}

func queryTime(c *gin.Context, key string) (time.Time, bool) {
	val := c.Query(key)
	if val == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", val); err == nil {
		return t, true
	}

	return time.Time{}, false
}
