package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/usecase"
)

// VisitorHandler exposes visitor-registration endpoints.
type VisitorHandler struct {
	visitors *usecase.VisitorService
}

// NewVisitorHandler constructs VisitorHandler.
func NewVisitorHandler(visitors *usecase.VisitorService) *VisitorHandler {
	return &VisitorHandler{visitors: visitors}
}

// RegisterRoutes binds visitor routes under an authenticated group.
func (h *VisitorHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.PUT("/:id/status", h.changeStatus)
	r.DELETE("/:id", h.remove)
}

// VisitorRequestPayload defines the host-editable payload.
type VisitorRequestPayload struct {
	VisitorName   string    `json:"visitor_name" binding:"required"`
	VisitorEmail  string    `json:"visitor_email"`
	Country       string    `json:"country" binding:"required"`
	Institution   string    `json:"institution"`
	Purpose       string    `json:"purpose"`
	ArrivalDate   time.Time `json:"arrival_date" binding:"required"`
	DepartureDate time.Time `json:"departure_date" binding:"required"`
}

func (r VisitorRequestPayload) toInput() usecase.VisitorInput {
	return usecase.VisitorInput{
		VisitorName:   r.VisitorName,
		VisitorEmail:  r.VisitorEmail,
		Country:       r.Country,
		Institution:   r.Institution,
		Purpose:       r.Purpose,
		ArrivalDate:   r.ArrivalDate,
		DepartureDate: r.DepartureDate,
	}
}

// VisitorResponse is the wire form of a visitor registration.
type VisitorResponse struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	VisitorName   string     `json:"visitor_name"`
	VisitorEmail  string     `json:"visitor_email,omitempty"`
	Country       string     `json:"country"`
	Institution   string     `json:"institution,omitempty"`
	Purpose       string     `json:"purpose,omitempty"`
	ArrivalDate   time.Time  `json:"arrival_date"`
	DepartureDate time.Time  `json:"departure_date"`
	Status        string     `json:"status"`
	ReviewerID    *string    `json:"reviewer_id,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func toVisitorResponse(reg domain.VisitorRegistration) VisitorResponse {
	return VisitorResponse{
		ID:            reg.ID,
		OwnerID:       reg.OwnerID,
		VisitorName:   reg.VisitorName,
		VisitorEmail:  reg.VisitorEmail,
		Country:       reg.Country,
		Institution:   reg.Institution,
		Purpose:       reg.Purpose,
		ArrivalDate:   reg.ArrivalDate,
		DepartureDate: reg.DepartureDate,
		Status:        string(reg.Status),
		ReviewerID:    reg.ReviewerID,
		ApprovedAt:    reg.ApprovedAt,
		RejectedAt:    reg.RejectedAt,
		CompletedAt:   reg.CompletedAt,
		CreatedAt:     reg.CreatedAt,
		UpdatedAt:     reg.UpdatedAt,
	}
}

// VisitorListResponse wraps a page of visitor registrations.
type VisitorListResponse struct {
	Registrations []VisitorResponse `json:"registrations"`
	Meta          ListMeta          `json:"meta"`
}

func (h *VisitorHandler) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req VisitorRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	reg, err := h.visitors.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		respondWorkflowError(c, err, "failed to create registration")
		return
	}

	c.JSON(http.StatusCreated, toVisitorResponse(*reg))
}

func (h *VisitorHandler) list(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	filter := port.VisitorFilter{
		OwnerID: c.Query("owner_id"),
		Status:  domain.VisitorStatus(c.Query("status")),
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

	regs, total, err := h.visitors.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondWorkflowError(c, err, "failed to list registrations")
		return
	}

	items := make([]VisitorResponse, 0, len(regs))
	for _, reg := range regs {
		items = append(items, toVisitorResponse(reg))
	}

	c.JSON(http.StatusOK, VisitorListResponse{
		Registrations: items,
		Meta:          ListMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	})
}

func (h *VisitorHandler) get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	reg, err := h.visitors.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to load registration")
		return
	}

	c.JSON(http.StatusOK, toVisitorResponse(*reg))
}

func (h *VisitorHandler) update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req VisitorRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	reg, err := h.visitors.Update(c.Request.Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		respondWorkflowError(c, err, "failed to update registration")
		return
	}

	c.JSON(http.StatusOK, toVisitorResponse(*reg))
}

func (h *VisitorHandler) changeStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	reg, err := h.visitors.ChangeStatus(c.Request.Context(), actor, c.Param("id"), domain.VisitorStatus(req.Status), req.Comment)
	if err != nil {
		respondWorkflowError(c, err, "failed to change status")
		return
	}

	c.JSON(http.StatusOK, toVisitorResponse(*reg))
}

func (h *VisitorHandler) remove(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.visitors.Remove(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondWorkflowError(c, err, "failed to delete registration")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "registration deleted"})
}
