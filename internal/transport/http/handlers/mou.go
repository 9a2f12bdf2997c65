package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/usecase"
)

// MOUHandler exposes memorandum workflow endpoints.
type MOUHandler struct {
	mous *usecase.MOUService
}

// NewMOUHandler constructs MOUHandler.
func NewMOUHandler(mous *usecase.MOUService) *MOUHandler {
	return &MOUHandler{mous: mous}
}

// RegisterRoutes binds memorandum routes under an authenticated group.
func (h *MOUHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.POST("/:id/propose", h.propose)
	r.PUT("/:id/status", h.changeStatus)
	r.DELETE("/:id", h.remove)
	r.GET("/:id/history", h.history)
}

// MOURequest defines the owner-editable payload.
type MOURequest struct {
	PartnerName    string     `json:"partner_name" binding:"required"`
	PartnerCountry string     `json:"partner_country"`
	Title          string     `json:"title" binding:"required"`
	Summary        string     `json:"summary"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

func (r MOURequest) toInput() usecase.MOUInput {
	return usecase.MOUInput{
		PartnerName:    r.PartnerName,
		PartnerCountry: r.PartnerCountry,
		Title:          r.Title,
		Summary:        r.Summary,
		StartDate:      r.StartDate,
		EndDate:        r.EndDate,
	}
}

// MOUResponse is the wire form of a memorandum.
type MOUResponse struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	PartnerName    string     `json:"partner_name"`
	PartnerCountry string     `json:"partner_country,omitempty"`
	Title          string     `json:"title"`
	Summary        string     `json:"summary,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Status         string     `json:"status"`
	ReviewerID     *string    `json:"reviewer_id,omitempty"`
	RevisionCount  int        `json:"revision_count"`
	ProposedAt     *time.Time `json:"proposed_at,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`
	SignedAt       *time.Time `json:"signed_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toMOUResponse(mou domain.MOU) MOUResponse {
	return MOUResponse{
		ID:             mou.ID,
		OwnerID:        mou.OwnerID,
		PartnerName:    mou.PartnerName,
		PartnerCountry: mou.PartnerCountry,
		Title:          mou.Title,
		Summary:        mou.Summary,
		StartDate:      mou.StartDate,
		EndDate:        mou.EndDate,
		Status:         string(mou.Status),
		ReviewerID:     mou.ReviewerID,
		RevisionCount:  mou.RevisionCount,
		ProposedAt:     mou.ProposedAt,
		ApprovedAt:     mou.ApprovedAt,
		SignedAt:       mou.SignedAt,
		RejectedAt:     mou.RejectedAt,
		CreatedAt:      mou.CreatedAt,
		UpdatedAt:      mou.UpdatedAt,
	}
}

// MOUListResponse wraps a page of memoranda.
type MOUListResponse struct {
	MOUs []MOUResponse `json:"mous"`
	Meta ListMeta      `json:"meta"`
}

func (h *MOUHandler) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req MOURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	mou, err := h.mous.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		respondWorkflowError(c, err, "failed to create memorandum")
		return
	}

	c.JSON(http.StatusCreated, toMOUResponse(*mou))
}

func (h *MOUHandler) list(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	filter := port.MOUFilter{
		OwnerID: c.Query("owner_id"),
		Status:  domain.MOUStatus(c.Query("status")),
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

	mous, total, err := h.mous.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondWorkflowError(c, err, "failed to list memoranda")
		return
	}

	items := make([]MOUResponse, 0, len(mous))
	for _, mou := range mous {
		items = append(items, toMOUResponse(mou))
	}

	c.JSON(http.StatusOK, MOUListResponse{
		MOUs: items,
		Meta: ListMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	})
}

func (h *MOUHandler) get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	mou, err := h.mous.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to load memorandum")
		return
	}

	c.JSON(http.StatusOK, toMOUResponse(*mou))
}

func (h *MOUHandler) update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req MOURequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	mou, err := h.mous.Update(c.Request.Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		respondWorkflowError(c, err, "failed to update memorandum")
		return
	}

	c.JSON(http.StatusOK, toMOUResponse(*mou))
}

func (h *MOUHandler) propose(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	mou, err := h.mous.Propose(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to propose memorandum")
		return
	}

	c.JSON(http.StatusOK, toMOUResponse(*mou))
}

func (h *MOUHandler) changeStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	mou, err := h.mous.ChangeStatus(c.Request.Context(), actor, c.Param("id"), domain.MOUStatus(req.Status), req.Comment)
	if err != nil {
		respondWorkflowError(c, err, "failed to change status")
		return
	}

	c.JSON(http.StatusOK, toMOUResponse(*mou))
}

func (h *MOUHandler) remove(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.mous.Remove(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondWorkflowError(c, err, "failed to delete memorandum")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "memorandum deleted"})
}

func (h *MOUHandler) history(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	entries, err := h.mous.History(c.Request.Context(), actor, c.Param("id"))
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
