package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/usecase"
)

// TranslationHandler exposes translation-request endpoints.
type TranslationHandler struct {
	translations *usecase.TranslationService
}

// NewTranslationHandler constructs TranslationHandler.
func NewTranslationHandler(translations *usecase.TranslationService) *TranslationHandler {
	return &TranslationHandler{translations: translations}
}

// RegisterRoutes binds translation routes under an authenticated group.
func (h *TranslationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.PUT("/:id/status", h.changeStatus)
	r.DELETE("/:id", h.remove)
}

// TranslationRequestPayload defines the requester-editable payload.
type TranslationRequestPayload struct {
	SourceLanguage string `json:"source_language" binding:"required"`
	TargetLanguage string `json:"target_language" binding:"required"`
	DocumentTitle  string `json:"document_title" binding:"required"`
	PageCount      int    `json:"page_count" binding:"required"`
	Notes          string `json:"notes"`
}

func (r TranslationRequestPayload) toInput() usecase.TranslationInput {
	return usecase.TranslationInput{
		SourceLanguage: r.SourceLanguage,
		TargetLanguage: r.TargetLanguage,
		DocumentTitle:  r.DocumentTitle,
		PageCount:      r.PageCount,
		Notes:          r.Notes,
	}
}

// TranslationResponse is the wire form of a translation request.
type TranslationResponse struct {
	ID             string     `json:"id"`
	OwnerID        string     `json:"owner_id"`
	SourceLanguage string     `json:"source_language"`
	TargetLanguage string     `json:"target_language"`
	DocumentTitle  string     `json:"document_title"`
	PageCount      int        `json:"page_count"`
	Notes          string     `json:"notes,omitempty"`
	Status         string     `json:"status"`
	TranslatorID   *string    `json:"translator_id,omitempty"`
	ProcessedAt    *time.Time `json:"processed_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	RejectedAt     *time.Time `json:"rejected_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func toTranslationResponse(req domain.TranslationRequest) TranslationResponse {
	return TranslationResponse{
		ID:             req.ID,
		OwnerID:        req.OwnerID,
		SourceLanguage: req.SourceLanguage,
		TargetLanguage: req.TargetLanguage,
		DocumentTitle:  req.DocumentTitle,
		PageCount:      req.PageCount,
		Notes:          req.Notes,
		Status:         string(req.Status),
		TranslatorID:   req.TranslatorID,
		ProcessedAt:    req.ProcessedAt,
		CompletedAt:    req.CompletedAt,
		RejectedAt:     req.RejectedAt,
		CreatedAt:      req.CreatedAt,
		UpdatedAt:      req.UpdatedAt,
	}
}

// TranslationListResponse wraps a page of translation requests.
type TranslationListResponse struct {
	Requests []TranslationResponse `json:"requests"`
	Meta     ListMeta              `json:"meta"`
}

func (h *TranslationHandler) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req TranslationRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	created, err := h.translations.Create(c.Request.Context(), actor, req.toInput())
	if err != nil {
		respondWorkflowError(c, err, "failed to create request")
		return
	}

	c.JSON(http.StatusCreated, toTranslationResponse(*created))
}

func (h *TranslationHandler) list(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	filter := port.TranslationFilter{
		OwnerID: c.Query("owner_id"),
		Status:  domain.TranslationStatus(c.Query("status")),
		Search:  c.Query("search"),
		Limit:   limit,
		Offset:  offset,
	}

	reqs, total, err := h.translations.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondWorkflowError(c, err, "failed to list requests")
		return
	}

	items := make([]TranslationResponse, 0, len(reqs))
	for _, req := range reqs {
		items = append(items, toTranslationResponse(req))
	}

	c.JSON(http.StatusOK, TranslationListResponse{
		Requests: items,
		Meta:     ListMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	})
}

func (h *TranslationHandler) get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	req, err := h.translations.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		respondWorkflowError(c, err, "failed to load request")
		return
	}

	c.JSON(http.StatusOK, toTranslationResponse(*req))
}

func (h *TranslationHandler) update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req TranslationRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	updated, err := h.translations.Update(c.Request.Context(), actor, c.Param("id"), req.toInput())
	if err != nil {
		respondWorkflowError(c, err, "failed to update request")
		return
	}

	c.JSON(http.StatusOK, toTranslationResponse(*updated))
}

func (h *TranslationHandler) changeStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	updated, err := h.translations.ChangeStatus(c.Request.Context(), actor, c.Param("id"), domain.TranslationStatus(req.Status), req.Comment)
	if err != nil {
		respondWorkflowError(c, err, "failed to change status")
		return
	}

	c.JSON(http.StatusOK, toTranslationResponse(*updated))
}

func (h *TranslationHandler) remove(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.translations.Remove(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondWorkflowError(c, err, "failed to delete request")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "request deleted"})
}
