package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/usecase"
)

// NotificationHandler exposes the actor's in-app notifications.
type NotificationHandler struct {
	notifications *usecase.NotificationService
}

// NewNotificationHandler constructs NotificationHandler.
func NewNotificationHandler(notifications *usecase.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterRoutes binds notification routes under an authenticated group.
func (h *NotificationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.list)
	r.PUT("/:id/read", h.markRead)
}

// NotificationResponse is the wire form of a notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Entity    string    `json:"entity,omitempty"`
	EntityID  string    `json:"entity_id,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func toNotificationResponse(n domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Entity:    n.Entity,
		EntityID:  n.EntityID,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

func (h *NotificationHandler) list(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	unreadOnly := c.Query("unread") == "true"

	limit, offset := pagination(c)
	items, err := h.notifications.List(c.Request.Context(), actor, unreadOnly, limit, offset)
	if err != nil {
		respondWorkflowError(c, err, "failed to list notifications")
		return
	}

	resp := make([]NotificationResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toNotificationResponse(item))
	}

	c.JSON(http.StatusOK, gin.H{"notifications": resp})
}

func (h *NotificationHandler) markRead(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), actor, c.Param("id")); err != nil {
		respondWorkflowError(c, err, "failed to mark notification read")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "notification read"})
}
