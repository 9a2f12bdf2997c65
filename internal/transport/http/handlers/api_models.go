package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with trace ID for
// debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: middleware.GetTraceID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ListMeta carries pagination metadata on list responses.
type ListMeta struct {
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// UserSummary describes a user as returned by the API.
type UserSummary struct {
	ID         string            `json:"id"`
	Email      string            `json:"email"`
	FullName   string            `json:"full_name"`
	Department string            `json:"department,omitempty"`
	Status     domain.UserStatus `json:"status"`
	Roles      []string          `json:"roles,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func toUserSummary(user domain.User) UserSummary {
	roles := make([]string, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, string(role))
	}

	return UserSummary{
		ID:         user.ID,
		Email:      user.Email,
		FullName:   user.FullName,
		Department: user.Department,
		Status:     user.Status,
		Roles:      roles,
		CreatedAt:  user.CreatedAt,
	}
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        UserSummary `json:"user"`
}

// StatusChangeRequest is the shared payload for workflow transitions.
type StatusChangeRequest struct {
	Status  string `json:"status" binding:"required"`
	Comment string `json:"comment"`
}

// HistoryEntry is the shared wire form of one status transition.
type HistoryEntry struct {
	ID         string    `json:"id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Comment    string    `json:"comment,omitempty"`
	ChangedBy  string    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}

// requireActor pulls the authenticated actor or writes a 401.
func requireActor(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.AbortWithStatusJSON(401, NewErrorResponse(c, "authentication required"))
		return domain.Actor{}, false
	}
	return actor, true
}
