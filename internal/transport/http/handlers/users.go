package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/core/port"
	"github.com/campusio/intl-office/internal/usecase"
)

// UserHandler exposes account-management endpoints.
type UserHandler struct {
	users *usecase.UserService
}

// NewUserHandler constructs UserHandler.
func NewUserHandler(users *usecase.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterRoutes binds account routes under an authenticated group.
func (h *UserHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("", h.create)
	r.GET("", h.list)
	r.GET("/:id", h.get)
	r.PATCH("/:id", h.update)
	r.PUT("/:id/status", h.setStatus)
	r.POST("/:id/roles", h.assignRoles)
	r.DELETE("/:id/roles", h.revokeRoles)
	r.POST("/password", h.changePassword)
}

var userErrorCases = append([]ErrorCase{
	{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
	{Err: usecase.ErrUnknownRole, Status: http.StatusBadRequest, Message: "unknown role"},
	{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "current password is incorrect"},
}, workflowErrorCases...)

// CreateUserRequest defines the payload for account creation.
type CreateUserRequest struct {
	Email      string   `json:"email" binding:"required"`
	Password   string   `json:"password" binding:"required"`
	FullName   string   `json:"full_name" binding:"required"`
	Department string   `json:"department"`
	Roles      []string `json:"roles"`
}

// UpdateUserRequest defines the mutable profile fields.
type UpdateUserRequest struct {
	FullName   string `json:"full_name"`
	Department string `json:"department"`
}

// SetStatusRequest defines the account-status payload.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RolesRequest defines the payload for role assignment and revocation.
type RolesRequest struct {
	Roles  []string `json:"roles" binding:"required"`
	Reason string   `json:"reason"`
}

// ChangePasswordRequest defines the payload for self-service password rotation.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// UserListResponse wraps a page of users.
type UserListResponse struct {
	Users []UserSummary `json:"users"`
	Meta  ListMeta      `json:"meta"`
}

func (h *UserHandler) create(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	user, err := h.users.Create(c.Request.Context(), actor, usecase.CreateUserInput{
		Email:      req.Email,
		Password:   req.Password,
		FullName:   req.FullName,
		Department: req.Department,
		Roles:      domain.RolesFromStrings(req.Roles),
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to create user")
		return
	}

	c.JSON(http.StatusCreated, toUserSummary(*user))
}

func (h *UserHandler) list(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	limit, offset := pagination(c)
	filter := port.UserFilter{
		Department: c.Query("department"),
		Status:     domain.UserStatus(c.Query("status")),
		Search:     c.Query("search"),
		Limit:      limit,
		Offset:     offset,
	}

	users, total, err := h.users.List(c.Request.Context(), actor, filter)
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to list users")
		return
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, toUserSummary(user))
	}

	c.JSON(http.StatusOK, UserListResponse{
		Users: summaries,
		Meta:  ListMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset},
	})
}

func (h *UserHandler) get(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to load user")
		return
	}

	c.JSON(http.StatusOK, toUserSummary(*user))
}

func (h *UserHandler) update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request payload"))
		return
	}

	user, err := h.users.Update(c.Request.Context(), actor, c.Param("id"), usecase.UpdateUserInput{
		FullName:   req.FullName,
		Department: req.Department,
	})
	if err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to update user")
		return
	}

	c.JSON(http.StatusOK, toUserSummary(*user))
}

func (h *UserHandler) setStatus(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req SetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "status is required"))
		return
	}

	if err := h.users.SetStatus(c.Request.Context(), actor, c.Param("id"), domain.UserStatus(req.Status)); err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to update status")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "status updated"})
}

func (h *UserHandler) assignRoles(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req RolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "roles are required"))
		return
	}

	if err := h.users.AssignRoles(c.Request.Context(), actor, c.Param("id"), domain.RolesFromStrings(req.Roles)); err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to assign roles")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "roles assigned"})
}

func (h *UserHandler) revokeRoles(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req RolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "roles are required"))
		return
	}

	if err := h.users.RevokeRoles(c.Request.Context(), actor, c.Param("id"), domain.RolesFromStrings(req.Roles), req.Reason); err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to revoke roles")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "roles revoked"})
}

func (h *UserHandler) changePassword(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "current and new passwords are required"))
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, userErrorCases, http.StatusInternalServerError, "failed to change password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}

func queryInt(c *gin.Context, key string) int {
	val := c.Query(key)
	if val == "" {
		return 0
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

const defaultPageSize = 20

// pagination resolves list paging parameters. `page` is 1-based and takes
// precedence over a raw `offset`.
func pagination(c *gin.Context) (limit, offset int) {
	limit = queryInt(c, "limit")
	offset = queryInt(c, "offset")
	if page := queryInt(c, "page"); page > 0 {
		if limit == 0 {
			limit = defaultPageSize
		}
		offset = (page - 1) * limit
	}
	return limit, offset
}
