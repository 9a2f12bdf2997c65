package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/repository"
	"github.com/campusio/intl-office/internal/usecase"
)

// ErrorCase maps a sentinel error to an HTTP status code and response message.
type ErrorCase struct {
	Err     error
	Status  int
	Message string
}

// workflowErrorCases covers the sentinels shared by every workflow handler.
var workflowErrorCases = []ErrorCase{
	{Err: usecase.ErrPermissionDenied, Status: http.StatusForbidden, Message: "insufficient permissions"},
	{Err: usecase.ErrNotOwner, Status: http.StatusForbidden, Message: "not the record owner"},
	{Err: repository.ErrNotFound, Status: http.StatusNotFound, Message: "record not found"},
	{Err: usecase.ErrInvalidTransition, Status: http.StatusBadRequest, Message: "status transition not allowed"},
	{Err: usecase.ErrNotEditable, Status: http.StatusBadRequest, Message: "record is not editable in its current status"},
	{Err: usecase.ErrNotDeletable, Status: http.StatusBadRequest, Message: "record is not deletable in its current status"},
	{Err: usecase.ErrMissingRequiredDocuments, Status: http.StatusBadRequest, Message: "required documents are missing"},
	{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "validation failed"},
}

// RespondWithMappedError resolves the provided error against known cases or
// falls back to a generic response.
func RespondWithMappedError(c *gin.Context, err error, cases []ErrorCase, fallbackStatus int, fallbackMessage string) {
	if err == nil {
		c.Status(http.StatusOK)
		return
	}

	for _, cs := range cases {
		if cs.Err == nil {
			continue
		}
		if errors.Is(err, cs.Err) {
			message := cs.Message
			if errors.Is(err, usecase.ErrValidation) {
				// Field-level failures carry their own explanation.
				message = err.Error()
			}
			c.JSON(cs.Status, NewErrorResponse(c, message))
			return
		}
	}

	c.JSON(fallbackStatus, NewErrorResponse(c, fallbackMessage))
}

// respondWorkflowError applies the shared workflow case table.
func respondWorkflowError(c *gin.Context, err error, fallbackMessage string) {
	RespondWithMappedError(c, err, workflowErrorCases, http.StatusInternalServerError, fallbackMessage)
}
