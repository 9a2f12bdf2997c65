package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/repository"
	"github.com/campusio/intl-office/internal/usecase"
)

func newErrorContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)
	return c, rec
}

func TestWorkflowErrorStatusCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid transition", usecase.ErrInvalidTransition, http.StatusBadRequest},
		{"not editable", usecase.ErrNotEditable, http.StatusBadRequest},
		{"not deletable", usecase.ErrNotDeletable, http.StatusBadRequest},
		{"missing required documents", usecase.ErrMissingRequiredDocuments, http.StatusBadRequest},
		{"validation", usecase.ErrValidation, http.StatusBadRequest},
		{"permission denied", usecase.ErrPermissionDenied, http.StatusForbidden},
		{"not owner", usecase.ErrNotOwner, http.StatusForbidden},
		{"not found", repository.ErrNotFound, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newErrorContext(t)
			respondWorkflowError(c, tc.err, "request failed")
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestWorkflowErrorWrappedSentinels(t *testing.T) {
	c, rec := newErrorContext(t)

	respondWorkflowError(c, fmt.Errorf("submit application: %w", usecase.ErrMissingRequiredDocuments), "request failed")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestWorkflowErrorValidationMessagePassthrough(t *testing.T) {
	c, rec := newErrorContext(t)

	respondWorkflowError(c, fmt.Errorf("%w: partner name is required", usecase.ErrValidation), "request failed")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "partner name is required") {
		t.Fatalf("body missing field message: %s", rec.Body.String())
	}
}

func TestWorkflowErrorFallback(t *testing.T) {
	c, rec := newErrorContext(t)

	respondWorkflowError(c, errors.New("connection reset"), "request failed")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if !strings.Contains(rec.Body.String(), "request failed") {
		t.Fatalf("body missing fallback message: %s", rec.Body.String())
	}
}
