package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campusio/intl-office/internal/core/domain"
	"github.com/campusio/intl-office/internal/infra/security"
)

func newAuthRouter(t *testing.T, tokens *security.TokenManager) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/protected", RequireAuth(tokens), func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no actor"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": actor.ID})
	})
	return r
}

func issueToken(t *testing.T, tokens *security.TokenManager, roles ...string) string {
	t.Helper()
	token, _, err := tokens.Issue("user-1", "staff@uni.example", "International Cooperation", roles)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func TestRequireAuth(t *testing.T) {
	tokens, err := security.NewTokenManager("test-secret", "intl-office", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	r := newAuthRouter(t, tokens)

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"valid token", "Bearer " + issueToken(t, tokens, "specialist"), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d (body: %s)", w.Code, tc.status, w.Body.String())
			}
		})
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	past := func() time.Time { return time.Now().Add(-2 * time.Hour) }
	issuer, err := security.NewTokenManager("test-secret", "intl-office", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	issuer.WithClock(past)
	expired := issueToken(t, issuer, "specialist")

	verifier, err := security.NewTokenManager("test-secret", "intl-office", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	r := newAuthRouter(t, verifier)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthRejectsForeignSignature(t *testing.T) {
	other, err := security.NewTokenManager("other-secret", "intl-office", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	foreign := issueToken(t, other, "admin")

	tokens, err := security.NewTokenManager("test-secret", "intl-office", time.Hour)
	if err != nil {
		t.Fatalf("token manager: %v", err)
	}
	r := newAuthRouter(t, tokens)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequirePermission(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler := func(c *gin.Context) { c.Status(http.StatusOK) }
	withActor := func(actor *domain.Actor) gin.HandlerFunc {
		return func(c *gin.Context) {
			if actor != nil {
				c.Set(ActorKey, *actor)
			}
			c.Next()
		}
	}

	manager := &domain.Actor{ID: "m1", Roles: []domain.Role{domain.RoleManager}}
	student := &domain.Actor{ID: "s1", Roles: []domain.Role{domain.RoleStudent}}

	cases := []struct {
		name   string
		actor  *domain.Actor
		guard  gin.HandlerFunc
		status int
	}{
		{"no actor", nil, RequirePermission(domain.PermReportGenerate), http.StatusUnauthorized},
		{"manager generates reports", manager, RequirePermission(domain.PermReportGenerate), http.StatusOK},
		{"student denied reports", student, RequirePermission(domain.PermReportGenerate), http.StatusForbidden},
		{"all permissions required", manager, RequirePermission(domain.PermVisaReview, domain.PermUserManage), http.StatusForbidden},
		{"any permission suffices", student, RequireAnyPermission(domain.PermUserManage, domain.PermVisaCreate), http.StatusOK},
		{"none of the permissions", student, RequireAnyPermission(domain.PermUserManage, domain.PermMOUSign), http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", withActor(tc.actor), tc.guard, handler)

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.status {
				t.Fatalf("status = %d, want %d", w.Code, tc.status)
			}
		})
	}
}
