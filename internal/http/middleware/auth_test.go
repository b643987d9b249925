package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/services"
)

const testSecret = "middleware-test-secret"

func newAuthRouter(t *testing.T, chain ...gin.HandlerFunc) (*gin.Engine, services.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth := services.NewAuthService(logger.Nop(), testSecret)
	r := gin.New()
	handlers := append(chain, func(c *gin.Context) {
		actor, _ := ctxutil.GetActor(c.Request.Context())
		c.String(http.StatusOK, string(actor.Role))
	})
	r.GET("/x", handlers...)
	return r, auth
}

func token(t *testing.T, auth services.AuthService, role ctxutil.Role) string {
	t.Helper()
	tok, err := auth.IssueToken(ctxutil.Actor{UserID: uuid.New(), Role: role}, "u@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

func do(r *gin.Engine, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	auth := services.NewAuthService(logger.Nop(), testSecret)
	am := NewAuthMiddleware(logger.Nop(), auth)
	r, _ := newAuthRouter(t, am.RequireAuth())

	if rec := do(r, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: want=401 got=%d", rec.Code)
	}
	if rec := do(r, "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: want=401 got=%d", rec.Code)
	}
	rec := do(r, token(t, auth, ctxutil.RoleStudent))
	if rec.Code != http.StatusOK || rec.Body.String() != "Student" {
		t.Fatalf("valid token: want=200/Student got=%d/%s", rec.Code, rec.Body.String())
	}
}

func TestOptionalAuth(t *testing.T) {
	auth := services.NewAuthService(logger.Nop(), testSecret)
	am := NewAuthMiddleware(logger.Nop(), auth)
	r, _ := newAuthRouter(t, am.OptionalAuth())

	if rec := do(r, ""); rec.Code != http.StatusOK || rec.Body.String() != "" {
		t.Fatalf("anonymous: want=200/empty got=%d/%s", rec.Code, rec.Body.String())
	}
	if rec := do(r, token(t, auth, ctxutil.RoleInstructor)); rec.Body.String() != "Instructor" {
		t.Fatalf("with token: want=Instructor got=%s", rec.Body.String())
	}
	if rec := do(r, "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: want=401 got=%d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	auth := services.NewAuthService(logger.Nop(), testSecret)
	am := NewAuthMiddleware(logger.Nop(), auth)
	r, _ := newAuthRouter(t, am.RequireAuth(), am.RequireRole(ctxutil.RoleInstructor))

	cases := []struct {
		role ctxutil.Role
		want int
	}{
		{ctxutil.RoleInstructor, http.StatusOK},
		{ctxutil.RoleAdmin, http.StatusOK},
		{ctxutil.RoleStudent, http.StatusForbidden},
	}
	for _, tc := range cases {
		if rec := do(r, token(t, auth, tc.role)); rec.Code != tc.want {
			t.Fatalf("role %s: want=%d got=%d", tc.role, tc.want, rec.Code)
		}
	}
}
