package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
)

func serve(t *testing.T, h gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	return rec
}

func TestRespondOKEnvelope(t *testing.T) {
	rec := serve(t, func(c *gin.Context) { RespondOK(c, gin.H{"n": 1}) })
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d", rec.Code)
	}
	var body struct {
		Success bool           `json:"success"`
		Data    map[string]int `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data["n"] != 1 {
		t.Fatalf("body: got=%s", rec.Body.String())
	}
}

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		code    string
		message string
	}{
		{"validation", fmt.Errorf("create: %w", apierr.Validation("price required")), http.StatusBadRequest, apierr.CodeValidation, "validation error: price required"},
		{"forbidden", apierr.Forbidden("not owner"), http.StatusForbidden, apierr.CodeForbidden, "forbidden: not owner"},
		{"not_found", apierr.NotFound("course x"), http.StatusNotFound, apierr.CodeNotFound, "not found: course x"},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, apierr.CodeInternal, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, func(c *gin.Context) { RespondServiceError(c, tc.err) })
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d", tc.status, rec.Code)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code || env.Error.Message != tc.message {
				t.Fatalf("envelope: want=%s/%q got=%s/%q", tc.code, tc.message, env.Error.Code, env.Error.Message)
			}
		})
	}
}
