package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
)

func TestAttachTraceContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name      string
		requestID string
		keep      bool
	}{
		{"kept", "req-123.abc_DEF", true},
		{"blank", "", false},
		{"injected", "abc\nlevel=error", false},
		{"too_long", strings.Repeat("a", maxClientIDLen+1), false},
	}
	for _, tc := range cases {
		r := gin.New()
		r.Use(AttachTraceContext())
		var seen *ctxutil.TraceData
		r.GET("/x", func(c *gin.Context) {
			seen = ctxutil.GetTraceData(c.Request.Context())
			c.Status(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if tc.requestID != "" {
			req.Header.Set(headerRequestID, tc.requestID)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if seen == nil || seen.RequestID == "" || seen.TraceID == "" {
			t.Fatalf("%s: trace data missing: %+v", tc.name, seen)
		}
		if got := seen.RequestID == tc.requestID; got != tc.keep {
			t.Fatalf("%s: kept client id: want=%v got=%v (%q)", tc.name, tc.keep, got, seen.RequestID)
		}
		if rec.Header().Get(headerRequestID) != seen.RequestID {
			t.Fatalf("%s: echoed id: want=%s got=%s", tc.name, seen.RequestID, rec.Header().Get(headerRequestID))
		}
	}
}

func TestMetricsRouteLabels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()

	dir := t.TempDir()
	r := gin.New()
	r.Use(Metrics(m, "/uploads"))
	r.GET("/api/v1/course/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.Static("/uploads", dir)

	for _, path := range []string{"/api/v1/course/1", "/api/v1/course/2", "/uploads/videos/a.mp4", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	var b strings.Builder
	if err := m.WritePrometheus(&b); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		`sn_api_requests_total{method="GET",route="/api/v1/course/:id",status="200"} 2.000000`,
		`route="/uploads",status="404"`,
		`route="unmatched",status="404"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %s:\n%s", want, out)
		}
	}
}
