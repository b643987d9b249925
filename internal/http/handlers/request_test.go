package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
)

func testContext(req *http.Request) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req
	return c
}

func TestReadFormJSONKeepsListText(t *testing.T) {
	body := `{"courseId":"abc","tag":["a","b"],"price":12.5,"status":null}`
	req := httptest.NewRequest(http.MethodPost, "/x?sectionId=q", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	f, err := readForm(testContext(req))
	if err != nil {
		t.Fatalf("readForm: %v", err)
	}
	if got := f.get("courseId"); got != "abc" {
		t.Fatalf("courseId: want=abc got=%q", got)
	}
	if got := f.get("tag"); got != `["a","b"]` {
		t.Fatalf("tag: want=[\"a\",\"b\"] got=%q", got)
	}
	if p, err := f.price("price"); err != nil || p == nil || *p != 12.5 {
		t.Fatalf("price: want=12.5 got=%v err=%v", p, err)
	}
	if f.optional("status") != nil {
		t.Fatalf("status: null should be absent")
	}
	if got := f.get("sectionId"); got != "q" {
		t.Fatalf("query value: want=q got=%q", got)
	}
}

func TestReadFormRejectsBrokenJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"courseId":`))
	req.Header.Set("Content-Type", "application/json")
	if _, err := readForm(testContext(req)); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("broken json: want=ErrValidation got=%v", err)
	}
}

func TestReadFormBodyTooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("sectionName="+strings.Repeat("a", 64)))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c := testContext(req)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 16)

	_, err := readForm(c)
	if got := apierr.StatusOf(err); got != http.StatusRequestEntityTooLarge {
		t.Fatalf("status: want=413 got=%d (%v)", got, err)
	}
}

func TestUUIDField(t *testing.T) {
	f := &requestForm{values: map[string]string{"courseId": "not-a-uuid"}}
	if _, err := f.uuid("courseId"); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("bad uuid: want=ErrValidation got=%v", err)
	}
	if _, err := f.uuid("sectionId"); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("missing uuid: want=ErrValidation got=%v", err)
	}
}

func TestBaseURL(t *testing.T) {
	cases := []struct {
		name       string
		configured string
		headers    map[string]string
		want       string
	}{
		{"configured", "https://cdn.example/", nil, "https://cdn.example"},
		{"request_host", "", nil, "http://example.com"},
		{"forwarded", "", map[string]string{"X-Forwarded-Proto": "https, http", "X-Forwarded-Host": "api.studynotion.dev"}, "https://api.studynotion.dev"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		for k, v := range tc.headers {
			req.Header.Set(k, v)
		}
		if got := baseURL(testContext(req), tc.configured); got != tc.want {
			t.Fatalf("%s: want=%s got=%s", tc.name, tc.want, got)
		}
	}
}
