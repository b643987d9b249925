package app

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studynotion-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type testApp struct {
	t          *testing.T
	app        *App
	mediaRoot  string
	instructor string
	student    string
	category   uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		LogMode:           "test",
		DBDriver:          "sqlite",
		SQLitePath:        filepath.Join(dir, "app.db"),
		MediaMode:         MediaModeLocal,
		MediaRoot:         filepath.Join(dir, "uploads"),
		MediaPublicPrefix: "/uploads",
		FFProbePath:       "ffprobe-missing-for-test",
		MaxUploadMB:       8,
		JWTSecretKey:      "app-test-secret",
		DraftGateEnabled:  true,
	}
	a, err := NewWithConfig(context.Background(), logger.Nop(), cfg)
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	t.Cleanup(a.Close)

	ctx := context.Background()
	inst := testutil.SeedUser(t, ctx, a.DB, types.AccountInstructor)
	stud := testutil.SeedUser(t, ctx, a.DB, types.AccountStudent)
	cat := testutil.SeedCategory(t, ctx, a.DB)

	ta := &testApp{t: t, app: a, mediaRoot: cfg.MediaRoot, category: cat.ID}
	ta.instructor = ta.token(inst.ID, ctxutil.RoleInstructor)
	ta.student = ta.token(stud.ID, ctxutil.RoleStudent)
	return ta
}

func (ta *testApp) token(id uuid.UUID, role ctxutil.Role) string {
	ta.t.Helper()
	tok, err := ta.app.Services.Auth.IssueToken(ctxutil.Actor{UserID: id, Role: role}, "", time.Hour)
	if err != nil {
		ta.t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

type upload struct {
	field, name, body string
}

func (ta *testApp) multipart(method, path, token string, fields map[string]string, files ...upload) *httptest.ResponseRecorder {
	ta.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		if err != nil {
			ta.t.Fatalf("CreateFormFile: %v", err)
		}
		_, _ = part.Write([]byte(f.body))
	}
	_ = w.Close()
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ta.serve(req, token)
}

func (ta *testApp) json(method, path, token string, body any) *httptest.ResponseRecorder {
	ta.t.Helper()
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		raw, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	return ta.serve(req, token)
}

func (ta *testApp) serve(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ta.app.Router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		Success bool `json:"success"`
		Data    T    `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
	if !env.Success {
		t.Fatalf("expected success envelope: %s", rec.Body.String())
	}
	return env.Data
}

type mediaJSON struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

type courseJSON struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Thumbnail mediaJSON `json:"thumbnail"`
}

type summaryJSON struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Thumbnail string `json:"thumbnail"`
}

type sectionJSON struct {
	ID         string `json:"id"`
	SubSection []struct {
		ID    string    `json:"id"`
		Video mediaJSON `json:"video"`
	} `json:"sub_section"`
}

type detailsJSON struct {
	Tree struct {
		courseJSON
		CourseContent []sectionJSON `json:"course_content"`
	} `json:"course_details"`
	TotalDuration string `json:"total_duration"`
}

func (ta *testApp) courseFields(status string) map[string]string {
	return map[string]string{
		"courseName":        "Go in practice",
		"courseDescription": "services and storage",
		"whatYouWillLearn":  "idioms",
		"price":             "49",
		"category":          ta.category.String(),
		"tag":               `["go","backend"]`,
		"instructions":      `["bring a laptop"]`,
		"status":            status,
	}
}

func (ta *testApp) exists(key string) bool {
	_, err := os.Stat(filepath.Join(ta.mediaRoot, filepath.FromSlash(key)))
	return err == nil
}

func TestCourseLifecycleOverHTTP(t *testing.T) {
	ta := newTestApp(t)

	if rec := ta.json(http.MethodGet, "/healthcheck", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("healthcheck: want=200 got=%d", rec.Code)
	}

	rec := ta.multipart(http.MethodPost, "/api/v1/course/createCourse", ta.instructor,
		ta.courseFields("Published"), upload{"thumbnail", "cover.png", "png-bytes"})
	if rec.Code != http.StatusOK {
		t.Fatalf("createCourse: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	course := decode[courseJSON](t, rec)
	if !strings.HasPrefix(course.Thumbnail.URL, "http://example.com/uploads/thumbnails/") {
		t.Fatalf("thumbnail url: got=%s", course.Thumbnail.URL)
	}
	if !ta.exists(course.Thumbnail.Key) {
		t.Fatalf("thumbnail %s not on disk", course.Thumbnail.Key)
	}
	if rec := ta.json(http.MethodGet, "/uploads/"+course.Thumbnail.Key, "", nil); rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Fatalf("static thumbnail: want=200/png-bytes got=%d/%s", rec.Code, rec.Body.String())
	}

	rec = ta.json(http.MethodPost, "/api/v1/course/addSection", ta.instructor,
		map[string]string{"courseId": course.ID, "sectionName": "Intro"})
	if rec.Code != http.StatusOK {
		t.Fatalf("addSection: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	sections := decode[struct {
		CourseContent []sectionJSON `json:"course_content"`
	}](t, rec)
	if len(sections.CourseContent) != 1 {
		t.Fatalf("sections after add: want=1 got=%d", len(sections.CourseContent))
	}
	sectionID := sections.CourseContent[0].ID

	rec = ta.multipart(http.MethodPost, "/api/v1/course/addSubSection", ta.instructor,
		map[string]string{"sectionId": sectionID, "title": "Welcome", "description": "hello", "timeDuration": "90"},
		upload{"video", "welcome.mp4", "mp4-bytes"})
	if rec.Code != http.StatusOK {
		t.Fatalf("addSubSection: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	node := decode[sectionJSON](t, rec)
	if len(node.SubSection) != 1 || node.SubSection[0].Video.Key == "" {
		t.Fatalf("addSubSection node: got=%+v", node)
	}
	videoKey := node.SubSection[0].Video.Key

	// Anonymous visitors see the published course without video locations.
	rec = ta.json(http.MethodGet, "/api/v1/course/"+course.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("course details: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	details := decode[detailsJSON](t, rec)
	if details.TotalDuration != "00:01:30" {
		t.Fatalf("total duration: want=00:01:30 got=%s", details.TotalDuration)
	}
	if got := details.Tree.CourseContent[0].SubSection[0].Video.URL; got != "" {
		t.Fatalf("public view leaked video url %s", got)
	}

	// The owner sees them.
	rec = ta.json(http.MethodGet, "/api/v1/course/"+course.ID+"/full", ta.instructor, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("full details: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	full := decode[detailsJSON](t, rec)
	if got := full.Tree.CourseContent[0].SubSection[0].Video.URL; !strings.HasPrefix(got, "http://example.com/uploads/videos/") {
		t.Fatalf("full view video url: got=%s", got)
	}

	// A student who is not enrolled may not.
	if rec := ta.json(http.MethodGet, "/api/v1/course/"+course.ID+"/full", ta.student, nil); rec.Code != http.StatusForbidden {
		t.Fatalf("full details as stranger: want=403 got=%d", rec.Code)
	}

	rec = ta.json(http.MethodDelete, "/api/v1/course/deleteCourse", ta.instructor, map[string]string{"courseId": course.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("deleteCourse: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	report := decode[struct {
		Failed int `json:"failed"`
	}](t, rec)
	if report.Failed != 0 {
		t.Fatalf("cascade failures: want=0 got=%d", report.Failed)
	}
	if ta.exists(course.Thumbnail.Key) || ta.exists(videoKey) {
		t.Fatalf("media left on disk after delete")
	}
	if rec := ta.json(http.MethodGet, "/api/v1/course/"+course.ID, "", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("details after delete: want=404 got=%d", rec.Code)
	}
	if rec := ta.json(http.MethodDelete, "/api/v1/course/deleteCourse", ta.instructor, map[string]string{"courseId": course.ID}); rec.Code != http.StatusOK {
		t.Fatalf("second delete: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestCourseRoutesEnforceAuth(t *testing.T) {
	ta := newTestApp(t)

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"student", ta.student, http.StatusForbidden},
		{"garbage", "not-a-jwt", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		rec := ta.multipart(http.MethodPost, "/api/v1/course/createCourse", tc.token,
			ta.courseFields(""), upload{"thumbnail", "cover.png", "png"})
		if rec.Code != tc.want {
			t.Fatalf("%s: want=%d got=%d body=%s", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}

	entries, _ := os.ReadDir(filepath.Join(ta.mediaRoot, "thumbnails"))
	if len(entries) != 0 {
		t.Fatalf("rejected requests wrote %d thumbnails", len(entries))
	}
}

func TestDraftCourseHiddenFromVisitors(t *testing.T) {
	ta := newTestApp(t)

	rec := ta.multipart(http.MethodPost, "/api/v1/course/createCourse", ta.instructor,
		ta.courseFields(""), upload{"thumbnail", "cover.png", "png"})
	if rec.Code != http.StatusOK {
		t.Fatalf("createCourse: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	course := decode[courseJSON](t, rec)
	if course.Status != types.CourseStatusDraft {
		t.Fatalf("default status: want=%s got=%s", types.CourseStatusDraft, course.Status)
	}

	if rec := ta.json(http.MethodGet, "/api/v1/course/"+course.ID, "", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("draft as visitor: want=403 got=%d", rec.Code)
	}
	if rec := ta.json(http.MethodGet, "/api/v1/course/"+course.ID, ta.instructor, nil); rec.Code != http.StatusOK {
		t.Fatalf("draft as owner: want=200 got=%d", rec.Code)
	}
	rec = ta.json(http.MethodGet, "/api/v1/course/getAllCourses", "", nil)
	if list := decode[[]summaryJSON](t, rec); len(list) != 0 {
		t.Fatalf("published listing: want=0 got=%d", len(list))
	}
	rec = ta.json(http.MethodGet, "/api/v1/course/getInstructorCourses", ta.instructor, nil)
	list := decode[[]summaryJSON](t, rec)
	if len(list) != 1 || list[0].ID != course.ID {
		t.Fatalf("instructor listing: want=[%s] got=%+v", course.ID, list)
	}
	if !strings.HasPrefix(list[0].Thumbnail, "http://example.com/uploads/thumbnails/") {
		t.Fatalf("listing thumbnail: want externalized got=%q", list[0].Thumbnail)
	}
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	ta := newTestApp(t)

	fields := ta.courseFields("")
	fields["price"] = "free"
	rec := ta.multipart(http.MethodPost, "/api/v1/course/createCourse", ta.instructor, fields, upload{"thumbnail", "c.png", "png"})
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), `"code":"validation_error"`) {
		t.Fatalf("bad price: want=400 validation_error got=%d %s", rec.Code, rec.Body.String())
	}

	rec = ta.json(http.MethodGet, "/api/v1/course/not-a-uuid", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: want=400 got=%d", rec.Code)
	}

	rec = ta.json(http.MethodDelete, "/api/v1/course/deleteCourse", ta.instructor, map[string]string{"courseId": uuid.NewString()})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete unknown: want=404 got=%d", rec.Code)
	}
}
