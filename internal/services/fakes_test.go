package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	"github.com/yungbote/studynotion-backend/internal/data/repos"
	"github.com/yungbote/studynotion-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/pkg/pointers"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

type memMedia struct {
	mu        sync.Mutex
	files     map[string][]byte
	seq       int
	saveErr   error
	deleteErr map[string]error
	duration  string
}

func newMemMedia() *memMedia {
	return &memMedia{files: map[string][]byte{}, deleteErr: map[string]error{}}
}

func (m *memMedia) Save(ctx context.Context, blob media.Blob, kind media.Kind) (media.Ref, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return media.Ref{}, apierr.StorageWrite(m.saveErr, "save %s", blob.Filename)
	}
	data, err := io.ReadAll(blob.Reader)
	if err != nil {
		return media.Ref{}, apierr.StorageWrite(err, "read %s", blob.Filename)
	}
	m.seq++
	key := media.KeyFor(kind, fmt.Sprintf("%d_%s", m.seq, blob.Filename))
	m.files[key] = data
	ref := media.Ref{
		Key:       key,
		URL:       "/uploads/" + key,
		MimeType:  media.ResolveContentType(blob.ContentType, key),
		SizeBytes: int64(len(data)),
	}
	if kind == media.KindVideo {
		ref.Duration = m.duration
	}
	return ref, nil
}

func (m *memMedia) Delete(ctx context.Context, ref media.Ref) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.deleteErr[ref.Key]; err != nil {
		return apierr.Storage(err, "delete %s", ref.Key)
	}
	delete(m.files, ref.Key)
	return nil
}

func (m *memMedia) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[key]
	return ok, nil
}

func (m *memMedia) List(ctx context.Context, kind media.Kind) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for k := range m.files {
		if strings.HasPrefix(k, kind.Dir()+"/") {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (m *memMedia) has(key string) bool {
	ok, _ := m.Exists(context.Background(), key)
	return ok
}

func (m *memMedia) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

// memCache stores JSON like the redis cache does.
type memCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidated []uuid.UUID
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (c *memCache) Get(ctx context.Context, courseID uuid.UUID, view string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[courseID.String()+"/"+view]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) Set(ctx context.Context, courseID uuid.UUID, view string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[courseID.String()+"/"+view] = raw
	return nil
}

func (c *memCache) Invalidate(ctx context.Context, courseIDs ...uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range courseIDs {
		for k := range c.entries {
			if strings.HasPrefix(k, id.String()+"/") {
				delete(c.entries, k)
			}
		}
		c.invalidated = append(c.invalidated, id)
	}
	return nil
}

func (c *memCache) Close() error { return nil }

func (c *memCache) cached(courseID uuid.UUID, view string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[courseID.String()+"/"+view]
	return ok
}

// failingCourseRepo rejects inserts.
type failingCourseRepo struct {
	repos.CourseRepo
}

func (failingCourseRepo) Create(dbc dbctx.Context, courses []*types.Course) ([]*types.Course, error) {
	return nil, errors.New("insert rejected")
}

type harness struct {
	ctx        context.Context
	db         *gorm.DB
	media      *memMedia
	cache      *memCache
	deps       HierarchyDeps
	courses    CourseService
	sections   SectionService
	subs       SubSectionService
	instructor *types.User
	category   *types.Category
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := &harness{ctx: context.Background(), db: db, media: newMemMedia(), cache: newMemCache()}

	users := repos.NewUserRepo(db, log)
	courses := repos.NewCourseRepo(db, log)
	sections := repos.NewSectionRepo(db, log)
	subs := repos.NewSubSectionRepo(db, log)
	categories := repos.NewCategoryRepo(db, log)
	links := repos.NewRefLinkRepo(db, log)
	h.deps = HierarchyDeps{
		DB:          db,
		Log:         log,
		Courses:     courses,
		Sections:    sections,
		SubSections: subs,
		Categories:  categories,
		Users:       users,
		Progress:    repos.NewCourseProgressRepo(db, log),
		Links:       links,
		Resolver: aggregates.NewCourseTreeResolver(aggregates.CourseTreeDeps{
			Log:         log,
			Courses:     courses,
			Users:       users,
			Profiles:    repos.NewProfileRepo(db, log),
			Categories:  categories,
			Sections:    sections,
			SubSections: subs,
			Reviews:     repos.NewRatingAndReviewRepo(db, log),
			Links:       links,
		}),
		Media: h.media,
		Cache: h.cache,
		Ledger: NewCascadeLedger(log, aggregates.NewGormTxRunner(db),
			repos.NewCascadeRunRepo(db, log), repos.NewCascadeStepRepo(db, log)),
		DraftGate: true,
	}
	h.build()
	h.instructor = testutil.SeedUser(t, h.ctx, db, types.AccountInstructor)
	h.category = testutil.SeedCategory(t, h.ctx, db)
	return h
}

// build (re)creates the services from h.deps.
func (h *harness) build() {
	h.courses = NewCourseService(h.deps)
	h.sections = NewSectionService(h.deps)
	h.subs = NewSubSectionService(h.deps)
}

func (h *harness) owner() ctxutil.Actor {
	return ctxutil.Actor{UserID: h.instructor.ID, Role: ctxutil.RoleInstructor}
}

func blob(name, body string) *media.Blob {
	return &media.Blob{Filename: name, Size: int64(len(body)), Reader: strings.NewReader(body)}
}

func (h *harness) courseInput() CreateCourseInput {
	return CreateCourseInput{
		CourseName:        "Go in practice",
		CourseDescription: "services and storage",
		WhatYouWillLearn:  "idioms",
		Price:             pointers.Float64(49),
		CategoryID:        h.category.ID,
		Tag:               `["a","b"]`,
		Instructions:      `["x"]`,
		Thumbnail:         blob("cover.png", "png-bytes"),
	}
}

func (h *harness) createCourse(t *testing.T) *types.Course {
	t.Helper()
	course, err := h.courses.CreateCourse(h.ctx, h.owner(), h.courseInput())
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	return course
}

func (h *harness) addSection(t *testing.T, courseID uuid.UUID, name string) *types.Section {
	t.Helper()
	tree, err := h.sections.CreateSection(h.ctx, h.owner(), courseID, name)
	if err != nil {
		t.Fatalf("CreateSection: %v", err)
	}
	last := tree.CourseContent[len(tree.CourseContent)-1]
	return last.Section
}

func (h *harness) attach(t *testing.T, sectionID uuid.UUID, title, duration string) *types.SubSection {
	t.Helper()
	node, err := h.subs.AttachSubSection(h.ctx, h.owner(), SubSectionInput{
		SectionID:    sectionID,
		Title:        title,
		Description:  title + " description",
		TimeDuration: duration,
		Video:        blob(title+".mp4", "video-"+title),
	})
	if err != nil {
		t.Fatalf("AttachSubSection(%s): %v", title, err)
	}
	return node.SubSection[len(node.SubSection)-1]
}

func (h *harness) children(t *testing.T, field types.LinkField, parentID uuid.UUID) []uuid.UUID {
	t.Helper()
	ids, err := h.deps.Links.Children(dbctx.Background(), field, parentID)
	if err != nil {
		t.Fatalf("Children(%s): %v", field, err)
	}
	return ids
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
