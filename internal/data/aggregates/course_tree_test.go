package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos"
	"github.com/yungbote/studynotion-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
)

func newResolver(t *testing.T, db *gorm.DB) CourseTreeResolver {
	t.Helper()
	log := testutil.Logger(t)
	return NewCourseTreeResolver(CourseTreeDeps{
		Log:         log,
		Courses:     repos.NewCourseRepo(db, log),
		Users:       repos.NewUserRepo(db, log),
		Profiles:    repos.NewProfileRepo(db, log),
		Categories:  repos.NewCategoryRepo(db, log),
		Sections:    repos.NewSectionRepo(db, log),
		SubSections: repos.NewSubSectionRepo(db, log),
		Reviews:     repos.NewRatingAndReviewRepo(db, log),
		Links:       repos.NewRefLinkRepo(db, log),
	})
}

func fullPaths(omitVideo bool) []PathSpec {
	sub := PathSpec{Field: PathSubSection}
	if omitVideo {
		sub.Omit = []string{OmitVideoURL}
	}
	return []PathSpec{
		{Field: PathInstructor, Nested: []PathSpec{{Field: PathAdditionalDetails}}},
		{Field: PathCategory},
		{Field: PathRatingAndReviews},
		{Field: PathCourseContent, Nested: []PathSpec{sub}},
		{Field: PathStudentsEnrolled},
	}
}

type seededTree struct {
	course   *types.Course
	sections []*types.Section
	subs     map[uuid.UUID][]*types.SubSection
	student  *types.User
}

func seedTree(t *testing.T, tx *gorm.DB) seededTree {
	t.Helper()
	ctx := context.Background()
	inst := testutil.SeedUser(t, ctx, tx, types.AccountInstructor)
	testutil.SeedProfile(t, ctx, tx, inst)
	cat := testutil.SeedCategory(t, ctx, tx)
	course := testutil.SeedCourse(t, ctx, tx, inst.ID, cat.ID, time.Time{})
	student := testutil.SeedUser(t, ctx, tx, types.AccountStudent)

	out := seededTree{course: course, subs: map[uuid.UUID][]*types.SubSection{}, student: student}
	for _, name := range []string{"second", "first"} {
		s := testutil.SeedSection(t, ctx, tx, course.ID, name)
		testutil.SeedLink(t, ctx, tx, types.FieldCourseContent, course.ID, s.ID)
		out.sections = append(out.sections, s)
		for i := 0; i < 2; i++ {
			ss := testutil.SeedSubSection(t, ctx, tx, s.ID, "30")
			testutil.SeedLink(t, ctx, tx, types.FieldSectionSubSection, s.ID, ss.ID)
			out.subs[s.ID] = append(out.subs[s.ID], ss)
		}
	}
	testutil.SeedLink(t, ctx, tx, types.FieldStudentsEnrolled, course.ID, student.ID)
	return out
}

func TestCourseTreeResolverPopulatesInLinkOrder(t *testing.T) {
	db := testutil.DB(t)
	seed := seedTree(t, db)
	r := newResolver(t, db)

	tree, err := r.Resolve(dbctx.Background(), seed.course.ID, fullPaths(false))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if tree.Instructor == nil || tree.Instructor.ID != seed.course.InstructorID {
		t.Fatalf("instructor: want=%s got=%v", seed.course.InstructorID, tree.Instructor)
	}
	if tree.Instructor.AdditionalDetails == nil {
		t.Fatalf("additionalDetails: want populated got=nil")
	}
	if tree.Category == nil || tree.Category.ID != seed.course.CategoryID {
		t.Fatalf("category: want=%s got=%v", seed.course.CategoryID, tree.Category)
	}
	if len(tree.CourseContent) != 2 {
		t.Fatalf("courseContent: want=2 got=%d", len(tree.CourseContent))
	}
	for i, node := range tree.CourseContent {
		if node.ID != seed.sections[i].ID {
			t.Fatalf("section %d: want=%s got=%s", i, seed.sections[i].ID, node.ID)
		}
		want := seed.subs[node.ID]
		if len(node.SubSection) != len(want) {
			t.Fatalf("section %d subs: want=%d got=%d", i, len(want), len(node.SubSection))
		}
		for j := range want {
			if node.SubSection[j].ID != want[j].ID {
				t.Fatalf("section %d sub %d: want=%s got=%s", i, j, want[j].ID, node.SubSection[j].ID)
			}
			if node.SubSection[j].Video.URL == "" {
				t.Fatalf("section %d sub %d: video url missing", i, j)
			}
		}
	}
	if len(tree.StudentsEnrolled) != 1 || tree.StudentsEnrolled[0].ID != seed.student.ID {
		t.Fatalf("studentsEnrolled: want=[%s] got=%v", seed.student.ID, tree.StudentsEnrolled)
	}
}

func TestCourseTreeResolverOmitsVideoURL(t *testing.T) {
	db := testutil.DB(t)
	seed := seedTree(t, db)
	r := newResolver(t, db)

	tree, err := r.Resolve(dbctx.Background(), seed.course.ID, fullPaths(true))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	for _, node := range tree.CourseContent {
		for _, ss := range node.SubSection {
			if ss.Video.URL != "" || ss.Video.Key != "" {
				t.Fatalf("sub-section %s: video should be hidden got=%+v", ss.ID, ss.Video)
			}
			if ss.TimeDuration == "" {
				t.Fatalf("sub-section %s: duration should stay", ss.ID)
			}
		}
	}
}

func TestCourseTreeResolverInsideTransaction(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	seed := seedTree(t, tx)
	r := newResolver(t, db)

	tree, err := r.Resolve(testutil.Ctx(tx), seed.course.ID, fullPaths(false))
	if err != nil {
		t.Fatalf("Resolve in tx: %v", err)
	}
	if len(tree.CourseContent) != 2 {
		t.Fatalf("courseContent: want=2 got=%d", len(tree.CourseContent))
	}
}

func TestCourseTreeResolverSkipsStaleLinks(t *testing.T) {
	db := testutil.DB(t)
	seed := seedTree(t, db)
	testutil.SeedLink(t, context.Background(), db, types.FieldCourseContent, seed.course.ID, uuid.New())
	r := newResolver(t, db)

	tree, err := r.Resolve(dbctx.Background(), seed.course.ID, []PathSpec{{Field: PathCourseContent}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(tree.CourseContent) != 2 {
		t.Fatalf("courseContent: want=2 got=%d", len(tree.CourseContent))
	}
	if tree.Instructor != nil || tree.CourseContent[0].SubSection != nil {
		t.Fatalf("unrequested branches should stay nil")
	}
}

func TestCourseTreeResolverMissingCourse(t *testing.T) {
	db := testutil.DB(t)
	r := newResolver(t, db)
	_, err := r.Resolve(dbctx.Background(), uuid.New(), nil)
	if !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("Resolve missing: want=ErrNotFound got=%v", err)
	}
}

func TestValidatePaths(t *testing.T) {
	cases := []struct {
		name  string
		paths []PathSpec
		ok    bool
	}{
		{"full", fullPaths(true), true},
		{"unknown", []PathSpec{{Field: "mentor"}}, false},
		{"duplicate", []PathSpec{{Field: PathCategory}, {Field: PathCategory}}, false},
		{"nested under leaf", []PathSpec{{Field: PathCategory, Nested: []PathSpec{{Field: PathSubSection}}}}, false},
		{"wrong nesting", []PathSpec{{Field: PathInstructor, Nested: []PathSpec{{Field: PathSubSection}}}}, false},
		{"second hop at top", []PathSpec{{Field: PathSubSection}}, false},
		{"bad omit", []PathSpec{{Field: PathCourseContent, Nested: []PathSpec{{Field: PathSubSection, Omit: []string{"title"}}}}}, false},
	}
	for _, tc := range cases {
		err := ValidatePaths(tc.paths)
		if tc.ok && err != nil {
			t.Fatalf("%s: want=nil got=%v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, apierr.ErrValidation) {
			t.Fatalf("%s: want=ErrValidation got=%v", tc.name, err)
		}
	}
}
