package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/pkg/pointers"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
)

func TestSectionLifecycle(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t)
	keep := h.addSection(t, course.ID, "Keep")
	drop := h.addSection(t, course.ID, "Drop")
	kept := h.attach(t, keep.ID, "k", "10")
	gone := h.attach(t, drop.ID, "g", "10")

	tree, err := h.sections.UpdateSection(h.ctx, h.owner(), drop.ID, SectionPatch{SectionName: pointers.String("Dropped")})
	if err != nil {
		t.Fatalf("UpdateSection: %v", err)
	}
	if tree.CourseContent[1].SectionName != "Dropped" {
		t.Fatalf("rename: want=Dropped got=%s", tree.CourseContent[1].SectionName)
	}

	report, err := h.sections.DeleteSection(h.ctx, h.owner(), drop.ID)
	if err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if report.Failed != 0 || report.Kind != types.CascadeKindSectionDelete {
		t.Fatalf("report: %+v", report)
	}
	if got := h.children(t, types.FieldCourseContent, course.ID); !sameIDs(got, []uuid.UUID{keep.ID}) {
		t.Fatalf("course content: want=[%s] got=%v", keep.ID, got)
	}
	if h.media.has(gone.Video.Key) {
		t.Fatalf("video of deleted section survived")
	}
	if !h.media.has(kept.Video.Key) {
		t.Fatalf("video of kept section deleted")
	}
	if _, err := h.deps.SubSections.GetByID(dbctx.Background(), gone.ID); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("sub-section of deleted section: want=%v got=%v", apierr.ErrNotFound, err)
	}
	run, err := h.deps.Ledger.LastRun(h.ctx, types.CascadeKindSectionDelete, drop.ID)
	if err != nil || run == nil || run.Status != types.CascadeRunSucceeded {
		t.Fatalf("ledger run: %+v err=%v", run, err)
	}
}

func TestCreateSectionValidation(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t)
	if _, err := h.sections.CreateSection(h.ctx, h.owner(), course.ID, " "); !errors.Is(err, apierr.ErrValidation) {
		t.Fatalf("blank name: want=%v got=%v", apierr.ErrValidation, err)
	}
	if _, err := h.sections.CreateSection(h.ctx, h.owner(), uuid.New(), "x"); !errors.Is(err, apierr.ErrInvalidReference) {
		t.Fatalf("missing course: want=%v got=%v", apierr.ErrInvalidReference, err)
	}
	if _, err := h.sections.DeleteSection(h.ctx, h.owner(), uuid.New()); !errors.Is(err, apierr.ErrNotFound) {
		t.Fatalf("missing section: want=%v got=%v", apierr.ErrNotFound, err)
	}
}

func TestSectionMutationsInvalidateCache(t *testing.T) {
	h := newHarness(t)
	course := h.createCourse(t)
	if _, err := h.courses.GetCourseDetails(h.ctx, h.owner(), course.ID); err != nil {
		t.Fatalf("GetCourseDetails: %v", err)
	}
	if !h.cache.cached(course.ID, cacheViewPublic) {
		t.Fatalf("expected cached view")
	}
	h.addSection(t, course.ID, "New")
	if h.cache.cached(course.ID, cacheViewPublic) {
		t.Fatalf("CreateSection did not invalidate")
	}
	details, err := h.courses.GetCourseDetails(h.ctx, h.owner(), course.ID)
	if err != nil {
		t.Fatalf("GetCourseDetails: %v", err)
	}
	if len(details.Tree.CourseContent) != 1 {
		t.Fatalf("sections: want=1 got=%d", len(details.Tree.CourseContent))
	}
}
