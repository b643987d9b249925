package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
)

type SectionService interface {
	CreateSection(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID, name string) (*aggregates.CourseTree, error)
	UpdateSection(ctx context.Context, actor ctxutil.Actor, sectionID uuid.UUID, patch SectionPatch) (*aggregates.CourseTree, error)
	DeleteSection(ctx context.Context, actor ctxutil.Actor, sectionID uuid.UUID) (*CascadeReport, error)
}

type sectionService struct {
	*hierarchy
}

func NewSectionService(deps HierarchyDeps) SectionService {
	return &sectionService{hierarchy: newHierarchy(deps, "SectionService")}
}

// ownedCourse loads the course a child record hangs off and checks actor may
// change it. A missing parent is an invalid reference, not a missing target.
func (h *hierarchy) ownedCourse(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID) (*types.Course, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	course, err := h.deps.Courses.GetByID(h.dbc(ctx), courseID)
	if err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return nil, apierr.InvalidReference("course %s not found", courseID)
		}
		return nil, err
	}
	if err := requireOwner(course, actor); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *sectionService) CreateSection(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID, name string) (out *aggregates.CourseTree, err error) {
	ctx, span := observability.StartSpan(ctx, "section.create", attribute.String("course.id", courseID.String()))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireFields("sectionName", name); err != nil {
		return nil, err
	}
	if courseID == uuid.Nil {
		return nil, apierr.Validation("missing required fields: courseId")
	}
	course, err := s.ownedCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}

	dbc := s.dbc(ctx)
	section := &types.Section{ID: uuid.New(), SectionName: strings.TrimSpace(name), CourseID: courseID}
	if _, err := s.deps.Sections.Create(dbc, []*types.Section{section}); err != nil {
		return nil, err
	}
	if err := s.deps.Links.Link(dbc, types.FieldCourseContent, courseID, section.ID); err != nil {
		if _, derr := s.deps.Sections.DeleteByIDs(dbc, []uuid.UUID{section.ID}); derr != nil {
			s.log.Error("Failed to remove unlinked section", "section_id", section.ID, "error", derr)
		}
		return nil, err
	}
	s.invalidate(ctx, courseID)
	return s.deps.Resolver.ResolveCourse(dbc, course, FullPaths)
}

func (s *sectionService) UpdateSection(ctx context.Context, actor ctxutil.Actor, sectionID uuid.UUID, patch SectionPatch) (out *aggregates.CourseTree, err error) {
	ctx, span := observability.StartSpan(ctx, "section.update", attribute.String("section.id", sectionID.String()))
	defer func() { observability.EndSpan(span, err) }()

	dbc := s.dbc(ctx)
	section, err := s.deps.Sections.GetByID(dbc, sectionID)
	if err != nil {
		return nil, err
	}
	course, err := s.ownedCourse(ctx, actor, section.CourseID)
	if err != nil {
		return nil, err
	}
	if patch.SectionName != nil {
		name := strings.TrimSpace(*patch.SectionName)
		if name == "" {
			return nil, apierr.Validation("sectionName must not be blank")
		}
		if err := s.deps.Sections.UpdateFields(dbc, sectionID, map[string]interface{}{"section_name": name}); err != nil {
			return nil, err
		}
		s.invalidate(ctx, course.ID)
	}
	return s.deps.Resolver.ResolveCourse(dbc, course, FullPaths)
}

// DeleteSection unlinks the section from its course first so readers stop
// seeing it, then removes its sub-sections, their videos and the record.
func (s *sectionService) DeleteSection(ctx context.Context, actor ctxutil.Actor, sectionID uuid.UUID) (report *CascadeReport, err error) {
	ctx, span := observability.StartSpan(ctx, "section.delete", attribute.String("section.id", sectionID.String()))
	defer func() { observability.EndSpan(span, err) }()

	dbc := s.dbc(ctx)
	section, err := s.deps.Sections.GetByID(dbc, sectionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedCourse(ctx, actor, section.CourseID); err != nil {
		return nil, err
	}

	c := newCascade(s.log, types.CascadeKindSectionDelete, section.CourseID, sectionID)
	s.beginLedger(ctx, c, actor.UserID)
	defer s.finishLedger(ctx, c)

	_, err = s.deps.Links.Unlink(dbc, types.FieldCourseContent, section.CourseID, sectionID)
	c.record(StepUnlinkSection, section.CourseID.String(), err)
	s.deleteSectionTree(ctx, c, sectionID)
	s.invalidate(ctx, section.CourseID)
	return c.report, nil
}
