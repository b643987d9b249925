package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	"github.com/yungbote/studynotion-backend/internal/data/repos"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

// PublicPaths populates everything a catalogue visitor sees. Video locations
// stay hidden until the caller is enrolled.
var PublicPaths = []aggregates.PathSpec{
	{Field: aggregates.PathInstructor, Nested: []aggregates.PathSpec{{Field: aggregates.PathAdditionalDetails}}},
	{Field: aggregates.PathCategory},
	{Field: aggregates.PathRatingAndReviews},
	{Field: aggregates.PathCourseContent, Nested: []aggregates.PathSpec{
		{Field: aggregates.PathSubSection, Omit: []string{aggregates.OmitVideoURL}},
	}},
}

// FullPaths additionally exposes videos and the enrolled students.
var FullPaths = []aggregates.PathSpec{
	{Field: aggregates.PathInstructor, Nested: []aggregates.PathSpec{{Field: aggregates.PathAdditionalDetails}}},
	{Field: aggregates.PathCategory},
	{Field: aggregates.PathRatingAndReviews},
	{Field: aggregates.PathCourseContent, Nested: []aggregates.PathSpec{{Field: aggregates.PathSubSection}}},
	{Field: aggregates.PathStudentsEnrolled},
}

var summaryPaths = []aggregates.PathSpec{
	{Field: aggregates.PathInstructor},
	{Field: aggregates.PathRatingAndReviews},
}

// CourseDetails is a populated course plus its summed sub-section durations.
type CourseDetails struct {
	Tree            *aggregates.CourseTree `json:"course_details"`
	TotalDuration   string                 `json:"total_duration"`
	CompletedVideos []string               `json:"completed_videos,omitempty"`
}

type CourseService interface {
	CreateCourse(ctx context.Context, actor ctxutil.Actor, in CreateCourseInput) (*types.Course, error)
	GetCourseDetails(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID) (*CourseDetails, error)
	GetFullCourseDetails(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID) (*CourseDetails, error)
	EditCourse(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID, patch CoursePatch, thumbnail *media.Blob) (*aggregates.CourseTree, error)
	DeleteCourse(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID) (*CascadeReport, error)
	ListCourses(ctx context.Context, filter repos.CourseFilter) ([]*CourseSummary, error)
	ListInstructorCourses(ctx context.Context, actor ctxutil.Actor) ([]*CourseSummary, error)
	EnrollStudent(ctx context.Context, courseID, studentID uuid.UUID) error
}

type courseService struct {
	*hierarchy
}

func NewCourseService(deps HierarchyDeps) CourseService {
	return &courseService{hierarchy: newHierarchy(deps, "CourseService")}
}

func (s *courseService) CreateCourse(ctx context.Context, actor ctxutil.Actor, in CreateCourseInput) (course *types.Course, err error) {
	ctx, span := observability.StartSpan(ctx, "course.create", attribute.String("actor.id", actor.UserID.String()))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireInstructor(actor); err != nil {
		return nil, err
	}
	if err := requireFields(
		"courseName", in.CourseName,
		"courseDescription", in.CourseDescription,
		"whatYouWillLearn", in.WhatYouWillLearn,
	); err != nil {
		return nil, err
	}
	if in.Price == nil {
		return nil, apierr.Validation("missing required fields: price")
	}
	if *in.Price < 0 {
		return nil, apierr.Validation("price must not be negative")
	}
	if in.CategoryID == uuid.Nil {
		return nil, apierr.Validation("missing required fields: category")
	}
	tags, err := parseStringList("tag", in.Tag)
	if err != nil {
		return nil, err
	}
	instructions, err := parseStringList("instructions", in.Instructions)
	if err != nil {
		return nil, err
	}
	status, err := normalizeStatus(in.Status)
	if err != nil {
		return nil, err
	}
	if in.Thumbnail.Empty() {
		return nil, apierr.Validation("thumbnail image is required")
	}

	dbc := s.dbc(ctx)
	instructors, err := s.deps.Users.GetByIDs(dbc, []uuid.UUID{actor.UserID})
	if err != nil {
		return nil, err
	}
	if len(instructors) == 0 {
		return nil, apierr.InvalidReference("instructor %s not found", actor.UserID)
	}
	if _, err := s.deps.Categories.GetByID(dbc, in.CategoryID); err != nil {
		if errors.Is(err, apierr.ErrNotFound) {
			return nil, apierr.InvalidReference("category %s not found", in.CategoryID)
		}
		return nil, err
	}

	saved, err := s.deps.Media.Save(ctx, *in.Thumbnail, media.KindThumbnail)
	if err != nil {
		return nil, err
	}
	thumb := toMediaRef(saved)

	course = &types.Course{
		ID:                uuid.New(),
		CourseName:        strings.TrimSpace(in.CourseName),
		CourseDescription: strings.TrimSpace(in.CourseDescription),
		WhatYouWillLearn:  strings.TrimSpace(in.WhatYouWillLearn),
		Price:             *in.Price,
		InstructorID:      actor.UserID,
		CategoryID:        in.CategoryID,
		Tag:               datatypes.JSONSlice[string](tags),
		Instructions:      datatypes.JSONSlice[string](instructions),
		Status:            status,
		Thumbnail:         thumb,
	}
	if _, err := s.deps.Courses.Create(dbc, []*types.Course{course}); err != nil {
		s.discardMedia(ctx, thumb, "course.create")
		return nil, err
	}

	// The course stays valid without these links; reconcile can restore them.
	if err := s.deps.Links.Link(dbc, types.FieldUserCourses, actor.UserID, course.ID); err != nil {
		s.log.Error("Failed to link course to instructor", "course_id", course.ID, "instructor_id", actor.UserID, "error", err)
	}
	if err := s.deps.Links.Link(dbc, types.FieldCategoryCourses, in.CategoryID, course.ID); err != nil {
		s.log.Error("Failed to link course to category", "course_id", course.ID, "category_id", in.CategoryID, "error", err)
	}
	s.log.Info("Course created", "course_id", course.ID, "instructor_id", actor.UserID)
	return course, nil
}

func (s *courseService) GetCourseDetails(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID) (out *CourseDetails, err error) {
	ctx, span := observability.StartSpan(ctx, "course.details", attribute.String("course.id", courseID.String()))
	defer func() { observability.EndSpan(span, err) }()

	tree, err := s.cachedTree(ctx, courseID, cacheViewPublic, PublicPaths)
	if err != nil {
		return nil, err
	}
	if s.deps.DraftGate && tree.IsDraft() && !s.deps.DraftPolicy(tree.Course, actor) {
		return nil, apierr.Forbidden("course %s is not published", courseID)
	}
	return &CourseDetails{Tree: tree, TotalDuration: TotalDuration(tree)}, nil
}

func (s *courseService) GetFullCourseDetails(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID) (out *CourseDetails, err error) {
	ctx, span := observability.StartSpan(ctx, "course.full_details", attribute.String("course.id", courseID.String()))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireActor(actor); err != nil {
		return nil, err
	}
	tree, err := s.cachedTree(ctx, courseID, cacheViewFull, FullPaths)
	if err != nil {
		return nil, err
	}
	if !canManage(tree.Course, actor) && !enrolled(tree, actor.UserID) {
		return nil, apierr.Forbidden("not enrolled in course %s", courseID)
	}

	completed := []string{}
	progress, err := s.deps.Progress.GetByCourseAndUser(s.dbc(ctx), courseID, actor.UserID)
	switch {
	case err != nil && !errors.Is(err, apierr.ErrNotFound):
		return nil, err
	case progress != nil:
		completed = append(completed, progress.CompletedVideos...)
	}
	return &CourseDetails{Tree: tree, TotalDuration: TotalDuration(tree), CompletedVideos: completed}, nil
}

func enrolled(tree *aggregates.CourseTree, userID uuid.UUID) bool {
	for _, u := range tree.StudentsEnrolled {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// cachedTree serves a resolved tree from the course cache, filling it on miss.
func (s *courseService) cachedTree(ctx context.Context, courseID uuid.UUID, view string, paths []aggregates.PathSpec) (*aggregates.CourseTree, error) {
	var cached aggregates.CourseTree
	hit, err := s.deps.Cache.Get(ctx, courseID, view, &cached)
	if err != nil {
		s.log.Warn("Course cache read failed", "course_id", courseID, "view", view, "error", err)
	}
	hit = hit && cached.Course != nil
	observability.Current().ObserveCacheLookup(view, hit)
	if hit {
		return &cached, nil
	}
	tree, err := s.deps.Resolver.Resolve(s.dbc(ctx), courseID, paths)
	if err != nil {
		return nil, err
	}
	if err := s.deps.Cache.Set(ctx, courseID, view, tree); err != nil {
		s.log.Warn("Course cache write failed", "course_id", courseID, "view", view, "error", err)
	}
	return tree, nil
}

func (s *courseService) EditCourse(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID, patch CoursePatch, thumbnail *media.Blob) (out *aggregates.CourseTree, err error) {
	ctx, span := observability.StartSpan(ctx, "course.edit", attribute.String("course.id", courseID.String()))
	defer func() { observability.EndSpan(span, err) }()

	dbc := s.dbc(ctx)
	course, err := s.deps.Courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(course, actor); err != nil {
		return nil, err
	}
	updates, err := s.courseUpdates(ctx, patch)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 && thumbnail.Empty() {
		return s.deps.Resolver.ResolveCourse(dbc, course, FullPaths)
	}

	var newThumb types.MediaRef
	if !thumbnail.Empty() {
		saved, err := s.deps.Media.Save(ctx, *thumbnail, media.KindThumbnail)
		if err != nil {
			return nil, err
		}
		newThumb = toMediaRef(saved)
		for k, v := range mediaColumns("thumbnail_", newThumb) {
			updates[k] = v
		}
	}
	if err := s.deps.Courses.UpdateFields(dbc, courseID, updates); err != nil {
		s.discardMedia(ctx, newThumb, "course.edit")
		return nil, err
	}
	if !newThumb.IsZero() && course.Thumbnail.Key != newThumb.Key {
		if err := s.deleteMedia(ctx, course.Thumbnail); err != nil {
			s.log.Warn("Failed to delete replaced thumbnail", "course_id", courseID, "key", course.Thumbnail.Key, "error", err)
		}
	}
	if patch.CategoryID != nil && *patch.CategoryID != course.CategoryID {
		if _, err := s.deps.Links.Unlink(dbc, types.FieldCategoryCourses, course.CategoryID, courseID); err != nil {
			s.log.Warn("Failed to unlink previous category", "course_id", courseID, "category_id", course.CategoryID, "error", err)
		}
		if err := s.deps.Links.Link(dbc, types.FieldCategoryCourses, *patch.CategoryID, courseID); err != nil {
			s.log.Error("Failed to link new category", "course_id", courseID, "category_id", *patch.CategoryID, "error", err)
		}
	}
	s.invalidate(ctx, courseID)
	return s.deps.Resolver.Resolve(dbc, courseID, FullPaths)
}

// courseUpdates validates every present patch field before anything changes.
func (s *courseService) courseUpdates(ctx context.Context, patch CoursePatch) (map[string]interface{}, error) {
	updates := map[string]interface{}{}
	text := []struct {
		name, column string
		value        *string
	}{
		{"courseName", "course_name", patch.CourseName},
		{"courseDescription", "course_description", patch.CourseDescription},
		{"whatYouWillLearn", "what_you_will_learn", patch.WhatYouWillLearn},
	}
	for _, f := range text {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return nil, apierr.Validation("%s must not be blank", f.name)
		}
		updates[f.column] = v
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, apierr.Validation("price must not be negative")
		}
		updates["price"] = *patch.Price
	}
	if patch.Tag != nil {
		tags, err := parseStringList("tag", *patch.Tag)
		if err != nil {
			return nil, err
		}
		updates["tag"] = datatypes.JSONSlice[string](tags)
	}
	if patch.Instructions != nil {
		list, err := parseStringList("instructions", *patch.Instructions)
		if err != nil {
			return nil, err
		}
		updates["instructions"] = datatypes.JSONSlice[string](list)
	}
	if patch.Status != nil {
		if strings.TrimSpace(*patch.Status) == "" {
			return nil, apierr.Validation("status must not be blank")
		}
		status, err := normalizeStatus(*patch.Status)
		if err != nil {
			return nil, err
		}
		updates["status"] = status
	}
	if patch.CategoryID != nil {
		if _, err := s.deps.Categories.GetByID(s.dbc(ctx), *patch.CategoryID); err != nil {
			if errors.Is(err, apierr.ErrNotFound) {
				return nil, apierr.InvalidReference("category %s not found", *patch.CategoryID)
			}
			return nil, err
		}
		updates["category_id"] = *patch.CategoryID
	}
	return updates, nil
}

// DeleteCourse removes a course and everything it owns. Sub-step failures are
// logged and reported but do not stop later steps; the call succeeds once the
// course record is gone. Deleting an already deleted course sweeps leftovers.
func (s *courseService) DeleteCourse(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID) (report *CascadeReport, err error) {
	ctx, span := observability.StartSpan(ctx, "course.delete", attribute.String("course.id", courseID.String()))
	defer func() { observability.EndSpan(span, err) }()

	dbc := s.dbc(ctx)
	course, err := s.deps.Courses.GetByID(dbc, courseID)
	if errors.Is(err, apierr.ErrNotFound) {
		return s.sweepDeleted(ctx, actor, courseID, err)
	}
	if err != nil {
		return nil, err
	}
	if err := requireOwner(course, actor); err != nil {
		return nil, err
	}

	c := newCascade(s.log, types.CascadeKindCourseDelete, courseID, courseID)
	s.beginLedger(ctx, c, actor.UserID)
	defer s.finishLedger(ctx, c)

	students, err := s.deps.Links.Children(dbc, types.FieldStudentsEnrolled, courseID)
	if err != nil {
		c.record(StepUnlinkStudent, courseID.String(), err)
	}
	for _, studentID := range dedupe(students) {
		c.record(StepUnlinkStudent, studentID.String(), s.unlinkAll(dbc, types.FieldUserCourses, studentID, courseID))
	}
	c.record(StepUnlinkCategory, course.CategoryID.String(), s.unlinkAll(dbc, types.FieldCategoryCourses, course.CategoryID, courseID))
	c.record(StepUnlinkInstructor, course.InstructorID.String(), s.unlinkAll(dbc, types.FieldUserCourses, course.InstructorID, courseID))

	if !course.Thumbnail.IsZero() {
		c.record(StepDeleteThumbnail, course.Thumbnail.Key, s.deleteMedia(ctx, course.Thumbnail))
	}

	sectionIDs, err := s.sectionIDsOf(dbc, courseID)
	if err != nil {
		c.record(StepDeleteSection, courseID.String(), err)
	}
	for _, sectionID := range sectionIDs {
		s.deleteSectionTree(ctx, c, sectionID)
	}

	n, err := s.deps.Courses.DeleteByIDs(dbc, []uuid.UUID{courseID})
	c.record(StepDeleteCourse, courseID.String(), err)
	if err != nil {
		s.invalidate(ctx, courseID)
		return c.report, err
	}
	if n == 0 {
		s.log.Warn("Course already removed by a concurrent delete", "course_id", courseID)
	}
	for _, field := range []types.LinkField{types.FieldCourseContent, types.FieldStudentsEnrolled, types.FieldRatingAndReviews} {
		_, err := s.deps.Links.DeleteByParent(dbc, field, []uuid.UUID{courseID})
		c.record(StepClearCourseLinks, string(field), err)
	}
	s.invalidate(ctx, courseID)

	s.log.Info("Course deleted", "course_id", courseID, "steps", len(c.report.Steps), "failed", c.report.Failed)
	return c.report, nil
}

// sweepDeleted repeats the cleanup of a course whose deletion is already in
// the ledger. Without such a run, or for another caller, notFound is returned.
func (s *courseService) sweepDeleted(ctx context.Context, actor ctxutil.Actor, courseID uuid.UUID, notFound error) (*CascadeReport, error) {
	if s.deps.Ledger == nil || actor.IsZero() {
		return nil, notFound
	}
	prev, err := s.deps.Ledger.LastRun(ctx, types.CascadeKindCourseDelete, courseID)
	if err != nil {
		s.log.Warn("Cascade ledger lookup failed", "course_id", courseID, "error", err)
		return nil, notFound
	}
	if prev == nil || (prev.ActorID != actor.UserID && !actor.IsAdmin()) {
		return nil, notFound
	}

	dbc := s.dbc(ctx)
	c := newCascade(s.log, types.CascadeKindCourseDelete, courseID, courseID)
	s.beginLedger(ctx, c, actor.UserID)
	defer s.finishLedger(ctx, c)

	_, err = s.deps.Links.DeleteByChild(dbc, types.FieldUserCourses, []uuid.UUID{courseID})
	c.record(StepUnlinkStudent, courseID.String(), err)
	_, err = s.deps.Links.DeleteByChild(dbc, types.FieldCategoryCourses, []uuid.UUID{courseID})
	c.record(StepUnlinkCategory, courseID.String(), err)
	sectionIDs, err := s.sectionIDsOf(dbc, courseID)
	if err != nil {
		c.record(StepDeleteSection, courseID.String(), err)
	}
	for _, sectionID := range sectionIDs {
		s.deleteSectionTree(ctx, c, sectionID)
	}
	for _, field := range []types.LinkField{types.FieldCourseContent, types.FieldStudentsEnrolled, types.FieldRatingAndReviews} {
		_, err := s.deps.Links.DeleteByParent(dbc, field, []uuid.UUID{courseID})
		c.record(StepClearCourseLinks, string(field), err)
	}
	s.invalidate(ctx, courseID)
	return c.report, nil
}

func (s *courseService) ListCourses(ctx context.Context, filter repos.CourseFilter) (out []*CourseSummary, err error) {
	ctx, span := observability.StartSpan(ctx, "course.list", attribute.String("filter.status", filter.Status))
	defer func() { observability.EndSpan(span, err) }()

	courses, err := s.deps.Courses.List(s.dbc(ctx), filter)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, courses)
}

func (s *courseService) ListInstructorCourses(ctx context.Context, actor ctxutil.Actor) (out []*CourseSummary, err error) {
	ctx, span := observability.StartSpan(ctx, "course.list_instructor", attribute.String("actor.id", actor.UserID.String()))
	defer func() { observability.EndSpan(span, err) }()

	if err := requireInstructor(actor); err != nil {
		return nil, err
	}
	courses, err := s.deps.Courses.ListByInstructor(s.dbc(ctx), actor.UserID)
	if err != nil {
		return nil, err
	}
	return s.summaries(ctx, courses)
}

func (s *courseService) summaries(ctx context.Context, courses []*types.Course) ([]*CourseSummary, error) {
	out := make([]*CourseSummary, len(courses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, course := range courses {
		g.Go(func() error {
			dbc := s.dbc(gctx)
			tree, err := s.deps.Resolver.ResolveCourse(dbc, course, summaryPaths)
			if err != nil {
				return err
			}
			n, err := s.deps.Links.Count(dbc, types.FieldStudentsEnrolled, course.ID)
			if err != nil {
				return err
			}
			var instructor *types.User
			if tree.Instructor != nil {
				instructor = tree.Instructor.User
			}
			out[i] = summarize(course, instructor, tree.RatingAndReviews, n)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EnrollStudent adds the student to the course roster and the course to the
// student's list. Enrolling twice is a no-op.
func (s *courseService) EnrollStudent(ctx context.Context, courseID, studentID uuid.UUID) (err error) {
	ctx, span := observability.StartSpan(ctx, "course.enroll",
		attribute.String("course.id", courseID.String()),
		attribute.String("student.id", studentID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	dbc := s.dbc(ctx)
	if _, err := s.deps.Courses.GetByID(dbc, courseID); err != nil {
		return err
	}
	users, err := s.deps.Users.GetByIDs(dbc, []uuid.UUID{studentID})
	if err != nil {
		return err
	}
	if len(users) == 0 {
		return apierr.InvalidReference("student %s not found", studentID)
	}
	roster, err := s.deps.Links.Children(dbc, types.FieldStudentsEnrolled, courseID)
	if err != nil {
		return err
	}
	for _, id := range roster {
		if id == studentID {
			return nil
		}
	}
	if err := s.deps.Links.Link(dbc, types.FieldStudentsEnrolled, courseID, studentID); err != nil {
		return err
	}
	if err := s.deps.Links.Link(dbc, types.FieldUserCourses, studentID, courseID); err != nil {
		return err
	}
	s.invalidate(ctx, courseID)
	return nil
}
