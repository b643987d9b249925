package aggregates

import (
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/studynotion-backend/internal/data/repos"
	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/apierr"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

// PathField names a populatable reference of a course tree.
type PathField string

const (
	PathInstructor        PathField = "instructor"
	PathAdditionalDetails PathField = "additionalDetails"
	PathCategory          PathField = "category"
	PathRatingAndReviews  PathField = "ratingAndReviews"
	PathCourseContent     PathField = "courseContent"
	PathSubSection        PathField = "subSection"
	PathStudentsEnrolled  PathField = "studentsEnrolled"
)

// OmitVideoURL hides sub-section video locations.
const OmitVideoURL = "videoUrl"

// PathSpec selects one reference to populate. Omit hides attributes of the
// populated records; Nested populates references of those records.
type PathSpec struct {
	Field  PathField
	Omit   []string
	Nested []PathSpec
}

type pathRule struct {
	nested []PathField
	omit   []string
}

var courseRules = map[PathField]pathRule{
	PathInstructor:       {nested: []PathField{PathAdditionalDetails}},
	PathCategory:         {},
	PathRatingAndReviews: {},
	PathCourseContent:    {nested: []PathField{PathSubSection}},
	PathStudentsEnrolled: {},
}

var nestedRules = map[PathField]pathRule{
	PathAdditionalDetails: {},
	PathSubSection:        {omit: []string{OmitVideoURL}},
}

// ValidatePaths rejects unknown fields, repeated fields, unsupported omits and
// nesting under a field that has no such reference.
func ValidatePaths(paths []PathSpec) error {
	return validateLevel(paths, courseRules, "course")
}

func validateLevel(paths []PathSpec, allowed map[PathField]pathRule, parent string) error {
	seen := map[PathField]bool{}
	for _, p := range paths {
		rule, ok := allowed[p.Field]
		if !ok {
			return apierr.Validation("cannot populate %q on %s", p.Field, parent)
		}
		if seen[p.Field] {
			return apierr.Validation("path %q listed twice", p.Field)
		}
		seen[p.Field] = true
		for _, o := range p.Omit {
			if !contains(rule.omit, o) {
				return apierr.Validation("cannot omit %q from %s", o, p.Field)
			}
		}
		if len(p.Nested) == 0 {
			continue
		}
		next := map[PathField]pathRule{}
		for _, f := range rule.nested {
			next[f] = nestedRules[f]
		}
		if err := validateLevel(p.Nested, next, string(p.Field)); err != nil {
			return err
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type InstructorNode struct {
	*types.User
	AdditionalDetails *types.Profile `json:"additional_details,omitempty"`
}

type SectionNode struct {
	*types.Section
	SubSection []*types.SubSection `json:"sub_section"`
}

// CourseTree is a course with the references requested by its PathSpecs.
// Unrequested branches stay nil.
type CourseTree struct {
	*types.Course
	Instructor       *InstructorNode          `json:"instructor,omitempty"`
	Category         *types.Category          `json:"category,omitempty"`
	RatingAndReviews []*types.RatingAndReview `json:"rating_and_reviews,omitempty"`
	CourseContent    []*SectionNode           `json:"course_content,omitempty"`
	StudentsEnrolled []*types.User            `json:"students_enrolled,omitempty"`
}

type CourseTreeDeps struct {
	Log         *logger.Logger
	Courses     repos.CourseRepo
	Users       repos.UserRepo
	Profiles    repos.ProfileRepo
	Categories  repos.CategoryRepo
	Sections    repos.SectionRepo
	SubSections repos.SubSectionRepo
	Reviews     repos.RatingAndReviewRepo
	Links       repos.RefLinkRepo
}

type CourseTreeResolver interface {
	Resolve(dbc dbctx.Context, courseID uuid.UUID, paths []PathSpec) (*CourseTree, error)
	ResolveCourse(dbc dbctx.Context, course *types.Course, paths []PathSpec) (*CourseTree, error)
}

type courseTreeResolver struct {
	deps CourseTreeDeps
	log  *logger.Logger
}

func NewCourseTreeResolver(deps CourseTreeDeps) CourseTreeResolver {
	return &courseTreeResolver{deps: deps, log: deps.Log.With("aggregate", "CourseTreeResolver")}
}

func (r *courseTreeResolver) Resolve(dbc dbctx.Context, courseID uuid.UUID, paths []PathSpec) (*CourseTree, error) {
	if err := ValidatePaths(paths); err != nil {
		return nil, err
	}
	course, err := r.deps.Courses.GetByID(dbc, courseID)
	if err != nil {
		return nil, err
	}
	return r.resolve(dbc, course, paths)
}

func (r *courseTreeResolver) ResolveCourse(dbc dbctx.Context, course *types.Course, paths []PathSpec) (*CourseTree, error) {
	if course == nil {
		return nil, apierr.Validation("course required")
	}
	if err := ValidatePaths(paths); err != nil {
		return nil, err
	}
	return r.resolve(dbc, course, paths)
}

// resolve fills each requested branch in its own goroutine. Every branch writes
// a distinct field of tree, and ValidatePaths guarantees no field repeats.
func (r *courseTreeResolver) resolve(dbc dbctx.Context, course *types.Course, paths []PathSpec) (*CourseTree, error) {
	tree := &CourseTree{Course: course}
	g, gctx := errgroup.WithContext(dbc.Context())
	if dbc.Tx != nil {
		// A transaction is one connection; its statements cannot overlap.
		g.SetLimit(1)
	}
	sub := dbctx.Context{Ctx: gctx, Tx: dbc.Tx}

	for _, p := range paths {
		switch p.Field {
		case PathInstructor:
			g.Go(func() error {
				node, err := r.instructor(sub, course.InstructorID, p)
				tree.Instructor = node
				return err
			})
		case PathCategory:
			g.Go(func() error {
				rows, err := r.deps.Categories.GetByIDs(sub, []uuid.UUID{course.CategoryID})
				if err == nil && len(rows) > 0 {
					tree.Category = rows[0]
				}
				return err
			})
		case PathRatingAndReviews:
			g.Go(func() error {
				ids, err := r.deps.Links.Children(sub, types.FieldRatingAndReviews, course.ID)
				if err != nil {
					return err
				}
				tree.RatingAndReviews, err = r.deps.Reviews.GetByIDs(sub, ids)
				return err
			})
		case PathCourseContent:
			g.Go(func() error {
				nodes, err := r.courseContent(sub, course.ID, p)
				tree.CourseContent = nodes
				return err
			})
		case PathStudentsEnrolled:
			g.Go(func() error {
				ids, err := r.deps.Links.Children(sub, types.FieldStudentsEnrolled, course.ID)
				if err != nil {
					return err
				}
				tree.StudentsEnrolled, err = r.deps.Users.GetByIDs(sub, ids)
				return err
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve course %s: %w", course.ID, err)
	}
	return tree, nil
}

func (r *courseTreeResolver) instructor(dbc dbctx.Context, userID uuid.UUID, p PathSpec) (*InstructorNode, error) {
	users, err := r.deps.Users.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil || len(users) == 0 {
		return nil, err
	}
	node := &InstructorNode{User: users[0]}
	if nestedSpec(p, PathAdditionalDetails) == nil || node.AdditionalDetailsID == nil {
		return node, nil
	}
	profiles, err := r.deps.Profiles.GetByIDs(dbc, []uuid.UUID{*node.AdditionalDetailsID})
	if err != nil {
		return nil, err
	}
	if len(profiles) > 0 {
		node.AdditionalDetails = profiles[0]
	}
	return node, nil
}

// courseContent returns sections in link order. Links to deleted records are
// skipped, so a half-finished cascade never surfaces a dangling entry.
func (r *courseTreeResolver) courseContent(dbc dbctx.Context, courseID uuid.UUID, p PathSpec) ([]*SectionNode, error) {
	ids, err := r.deps.Links.Children(dbc, types.FieldCourseContent, courseID)
	if err != nil {
		return nil, err
	}
	sections, err := r.deps.Sections.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	nodes := make([]*SectionNode, 0, len(sections))
	sectionIDs := make([]uuid.UUID, 0, len(sections))
	for _, s := range sections {
		nodes = append(nodes, &SectionNode{Section: s})
		sectionIDs = append(sectionIDs, s.ID)
	}

	subSpec := nestedSpec(p, PathSubSection)
	if subSpec == nil || len(nodes) == 0 {
		return nodes, nil
	}
	childrenBySection, err := r.deps.Links.ChildrenOf(dbc, types.FieldSectionSubSection, sectionIDs)
	if err != nil {
		return nil, err
	}
	var all []uuid.UUID
	for _, id := range sectionIDs {
		all = append(all, childrenBySection[id]...)
	}
	subs, err := r.deps.SubSections.GetByIDs(dbc, all)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*types.SubSection, len(subs))
	for _, s := range subs {
		if contains(subSpec.Omit, OmitVideoURL) {
			s.Video = types.MediaRef{}
		}
		byID[s.ID] = s
	}
	for _, node := range nodes {
		list := make([]*types.SubSection, 0, len(childrenBySection[node.ID]))
		for _, id := range childrenBySection[node.ID] {
			if s, ok := byID[id]; ok {
				list = append(list, s)
			}
		}
		node.SubSection = list
	}
	return nodes, nil
}

func nestedSpec(p PathSpec, field PathField) *PathSpec {
	for i := range p.Nested {
		if p.Nested[i].Field == field {
			return &p.Nested[i]
		}
	}
	return nil
}
