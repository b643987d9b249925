package services

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	types "github.com/yungbote/studynotion-backend/internal/domain"
)

// ExternalizeURL prefixes a relative media path with baseURL. Absolute and
// protocol-relative values, and empty ones, pass through.
func ExternalizeURL(raw, baseURL string) string {
	u := strings.TrimSpace(raw)
	if u == "" || isAbsoluteURL(u) {
		return u
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return u
	}
	return base + "/" + strings.TrimLeft(u, "/")
}

func isAbsoluteURL(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//")
}

// Externalize returns a deep copy of tree with every media URL resolved
// against baseURL. tree itself is left untouched.
func Externalize(tree *aggregates.CourseTree, baseURL string) *aggregates.CourseTree {
	if tree == nil {
		return nil
	}
	out := &aggregates.CourseTree{}
	if tree.Course != nil {
		c := *tree.Course
		c.Tag = slices.Clone(c.Tag)
		c.Instructions = slices.Clone(c.Instructions)
		c.Thumbnail.URL = ExternalizeURL(c.Thumbnail.URL, baseURL)
		out.Course = &c
	}
	if tree.Instructor != nil {
		node := &aggregates.InstructorNode{User: externalizeUser(tree.Instructor.User, baseURL)}
		if tree.Instructor.AdditionalDetails != nil {
			p := *tree.Instructor.AdditionalDetails
			node.AdditionalDetails = &p
		}
		out.Instructor = node
	}
	if tree.Category != nil {
		c := *tree.Category
		out.Category = &c
	}
	if tree.RatingAndReviews != nil {
		out.RatingAndReviews = make([]*types.RatingAndReview, 0, len(tree.RatingAndReviews))
		for _, r := range tree.RatingAndReviews {
			cp := *r
			out.RatingAndReviews = append(out.RatingAndReviews, &cp)
		}
	}
	if tree.CourseContent != nil {
		out.CourseContent = make([]*aggregates.SectionNode, 0, len(tree.CourseContent))
		for _, node := range tree.CourseContent {
			out.CourseContent = append(out.CourseContent, ExternalizeSection(node, baseURL))
		}
	}
	if tree.StudentsEnrolled != nil {
		out.StudentsEnrolled = make([]*types.User, 0, len(tree.StudentsEnrolled))
		for _, u := range tree.StudentsEnrolled {
			out.StudentsEnrolled = append(out.StudentsEnrolled, externalizeUser(u, baseURL))
		}
	}
	return out
}

// ExternalizeSection copies node with sub-section video URLs resolved.
func ExternalizeSection(node *aggregates.SectionNode, baseURL string) *aggregates.SectionNode {
	if node == nil {
		return nil
	}
	cp := &aggregates.SectionNode{}
	if node.Section != nil {
		s := *node.Section
		cp.Section = &s
	}
	if node.SubSection != nil {
		cp.SubSection = make([]*types.SubSection, 0, len(node.SubSection))
		for _, ss := range node.SubSection {
			v := *ss
			v.Video.URL = ExternalizeURL(v.Video.URL, baseURL)
			cp.SubSection = append(cp.SubSection, &v)
		}
	}
	return cp
}

func externalizeUser(u *types.User, baseURL string) *types.User {
	if u == nil {
		return nil
	}
	cp := *u
	cp.Image = ExternalizeURL(cp.Image, baseURL)
	return &cp
}

type InstructorSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Image     string    `json:"image"`
}

// CourseSummary is the listing projection of a course.
type CourseSummary struct {
	ID                uuid.UUID          `json:"id"`
	CourseName        string             `json:"course_name"`
	CourseDescription string             `json:"course_description"`
	Price             float64            `json:"price"`
	Status            string             `json:"status"`
	Thumbnail         string             `json:"thumbnail"`
	Instructor        *InstructorSummary `json:"instructor,omitempty"`
	RatingCount       int                `json:"rating_count"`
	AverageRating     float64            `json:"average_rating"`
	StudentsEnrolled  int64              `json:"students_enrolled"`
	CreatedAt         time.Time          `json:"created_at"`
}

// ExternalizeCourses copies list with thumbnails and instructor images resolved.
func ExternalizeCourses(list []*CourseSummary, baseURL string) []*CourseSummary {
	out := make([]*CourseSummary, 0, len(list))
	for _, s := range list {
		if s == nil {
			continue
		}
		cp := *s
		cp.Thumbnail = ExternalizeURL(cp.Thumbnail, baseURL)
		if s.Instructor != nil {
			inst := *s.Instructor
			inst.Image = ExternalizeURL(inst.Image, baseURL)
			cp.Instructor = &inst
		}
		out = append(out, &cp)
	}
	return out
}

func summarize(course *types.Course, instructor *types.User, reviews []*types.RatingAndReview, enrolled int64) *CourseSummary {
	s := &CourseSummary{
		ID:                course.ID,
		CourseName:        course.CourseName,
		CourseDescription: course.CourseDescription,
		Price:             course.Price,
		Status:            course.Status,
		Thumbnail:         course.Thumbnail.URL,
		RatingCount:       len(reviews),
		StudentsEnrolled:  enrolled,
		CreatedAt:         course.CreatedAt,
	}
	if instructor != nil {
		s.Instructor = &InstructorSummary{
			ID:        instructor.ID,
			FirstName: instructor.FirstName,
			LastName:  instructor.LastName,
			Email:     instructor.Email,
			Image:     instructor.Image,
		}
	}
	if len(reviews) > 0 {
		var sum float64
		for _, r := range reviews {
			sum += r.Rating
		}
		s.AverageRating = sum / float64(len(reviews))
	}
	return s
}
