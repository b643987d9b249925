package joins

import (
	"time"

	"github.com/google/uuid"
)

// LinkField names an ordered reference list. Parent and child kinds are fixed per field.
type LinkField string

const (
	FieldCourseContent     LinkField = "course.course_content"
	FieldSectionSubSection LinkField = "section.sub_section"
	FieldUserCourses       LinkField = "user.courses"
	FieldCategoryCourses   LinkField = "category.courses"
	FieldStudentsEnrolled  LinkField = "course.students_enrolled"
	FieldRatingAndReviews  LinkField = "course.rating_and_reviews"
)

// LinkFields lists every known field in a stable order.
func LinkFields() []LinkField {
	return []LinkField{
		FieldCourseContent,
		FieldSectionSubSection,
		FieldUserCourses,
		FieldCategoryCourses,
		FieldStudentsEnrolled,
		FieldRatingAndReviews,
	}
}

func (f LinkField) Valid() bool {
	p, _ := f.Tables()
	return p != ""
}

// Tables returns the parent and child table names the field joins.
func (f LinkField) Tables() (parent, child string) {
	switch f {
	case FieldCourseContent:
		return "course", "section"
	case FieldSectionSubSection:
		return "section", "sub_section"
	case FieldUserCourses:
		return "user", "course"
	case FieldCategoryCourses:
		return "category", "course"
	case FieldStudentsEnrolled:
		return "course", "user"
	case FieldRatingAndReviews:
		return "course", "rating_and_review"
	default:
		return "", ""
	}
}

// RefLink is one element of an ordered reference list. The list for (Field, ParentID)
// is every row ordered by ID; appends are single inserts, so concurrent appends never
// overwrite each other.
type RefLink struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Field    LinkField `gorm:"column:field;type:varchar(64);not null;index:idx_ref_link_parent,priority:1;index:idx_ref_link_child,priority:1" json:"field"`
	ParentID uuid.UUID `gorm:"type:uuid;column:parent_id;not null;index:idx_ref_link_parent,priority:2" json:"parent_id"`
	ChildID  uuid.UUID `gorm:"type:uuid;column:child_id;not null;index:idx_ref_link_child,priority:2" json:"child_id"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (RefLink) TableName() string { return "ref_link" }
