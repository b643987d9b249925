package domain

import (
	"github.com/yungbote/studynotion-backend/internal/domain/jobs"
	"github.com/yungbote/studynotion-backend/internal/domain/learning"
	"github.com/yungbote/studynotion-backend/internal/domain/learning/joins"
	"github.com/yungbote/studynotion-backend/internal/domain/user"
)

const (
	CourseStatusDraft     = learning.CourseStatusDraft
	CourseStatusPublished = learning.CourseStatusPublished

	AccountAdmin      = user.AccountAdmin
	AccountInstructor = user.AccountInstructor
	AccountStudent    = user.AccountStudent

	FieldCourseContent     = joins.FieldCourseContent
	FieldSectionSubSection = joins.FieldSectionSubSection
	FieldUserCourses       = joins.FieldUserCourses
	FieldCategoryCourses   = joins.FieldCategoryCourses
	FieldStudentsEnrolled  = joins.FieldStudentsEnrolled
	FieldRatingAndReviews  = joins.FieldRatingAndReviews

	CascadeKindCourseDelete  = jobs.CascadeKindCourseDelete
	CascadeKindSectionDelete = jobs.CascadeKindSectionDelete
	CascadeRunRunning        = jobs.CascadeRunRunning
	CascadeRunSucceeded      = jobs.CascadeRunSucceeded
	CascadeRunPartial        = jobs.CascadeRunPartial
	CascadeStepDone          = jobs.CascadeStepDone
	CascadeStepFailed        = jobs.CascadeStepFailed
)

type User = user.User
type Profile = user.Profile

type Course = learning.Course
type Section = learning.Section
type SubSection = learning.SubSection
type Category = learning.Category
type RatingAndReview = learning.RatingAndReview
type CourseProgress = learning.CourseProgress
type MediaRef = learning.MediaRef

type LinkField = joins.LinkField
type RefLink = joins.RefLink

func LinkFields() []LinkField { return joins.LinkFields() }

type CascadeRun = jobs.CascadeRun
type CascadeStep = jobs.CascadeStep

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&Profile{},
		&Category{},
		&Course{},
		&Section{},
		&SubSection{},
		&RatingAndReview{},
		&CourseProgress{},
		&RefLink{},
		&CascadeRun{},
		&CascadeStep{},
	}
}
