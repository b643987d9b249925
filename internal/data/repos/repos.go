package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos/jobs"
	"github.com/yungbote/studynotion-backend/internal/data/repos/learning"
	"github.com/yungbote/studynotion-backend/internal/data/repos/links"
	"github.com/yungbote/studynotion-backend/internal/data/repos/user"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type ProfileRepo = user.ProfileRepo

type CourseRepo = learning.CourseRepo
type CourseFilter = learning.CourseFilter
type SectionRepo = learning.SectionRepo
type SubSectionRepo = learning.SubSectionRepo
type CategoryRepo = learning.CategoryRepo
type CourseProgressRepo = learning.CourseProgressRepo
type RatingAndReviewRepo = learning.RatingAndReviewRepo

type RefLinkRepo = links.RefLinkRepo

type CascadeRunRepo = jobs.CascadeRunRepo
type CascadeStepRepo = jobs.CascadeStepRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, baseLog)
}

func NewCourseRepo(db *gorm.DB, baseLog *logger.Logger) CourseRepo {
	return learning.NewCourseRepo(db, baseLog)
}
func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return learning.NewSectionRepo(db, baseLog)
}
func NewSubSectionRepo(db *gorm.DB, baseLog *logger.Logger) SubSectionRepo {
	return learning.NewSubSectionRepo(db, baseLog)
}
func NewCategoryRepo(db *gorm.DB, baseLog *logger.Logger) CategoryRepo {
	return learning.NewCategoryRepo(db, baseLog)
}
func NewCourseProgressRepo(db *gorm.DB, baseLog *logger.Logger) CourseProgressRepo {
	return learning.NewCourseProgressRepo(db, baseLog)
}
func NewRatingAndReviewRepo(db *gorm.DB, baseLog *logger.Logger) RatingAndReviewRepo {
	return learning.NewRatingAndReviewRepo(db, baseLog)
}

func NewRefLinkRepo(db *gorm.DB, baseLog *logger.Logger) RefLinkRepo {
	return links.NewRefLinkRepo(db, baseLog)
}

func NewCascadeRunRepo(db *gorm.DB, baseLog *logger.Logger) CascadeRunRepo {
	return jobs.NewCascadeRunRepo(db, baseLog)
}
func NewCascadeStepRepo(db *gorm.DB, baseLog *logger.Logger) CascadeStepRepo {
	return jobs.NewCascadeStepRepo(db, baseLog)
}
