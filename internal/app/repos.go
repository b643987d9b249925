package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/repos"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type Repos struct {
	User            repos.UserRepo
	Profile         repos.ProfileRepo
	Course          repos.CourseRepo
	Section         repos.SectionRepo
	SubSection      repos.SubSectionRepo
	Category        repos.CategoryRepo
	CourseProgress  repos.CourseProgressRepo
	RatingAndReview repos.RatingAndReviewRepo
	RefLink         repos.RefLinkRepo
	CascadeRun      repos.CascadeRunRepo
	CascadeStep     repos.CascadeStepRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		Profile:         repos.NewProfileRepo(db, log),
		Course:          repos.NewCourseRepo(db, log),
		Section:         repos.NewSectionRepo(db, log),
		SubSection:      repos.NewSubSectionRepo(db, log),
		Category:        repos.NewCategoryRepo(db, log),
		CourseProgress:  repos.NewCourseProgressRepo(db, log),
		RatingAndReview: repos.NewRatingAndReviewRepo(db, log),
		RefLink:         repos.NewRefLinkRepo(db, log),
		CascadeRun:      repos.NewCascadeRunRepo(db, log),
		CascadeStep:     repos.NewCascadeStepRepo(db, log),
	}
}
