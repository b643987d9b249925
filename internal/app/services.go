package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/aggregates"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
	"github.com/yungbote/studynotion-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Course     services.CourseService
	Section    services.SectionService
	SubSection services.SubSectionService
	Ledger     services.CascadeLedger
	Resolver   aggregates.CourseTreeResolver
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	resolver := aggregates.NewCourseTreeResolver(aggregates.CourseTreeDeps{
		Log:         log,
		Courses:     repos.Course,
		Users:       repos.User,
		Profiles:    repos.Profile,
		Categories:  repos.Category,
		Sections:    repos.Section,
		SubSections: repos.SubSection,
		Reviews:     repos.RatingAndReview,
		Links:       repos.RefLink,
	})
	ledger := services.NewCascadeLedger(log, aggregates.NewGormTxRunner(db), repos.CascadeRun, repos.CascadeStep)

	deps := services.HierarchyDeps{
		DB:          db,
		Log:         log,
		Courses:     repos.Course,
		Sections:    repos.Section,
		SubSections: repos.SubSection,
		Categories:  repos.Category,
		Users:       repos.User,
		Progress:    repos.CourseProgress,
		Links:       repos.RefLink,
		Resolver:    resolver,
		Media:       clients.Media.Store,
		Cache:       clients.CourseCache,
		Ledger:      ledger,
		DraftGate:   cfg.DraftGateEnabled,
	}

	return Services{
		Auth:       services.NewAuthService(log, cfg.JWTSecretKey),
		Course:     services.NewCourseService(deps),
		Section:    services.NewSectionService(deps),
		SubSection: services.NewSubSectionService(deps),
		Ledger:     ledger,
		Resolver:   resolver,
	}
}
