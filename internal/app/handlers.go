package app

import (
	"context"

	"gorm.io/gorm"

	httpH "github.com/yungbote/studynotion-backend/internal/http/handlers"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type Handlers struct {
	Health     *httpH.HealthHandler
	Course     *httpH.CourseHandler
	Section    *httpH.SectionHandler
	SubSection *httpH.SubSectionHandler
}

func wireHandlers(log *logger.Logger, cfg Config, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(dbPinger(db)),
		Course:     httpH.NewCourseHandler(log, services.Course, cfg.PublicBaseURL),
		Section:    httpH.NewSectionHandler(log, services.Section, cfg.PublicBaseURL),
		SubSection: httpH.NewSubSectionHandler(log, services.SubSection, cfg.PublicBaseURL),
	}
}

func dbPinger(db *gorm.DB) httpH.Pinger {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
