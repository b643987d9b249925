package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studynotion-backend/internal/http"
	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, media MediaProvider) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		AuthMiddleware:    middleware.Auth,
		CourseHandler:     handlers.Course,
		SectionHandler:    handlers.Section,
		SubSectionHandler: handlers.SubSection,
		HealthHandler:     handlers.Health,
		Metrics:           observability.Current(),
		TracingEnabled:    cfg.OtelEnabled,
		ServiceName:       cfg.OtelServiceName,
		CORSOrigins:       cfg.AllowedOrigins(),
		MaxBodyBytes:      cfg.MaxBodyBytes(),
		MediaDir:          media.StaticDir,
		MediaPrefix:       media.StaticPrefix,
	})
}
