package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studynotion-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studynotion-backend/internal/http/middleware"
	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/ctxutil"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	CourseHandler     *httpH.CourseHandler
	SectionHandler    *httpH.SectionHandler
	SubSectionHandler *httpH.SubSectionHandler
	HealthHandler     *httpH.HealthHandler

	Metrics        *observability.Metrics
	TracingEnabled bool
	ServiceName    string
	CORSOrigins    []string
	MaxBodyBytes   int64

	// MediaDir is served under MediaPrefix when set (local media mode).
	MediaDir    string
	MediaPrefix string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics, cfg.MediaPrefix))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.LimitRequestBody(cfg.MaxBodyBytes))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}
	if cfg.MediaDir != "" && cfg.MediaPrefix != "" {
		r.Static(cfg.MediaPrefix, cfg.MediaDir)
	}

	api := r.Group("/api/v1")
	course := api.Group("/course")

	am := cfg.AuthMiddleware
	if am == nil {
		return r
	}
	requireAuth := am.RequireAuth()
	instructor := am.RequireRole(ctxutil.RoleInstructor)

	if h := cfg.CourseHandler; h != nil {
		course.GET("/getAllCourses", h.GetAllCourses)
		course.GET("/getInstructorCourses", requireAuth, instructor, h.GetInstructorCourses)
		course.POST("/createCourse", requireAuth, instructor, h.CreateCourse)
		course.POST("/editCourse", requireAuth, h.EditCourse)
		course.DELETE("/deleteCourse", requireAuth, h.DeleteCourse)
		course.GET("/:id", am.OptionalAuth(), h.GetCourseDetails)
		course.GET("/:id/full", requireAuth, h.GetFullCourseDetails)
	}

	// Ownership of the parent course is checked by the services.
	if h := cfg.SectionHandler; h != nil {
		course.POST("/addSection", requireAuth, h.AddSection)
		course.POST("/updateSection", requireAuth, h.UpdateSection)
		course.DELETE("/deleteSection", requireAuth, h.DeleteSection)
	}
	if h := cfg.SubSectionHandler; h != nil {
		course.POST("/addSubSection", requireAuth, h.AddSubSection)
		course.POST("/updateSubSection", requireAuth, h.UpdateSubSection)
		course.DELETE("/deleteSubSection", requireAuth, h.DeleteSubSection)
	}

	return r
}
