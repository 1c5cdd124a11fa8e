package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/atlas-backend/internal/http/handlers"
	httpMW "github.com/yungbote/atlas-backend/internal/http/middleware"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string
	Metrics     *observability.Metrics

	HealthHandler    *httpH.HealthHandler
	StudentHandler   *httpH.StudentHandler
	MissionHandler   *httpH.MissionHandler
	ProgressHandler  *httpH.ProgressHandler
	InventionHandler *httpH.InventionHandler
	PatentHandler    *httpH.PatentHandler
	MentorHandler    *httpH.MentorHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "atlas"
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(serviceName))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	api := r.Group("/api")
	{
		// Student
		if cfg.StudentHandler != nil {
			api.GET("/student", cfg.StudentHandler.GetCurrent)
			api.POST("/student", cfg.StudentHandler.Setup)
			api.GET("/students/:studentId", cfg.StudentHandler.Get)
		}

		// Missions
		if cfg.MissionHandler != nil {
			api.GET("/missions", cfg.MissionHandler.List)
			api.GET("/missions/:week", cfg.MissionHandler.Get)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			api.GET("/progress/:studentId", cfg.ProgressHandler.Aggregate)
			api.GET("/progress/:studentId/:week", cfg.ProgressHandler.Get)
			api.POST("/progress/:studentId/:week", cfg.ProgressHandler.Upsert)
			api.DELETE("/progress/:studentId/:week", cfg.ProgressHandler.Reset)
		}

		// Inventions
		if cfg.InventionHandler != nil {
			api.GET("/students/:studentId/inventions", cfg.InventionHandler.List)
			api.POST("/students/:studentId/inventions", cfg.InventionHandler.Create)
			api.GET("/inventions/:id", cfg.InventionHandler.Get)
			api.PUT("/inventions/:id", cfg.InventionHandler.Update)
			api.DELETE("/inventions/:id", cfg.InventionHandler.Delete)
		}

		// Patents
		if cfg.PatentHandler != nil {
			api.GET("/students/:studentId/patents", cfg.PatentHandler.List)
			api.POST("/students/:studentId/patents", cfg.PatentHandler.Create)
			api.GET("/patents/:id", cfg.PatentHandler.Get)
			api.PUT("/patents/:id", cfg.PatentHandler.Update)
			api.DELETE("/patents/:id", cfg.PatentHandler.Delete)
		}

		// Mentor
		if cfg.MentorHandler != nil {
			api.POST("/mentor/chat", cfg.MentorHandler.Chat)
			api.GET("/mentor/:studentId", cfg.MentorHandler.GetSession)
			api.DELETE("/mentor/:studentId", cfg.MentorHandler.ClearSessions)
		}
	}

	return r
}
