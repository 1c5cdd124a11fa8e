package app

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/http"
	httpH "github.com/yungbote/atlas-backend/internal/http/handlers"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Student   *httpH.StudentHandler
	Mission   *httpH.MissionHandler
	Progress  *httpH.ProgressHandler
	Invention *httpH.InventionHandler
	Patent    *httpH.PatentHandler
	Mentor    *httpH.MentorHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(db),
		Student:   httpH.NewStudentHandler(log, services.Student),
		Mission:   httpH.NewMissionHandler(log, services.Curriculum),
		Progress:  httpH.NewProgressHandler(log, services.Progress),
		Invention: httpH.NewInventionHandler(log, services.Invention),
		Patent:    httpH.NewPatentHandler(log, services.Patent),
		Mentor:    httpH.NewMentorHandler(log, services.Mentor),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, metrics *observability.Metrics) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.CORSAllowOrigins,
		Metrics:          metrics,
		HealthHandler:    handlers.Health,
		StudentHandler:   handlers.Student,
		MissionHandler:   handlers.Mission,
		ProgressHandler:  handlers.Progress,
		InventionHandler: handlers.Invention,
		PatentHandler:    handlers.Patent,
		MentorHandler:    handlers.Mentor,
	})
}
