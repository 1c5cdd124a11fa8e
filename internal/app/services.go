package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/mentor/prompts"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/services"
)

type Services struct {
	Student    services.StudentService
	Curriculum services.CurriculumService
	Progress   services.ProgressService
	Invention  services.InventionService
	Patent     services.PatentService
	Mentor     services.MentorService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	fallback, err := prompts.LoadFallback()
	if err != nil {
		return Services{}, fmt.Errorf("load mentor fallback table: %w", err)
	}

	curriculum := services.NewCurriculumService(db, log, repos.Mission, repos.CurriculumVersion, clients.Catalogue)
	return Services{
		Student:    services.NewStudentService(db, log, repos.Student),
		Curriculum: curriculum,
		Progress:   services.NewProgressService(db, log, repos.Student, repos.Progress, curriculum),
		Invention:  services.NewInventionService(db, log, repos.Student, repos.Invention),
		Patent:     services.NewPatentService(db, log, repos.Student, repos.PatentIdea),
		Mentor: services.NewMentorService(db, log, cfg.Mentor(),
			repos.Student, repos.MentorSession, clients.Completion, fallback),
	}, nil
}
