package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type Repos struct {
	Student           repos.StudentRepo
	Mission           repos.MissionRepo
	CurriculumVersion repos.CurriculumVersionRepo
	Progress          repos.ProgressRepo
	Invention         repos.InventionRepo
	PatentIdea        repos.PatentIdeaRepo
	MentorSession     repos.MentorSessionRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Student:           repos.NewStudentRepo(db, log),
		Mission:           repos.NewMissionRepo(db, log),
		CurriculumVersion: repos.NewCurriculumVersionRepo(db, log),
		Progress:          repos.NewProgressRepo(db, log),
		Invention:         repos.NewInventionRepo(db, log),
		PatentIdea:        repos.NewPatentIdeaRepo(db, log),
		MentorSession:     repos.NewMentorSessionRepo(db, log),
	}
}
