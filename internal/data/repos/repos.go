package repos

import (
	"github.com/yungbote/atlas-backend/internal/data/repos/curriculum"
	"github.com/yungbote/atlas-backend/internal/data/repos/invention"
	"github.com/yungbote/atlas-backend/internal/data/repos/mentor"
	"github.com/yungbote/atlas-backend/internal/data/repos/progress"
	"github.com/yungbote/atlas-backend/internal/data/repos/student"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type StudentRepo = student.StudentRepo

type MissionRepo = curriculum.MissionRepo
type CurriculumVersionRepo = curriculum.CurriculumVersionRepo

type ProgressRepo = progress.ProgressRepo

type InventionRepo = invention.InventionRepo
type PatentIdeaRepo = invention.PatentIdeaRepo

type MentorSessionRepo = mentor.MentorSessionRepo

func NewStudentRepo(db *gorm.DB, log *logger.Logger) StudentRepo {
	return student.NewStudentRepo(db, log)
}

func NewMissionRepo(db *gorm.DB, log *logger.Logger) MissionRepo {
	return curriculum.NewMissionRepo(db, log)
}

func NewCurriculumVersionRepo(db *gorm.DB, log *logger.Logger) CurriculumVersionRepo {
	return curriculum.NewCurriculumVersionRepo(db, log)
}

func NewProgressRepo(db *gorm.DB, log *logger.Logger) ProgressRepo {
	return progress.NewProgressRepo(db, log)
}

func NewInventionRepo(db *gorm.DB, log *logger.Logger) InventionRepo {
	return invention.NewInventionRepo(db, log)
}

func NewPatentIdeaRepo(db *gorm.DB, log *logger.Logger) PatentIdeaRepo {
	return invention.NewPatentIdeaRepo(db, log)
}

func NewMentorSessionRepo(db *gorm.DB, log *logger.Logger) MentorSessionRepo {
	return mentor.NewMentorSessionRepo(db, log)
}
