package domain

import (
	"github.com/yungbote/atlas-backend/internal/domain/curriculum"
	"github.com/yungbote/atlas-backend/internal/domain/invention"
	"github.com/yungbote/atlas-backend/internal/domain/mentor"
	"github.com/yungbote/atlas-backend/internal/domain/progress"
	"github.com/yungbote/atlas-backend/internal/domain/student"
)

const (
	DefaultTenantKey = student.DefaultTenantKey

	TotalWeeks = curriculum.TotalWeeks

	DifficultyIntermediate = curriculum.DifficultyIntermediate
	DifficultyAdvanced     = curriculum.DifficultyAdvanced
	DifficultyLegendary    = curriculum.DifficultyLegendary

	ProgressAvailable  = progress.StatusAvailable
	ProgressInProgress = progress.StatusInProgress
	ProgressCompleted  = progress.StatusCompleted
	ProgressLocked     = progress.StatusLocked

	InventionIdea      = invention.StatusIdea
	InventionPrototype = invention.StatusPrototype
	InventionTesting   = invention.StatusTesting
	InventionRefined   = invention.StatusRefined

	MentorRoleUser      = mentor.RoleUser
	MentorRoleAssistant = mentor.RoleAssistant
	MentorRoleSystem    = mentor.RoleSystem
)

type Student = student.Student

type Mission = curriculum.Mission
type MissionSummary = curriculum.MissionSummary
type MissionRef = curriculum.MissionRef
type TermDefinition = curriculum.TermDefinition
type ToolRecommendation = curriculum.ToolRecommendation
type CurriculumVersion = curriculum.CurriculumVersion

type Progress = progress.Progress
type ProgressWithMission = progress.WithMission

type Invention = invention.Invention
type PatentIdea = invention.PatentIdea

type MentorSession = mentor.MentorSession
type MentorMessage = mentor.Message

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Student{},
		&Mission{},
		&CurriculumVersion{},
		&Progress{},
		&Invention{},
		&PatentIdea{},
		&MentorSession{},
	}
}
