package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusAvailable  = "available"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	// StatusLocked only appears in aggregate views, never in a row.
	StatusLocked = "locked"
)

const (
	MinSelfAssessment = 1
	MaxSelfAssessment = 5
)

type Progress struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_student_mission,priority:1" json:"studentId"`
	MissionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_student_mission,priority:2;index" json:"missionId"`

	Status          string  `gorm:"column:status;not null;default:'in_progress'" json:"status"`
	Notes           *string `gorm:"column:notes" json:"notes"`
	BuildLink       *string `gorm:"column:build_link" json:"buildLink"`
	ReflectionNotes *string `gorm:"column:reflection_notes" json:"reflectionNotes"`
	SelfAssessment  *int    `gorm:"column:self_assessment" json:"selfAssessment"`

	StartedAt   *time.Time `gorm:"column:started_at" json:"startedAt"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Progress) TableName() string { return "progress" }

func (p *Progress) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// WithMission is a progress row joined with the catalogue fields the aggregate needs.
type WithMission struct {
	Progress
	WeekNumber int    `gorm:"column:week_number"`
	Category   string `gorm:"column:category"`
}
