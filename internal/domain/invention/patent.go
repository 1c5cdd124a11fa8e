package invention

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinPatentStage = 1
	MaxPatentStage = 4
)

// PatentIdea sits at Stage (1..4) of the patent pipeline.
type PatentIdea struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"studentId"`

	Title            string  `gorm:"column:title;not null" json:"title"`
	ProblemStatement *string `gorm:"column:problem_statement" json:"problemStatement"`
	CurrentSolutions *string `gorm:"column:current_solutions" json:"currentSolutions"`
	NewApproach      *string `gorm:"column:new_approach" json:"newApproach"`
	Advantages       *string `gorm:"column:advantages" json:"advantages"`
	ProvisionalDraft *string `gorm:"column:provisional_draft" json:"provisionalDraft"`

	Stage int `gorm:"column:stage;not null;default:1" json:"stage"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (PatentIdea) TableName() string { return "patent_idea" }

func (p *PatentIdea) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Stage == 0 {
		p.Stage = MinPatentStage
	}
	return nil
}
