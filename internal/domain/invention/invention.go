package invention

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusIdea      = "idea"
	StatusPrototype = "prototype"
	StatusTesting   = "testing"
	StatusRefined   = "refined"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusIdea, StatusPrototype, StatusTesting, StatusRefined:
		return true
	}
	return false
}

type Invention struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"studentId"`

	Title            string  `gorm:"column:title;not null" json:"title"`
	ProblemSolved    *string `gorm:"column:problem_solved" json:"problemSolved"`
	NoveltyDesc      *string `gorm:"column:novelty_desc" json:"noveltyDesc"`
	ArchitectureDesc *string `gorm:"column:architecture_desc" json:"architectureDesc"`
	PrototypeLink    *string `gorm:"column:prototype_link" json:"prototypeLink"`

	Status      string `gorm:"column:status;not null;default:'idea'" json:"status"`
	Patentable  bool   `gorm:"column:patentable;not null;default:false" json:"patentable"`
	WeekCreated *int   `gorm:"column:week_created" json:"weekCreated"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Invention) TableName() string { return "invention" }

func (i *Invention) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Status == "" {
		i.Status = StatusIdea
	}
	return nil
}
