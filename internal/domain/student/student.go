package student

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultTenantKey is the only tenant key a deployment ever writes. The unique
// index on tenant_key is what keeps the student table at one row.
const DefaultTenantKey = "default"

const (
	MaxEngineeringScore  = 100
	CompletionScoreBonus = 2
)

type Student struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TenantKey string    `gorm:"column:tenant_key;not null;uniqueIndex" json:"-"`

	Name            string `gorm:"column:name;not null" json:"name"`
	Age             *int   `gorm:"column:age" json:"age,omitempty"`
	DifficultyLevel string `gorm:"column:difficulty_level;not null;default:'advanced'" json:"difficultyLevel"`

	CurrentWeek       int `gorm:"column:current_week;not null;default:1" json:"currentWeek"`
	EngineeringScore  int `gorm:"column:engineering_score;not null;default:0" json:"engineeringScore"`
	TotalMissionsDone int `gorm:"column:total_missions_done;not null;default:0" json:"totalMissionsDone"`
	TotalInventions   int `gorm:"column:total_inventions;not null;default:0" json:"totalInventions"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Student) TableName() string { return "student" }

func (s *Student) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.TenantKey == "" {
		s.TenantKey = DefaultTenantKey
	}
	if s.CurrentWeek < 1 {
		s.CurrentWeek = 1
	}
	return nil
}
