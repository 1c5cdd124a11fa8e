package curriculum

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const TotalWeeks = 52

const (
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyLegendary    = "legendary"
)

func ValidDifficulty(d string) bool {
	switch d {
	case DifficultyIntermediate, DifficultyAdvanced, DifficultyLegendary:
		return true
	}
	return false
}

type TermDefinition struct {
	Term       string `json:"term" yaml:"term"`
	Definition string `json:"definition" yaml:"definition"`
}

type ToolRecommendation struct {
	Tool   string `json:"tool" yaml:"tool"`
	Reason string `json:"reason" yaml:"reason"`
}

// Mission is a catalogue entry. Rows are written by the seeding step only.
type Mission struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	WeekNumber int       `gorm:"column:week_number;not null;uniqueIndex" json:"weekNumber"`

	Title            string `gorm:"column:title;not null" json:"title"`
	Objective        string `gorm:"column:objective;not null" json:"objective"`
	CoreBuildProject string `gorm:"column:core_build_project;not null" json:"coreBuildProject"`

	StretchGoals         datatypes.JSONSlice[string]             `gorm:"column:stretch_goals" json:"stretchGoals"`
	ArchitectureConcepts datatypes.JSONSlice[string]             `gorm:"column:architecture_concepts" json:"architectureConcepts"`
	Terminology          datatypes.JSONSlice[TermDefinition]     `gorm:"column:terminology" json:"terminology"`
	ToolRecommendations  datatypes.JSONSlice[ToolRecommendation] `gorm:"column:tool_recommendations" json:"toolRecommendations"`

	RealWorldParallel  string `gorm:"column:real_world_parallel" json:"realWorldParallel"`
	TeachingChallenge  string `gorm:"column:teaching_challenge" json:"teachingChallenge"`
	InventionChallenge string `gorm:"column:invention_challenge" json:"inventionChallenge"`

	Category       string `gorm:"column:category;not null;index" json:"category"`
	Difficulty     string `gorm:"column:difficulty;not null" json:"difficulty"`
	EstimatedHours int    `gorm:"column:estimated_hours;not null" json:"estimatedHours"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Mission) TableName() string { return "mission" }

func (m *Mission) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// MissionSummary is the list projection served by the catalogue endpoint.
type MissionSummary struct {
	ID             uuid.UUID `json:"id"`
	WeekNumber     int       `json:"weekNumber"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Difficulty     string    `json:"difficulty"`
	EstimatedHours int       `json:"estimatedHours"`
}

// MissionRef is the minimal resolution of a week number, small enough to cache.
type MissionRef struct {
	ID         uuid.UUID `json:"id"`
	WeekNumber int       `json:"week"`
	Category   string    `json:"category"`
}
