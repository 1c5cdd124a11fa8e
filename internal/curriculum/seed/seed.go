// Package seed loads the embedded mission catalogue.
package seed

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"

	types "github.com/yungbote/atlas-backend/internal/domain"
)

//go:embed missions.yaml
var missionsYAML []byte

type Entry struct {
	Week                 int                        `yaml:"week"`
	Title                string                     `yaml:"title"`
	Category             string                     `yaml:"category"`
	Difficulty           string                     `yaml:"difficulty"`
	EstimatedHours       int                        `yaml:"estimated_hours"`
	Objective            string                     `yaml:"objective"`
	CoreBuildProject     string                     `yaml:"core_build_project"`
	StretchGoals         []string                   `yaml:"stretch_goals"`
	ArchitectureConcepts []string                   `yaml:"architecture_concepts"`
	Terminology          []types.TermDefinition     `yaml:"terminology"`
	RealWorldParallel    string                     `yaml:"real_world_parallel"`
	TeachingChallenge    string                     `yaml:"teaching_challenge"`
	InventionChallenge   string                     `yaml:"invention_challenge"`
	ToolRecommendations  []types.ToolRecommendation `yaml:"tool_recommendations"`
}

type Catalogue struct {
	Version  int     `yaml:"version"`
	Missions []Entry `yaml:"missions"`

	// Checksum is the hex sha256 of the source document.
	Checksum string `yaml:"-"`
}

// Load parses and validates the embedded catalogue.
func Load() (*Catalogue, error) {
	return Parse(missionsYAML)
}

func Parse(raw []byte) (*Catalogue, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var c Catalogue
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("decode catalogue: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	sum := sha256.Sum256(raw)
	c.Checksum = hex.EncodeToString(sum[:])
	return &c, nil
}

// Validate requires exactly one entry per week 1..TotalWeeks.
func (c *Catalogue) Validate() error {
	if len(c.Missions) != types.TotalWeeks {
		return fmt.Errorf("catalogue has %d missions, want %d", len(c.Missions), types.TotalWeeks)
	}
	seen := make(map[int]bool, len(c.Missions))
	for i, m := range c.Missions {
		if m.Week < 1 || m.Week > types.TotalWeeks {
			return fmt.Errorf("mission %d: week %d out of range", i, m.Week)
		}
		if seen[m.Week] {
			return fmt.Errorf("mission %d: duplicate week %d", i, m.Week)
		}
		seen[m.Week] = true
		if strings.TrimSpace(m.Title) == "" {
			return fmt.Errorf("week %d: missing title", m.Week)
		}
		if strings.TrimSpace(m.Category) == "" {
			return fmt.Errorf("week %d: missing category", m.Week)
		}
		if !validDifficulty(m.Difficulty) {
			return fmt.Errorf("week %d: invalid difficulty %q", m.Week, m.Difficulty)
		}
		if m.EstimatedHours <= 0 {
			return fmt.Errorf("week %d: estimated_hours must be positive", m.Week)
		}
	}
	return nil
}

func validDifficulty(d string) bool {
	switch d {
	case types.DifficultyIntermediate, types.DifficultyAdvanced, types.DifficultyLegendary:
		return true
	}
	return false
}

// ToMissions converts entries into rows ready for upsert.
func (c *Catalogue) ToMissions() []*types.Mission {
	out := make([]*types.Mission, 0, len(c.Missions))
	for _, e := range c.Missions {
		out = append(out, &types.Mission{
			WeekNumber:           e.Week,
			Title:                e.Title,
			Objective:            e.Objective,
			CoreBuildProject:     e.CoreBuildProject,
			StretchGoals:         datatypes.NewJSONSlice(nonNil(e.StretchGoals)),
			ArchitectureConcepts: datatypes.NewJSONSlice(nonNil(e.ArchitectureConcepts)),
			Terminology:          datatypes.NewJSONSlice(nonNil(e.Terminology)),
			ToolRecommendations:  datatypes.NewJSONSlice(nonNil(e.ToolRecommendations)),
			RealWorldParallel:    e.RealWorldParallel,
			TeachingChallenge:    e.TeachingChallenge,
			InventionChallenge:   e.InventionChallenge,
			Category:             e.Category,
			Difficulty:           e.Difficulty,
			EstimatedHours:       e.EstimatedHours,
		})
	}
	return out
}

func nonNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
