package testutil

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/atlas-backend/internal/domain"
)

var fixtureCategories = []string{"Infrastructure", "OS", "Distributed", "AI", "Game", "Architecture", "Innovation", "Capstone"}

func SeedStudent(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Student {
	tb.Helper()
	s := &types.Student{
		Name:            name,
		DifficultyLevel: "advanced",
		CurrentWeek:     1,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed student: %v", err)
	}
	return s
}

// MissionFixture builds a mission for week without writing it.
func MissionFixture(week int) *types.Mission {
	return &types.Mission{
		WeekNumber:           week,
		Title:                fmt.Sprintf("Week %d mission", week),
		Objective:            "objective",
		CoreBuildProject:     "build",
		StretchGoals:         datatypes.NewJSONSlice([]string{"stretch"}),
		ArchitectureConcepts: datatypes.NewJSONSlice([]string{"concept"}),
		Terminology:          datatypes.NewJSONSlice([]types.TermDefinition{{Term: "t", Definition: "d"}}),
		ToolRecommendations:  datatypes.NewJSONSlice([]types.ToolRecommendation{{Tool: "go", Reason: "r"}}),
		Category:             fixtureCategories[((week-1)/7)%len(fixtureCategories)],
		Difficulty:           types.DifficultyAdvanced,
		EstimatedHours:       10,
	}
}

func SeedMission(tb testing.TB, ctx context.Context, tx *gorm.DB, week int) *types.Mission {
	tb.Helper()
	m := MissionFixture(week)
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed mission %d: %v", week, err)
	}
	return m
}

// SeedMissions writes weeks 1..n and returns them in week order.
func SeedMissions(tb testing.TB, ctx context.Context, tx *gorm.DB, n int) []*types.Mission {
	tb.Helper()
	out := make([]*types.Mission, 0, n)
	for w := 1; w <= n; w++ {
		out = append(out, SeedMission(tb, ctx, tx, w))
	}
	return out
}

func SeedProgress(tb testing.TB, ctx context.Context, tx *gorm.DB, p *types.Progress) *types.Progress {
	tb.Helper()
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed progress: %v", err)
	}
	return p
}
