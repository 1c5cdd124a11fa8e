package progress

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
)

func TestProgressRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewProgressRepo(db, testutil.Logger(t))

	s := testutil.SeedStudent(t, ctx, tx, "Ada")
	ms := testutil.SeedMissions(t, ctx, tx, 3)

	none, err := repo.Get(dbc, s.ID, ms[0].ID)
	require.NoError(t, err)
	require.Nil(t, none)

	now := time.Now().UTC()
	p, err := repo.Create(dbc, &types.Progress{
		StudentID: s.ID,
		MissionID: ms[2].ID,
		Status:    types.ProgressInProgress,
		StartedAt: &now,
	})
	require.NoError(t, err)
	_, err = repo.Create(dbc, &types.Progress{StudentID: s.ID, MissionID: ms[0].ID, Status: types.ProgressCompleted})
	require.NoError(t, err)

	locked, err := repo.Lock(dbc, s.ID, ms[2].ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, locked.ID)

	require.NoError(t, repo.UpdateFields(dbc, p.ID, map[string]interface{}{"notes": "wip", "self_assessment": 4}))
	got, err := repo.Get(dbc, s.ID, ms[2].ID)
	require.NoError(t, err)
	require.NotNil(t, got.Notes)
	require.Equal(t, "wip", *got.Notes)
	require.Equal(t, 4, *got.SelfAssessment)
	require.NotNil(t, got.StartedAt)

	rows, err := repo.ListWithMission(dbc, s.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, 1, rows[0].WeekNumber)
	require.Equal(t, types.ProgressCompleted, rows[0].Status)
	require.Equal(t, 3, rows[1].WeekNumber)
	require.Equal(t, ms[2].Category, rows[1].Category)

	n, err := repo.Delete(dbc, s.ID, ms[2].ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	n, err = repo.Delete(dbc, s.ID, ms[2].ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}
