package curriculum

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
)

func TestMissionRepo_UpsertKeepsIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewMissionRepo(db, testutil.Logger(t))

	first := []*types.Mission{testutil.MissionFixture(1), testutil.MissionFixture(2)}
	require.NoError(t, repo.UpsertByWeek(dbc, first))

	w1, err := repo.GetByWeek(dbc, 1)
	require.NoError(t, err)
	require.NotNil(t, w1)
	origID := w1.ID

	again := []*types.Mission{testutil.MissionFixture(1)}
	again[0].Title = "renamed"
	require.NoError(t, repo.UpsertByWeek(dbc, again))

	w1, err = repo.GetByWeek(dbc, 1)
	require.NoError(t, err)
	require.Equal(t, origID, w1.ID)
	require.Equal(t, "renamed", w1.Title)
	require.Equal(t, []string{"stretch"}, []string(w1.StretchGoals))

	n, err := repo.Count(dbc)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	missing, err := repo.GetByWeek(dbc, 53)
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestMissionRepo_Projections(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMissionRepo(db, testutil.Logger(t))

	// Inserted out of order; every listing comes back by week.
	testutil.SeedMission(t, ctx, tx, 3)
	testutil.SeedMission(t, ctx, tx, 1)
	testutil.SeedMission(t, ctx, tx, 2)

	all, err := repo.List(dbc)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 1, all[0].WeekNumber)

	sums, err := repo.ListSummaries(dbc)
	require.NoError(t, err)
	require.Len(t, sums, 3)
	require.Equal(t, []int{1, 2, 3}, []int{sums[0].WeekNumber, sums[1].WeekNumber, sums[2].WeekNumber})
	require.Equal(t, all[0].ID, sums[0].ID)

	refs, err := repo.ListRefs(dbc)
	require.NoError(t, err)
	require.Len(t, refs, 3)
	require.Equal(t, all[2].ID, refs[2].ID)
	require.Equal(t, "Infrastructure", refs[2].Category)
}

func TestCurriculumVersionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCurriculumVersionRepo(db, testutil.Logger(t))

	latest, err := repo.Latest(dbc)
	require.NoError(t, err)
	require.Nil(t, latest)

	require.NoError(t, repo.Create(dbc, &types.CurriculumVersion{Version: 1, Checksum: "abc", MissionCount: 52}))
	require.NoError(t, repo.Create(dbc, &types.CurriculumVersion{Version: 2, Checksum: "def", MissionCount: 52}))

	got, err := repo.GetByChecksum(dbc, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, 1, got.Version)

	latest, err = repo.Latest(dbc)
	require.NoError(t, err)
	require.Equal(t, "def", latest.Checksum)

	none, err := repo.GetByChecksum(dbc, "zzz")
	require.NoError(t, err)
	require.Nil(t, none)
}
