package student

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/atlas-backend/internal/data/repos/dberr"
	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
)

func TestStudentRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewStudentRepo(db, testutil.Logger(t))

	s, err := repo.Create(dbc, &types.Student{Name: "Ada"})
	require.NoError(t, err)
	require.Equal(t, "default", s.TenantKey)

	got, err := repo.GetByID(dbc, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "advanced", got.DifficultyLevel)
	require.Equal(t, 1, got.CurrentWeek)

	byKey, err := repo.GetByTenantKey(dbc, "default")
	require.NoError(t, err)
	require.Equal(t, s.ID, byKey.ID)

	locked, err := repo.LockByID(dbc, s.ID)
	require.NoError(t, err)
	require.Equal(t, s.ID, locked.ID)

	require.NoError(t, repo.UpdateFields(dbc, s.ID, map[string]interface{}{"current_week": 3}))
	got, err = repo.GetByID(dbc, s.ID)
	require.NoError(t, err)
	require.Equal(t, 3, got.CurrentWeek)

	require.NoError(t, repo.AdjustInventionCount(dbc, s.ID, 1))
	require.NoError(t, repo.AdjustInventionCount(dbc, s.ID, -1))
	require.NoError(t, repo.AdjustInventionCount(dbc, s.ID, -1))
	got, err = repo.GetByID(dbc, s.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.TotalInventions)
}

func TestStudentRepo_SingleTenantRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewStudentRepo(db, testutil.Logger(t))

	_, err := repo.Create(dbc, &types.Student{Name: "first"})
	require.NoError(t, err)

	sp := tx.SavePoint("dup")
	require.NoError(t, sp.Error)
	_, err = repo.Create(dbc, &types.Student{Name: "second"})
	require.Error(t, err)
	require.True(t, dberr.IsUniqueViolation(err))
	require.NoError(t, tx.RollbackTo("dup").Error)
}

func TestStudentRepo_MissingRow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewStudentRepo(db, testutil.Logger(t))

	got, err := repo.GetByTenantKey(dbc, "default")
	require.NoError(t, err)
	require.Nil(t, got)
}
