package mentor

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
)

func TestMentorSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMentorSessionRepo(db, testutil.Logger(t))
	s := testutil.SeedStudent(t, ctx, tx, "Ada")

	old, err := repo.Create(dbc, &types.MentorSession{
		StudentID: s.ID,
		UpdatedAt: time.Now().UTC().Add(-time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, "general", old.Context)
	require.JSONEq(t, "[]", string(old.Messages))

	fresh, err := repo.Create(dbc, &types.MentorSession{StudentID: s.ID})
	require.NoError(t, err)

	latest, err := repo.LatestByStudent(dbc, s.ID)
	require.NoError(t, err)
	require.Equal(t, fresh.ID, latest.ID)

	locked, err := repo.LockByID(dbc, old.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, locked.Version)

	ok, err := repo.UpdateTranscript(dbc, old.ID, 0, datatypes.JSON(`[{"role":"user","content":"hi"}]`))
	require.NoError(t, err)
	require.True(t, ok)

	// Stale version loses.
	ok, err = repo.UpdateTranscript(dbc, old.ID, 0, datatypes.JSON(`[]`))
	require.NoError(t, err)
	require.False(t, ok)

	got, err := repo.GetByID(dbc, old.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.Version)
	require.JSONEq(t, `[{"role":"user","content":"hi"}]`, string(got.Messages))

	// The updated session is now the most recent.
	latest, err = repo.LatestByStudent(dbc, s.ID)
	require.NoError(t, err)
	require.Equal(t, old.ID, latest.ID)

	missing, err := repo.GetByID(dbc, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	n, err := repo.DeleteByStudent(dbc, s.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	latest, err = repo.LatestByStudent(dbc, s.ID)
	require.NoError(t, err)
	require.Nil(t, latest)
}
