package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

func sampleRefs() []types.MissionRef {
	return []types.MissionRef{
		{ID: uuid.New(), WeekNumber: 1, Category: "AI"},
		{ID: uuid.New(), WeekNumber: 2, Category: "OS"},
	}
}

func exerciseCache(t *testing.T, c CatalogueCache) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.GetRefs(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	refs := sampleRefs()
	require.NoError(t, c.SetRefs(ctx, refs))

	got, ok, err := c.GetRefs(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, refs, got)

	require.NoError(t, c.Invalidate(ctx))
	_, ok, err = c.GetRefs(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryCatalogueCache(t *testing.T) {
	exerciseCache(t, NewMemoryCatalogueCache(time.Minute))
}

func TestMemoryCatalogueCache_Expires(t *testing.T) {
	c := NewMemoryCatalogueCache(time.Minute).(*memoryCatalogueCache)
	now := time.Now()
	c.now = func() time.Time { return now }

	require.NoError(t, c.SetRefs(context.Background(), sampleRefs()))
	_, ok, _ := c.GetRefs(context.Background())
	require.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.GetRefs(context.Background())
	require.False(t, ok)
}

func TestRedisCatalogueCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	c, err := NewCatalogueCache(Config{Addr: addr, KeyPrefix: "atlas-test-" + uuid.NewString()}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	exerciseCache(t, c)
}
