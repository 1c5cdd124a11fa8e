package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

const (
	DefaultCatalogueTTL = time.Hour
	catalogueRefsKey    = "catalogue:mission_refs"
)

// CatalogueCache holds the week -> mission resolution table. A miss is
// reported as ok=false with a nil error.
type CatalogueCache interface {
	GetRefs(ctx context.Context) ([]types.MissionRef, bool, error)
	SetRefs(ctx context.Context, refs []types.MissionRef) error
	Invalidate(ctx context.Context) error
	Close() error
}

type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
	TTL       time.Duration
}

type catalogueCache struct {
	log *logger.Logger
	rdb *goredis.Client
	key string
	ttl time.Duration
}

func NewCatalogueCache(cfg Config, log *logger.Logger) (CatalogueCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCatalogueTTL
	}
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = "atlas"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &catalogueCache{
		log: log.With("client", "RedisCatalogueCache"),
		rdb: rdb,
		key: prefix + ":" + catalogueRefsKey,
		ttl: ttl,
	}, nil
}

func (c *catalogueCache) GetRefs(ctx context.Context) ([]types.MissionRef, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var refs []types.MissionRef
	if err := json.Unmarshal(raw, &refs); err != nil {
		// Treat a bad entry as a miss; the next fill overwrites it.
		c.log.Warn("Bad cached catalogue payload", "error", err)
		return nil, false, nil
	}
	return refs, true, nil
}

func (c *catalogueCache) SetRefs(ctx context.Context, refs []types.MissionRef) error {
	raw, err := json.Marshal(refs)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key, raw, c.ttl).Err()
}

func (c *catalogueCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, c.key).Err()
}

func (c *catalogueCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// memoryCatalogueCache is used when no redis is configured.
type memoryCatalogueCache struct {
	mu      sync.RWMutex
	refs    []types.MissionRef
	expires time.Time
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryCatalogueCache(ttl time.Duration) CatalogueCache {
	if ttl <= 0 {
		ttl = DefaultCatalogueTTL
	}
	return &memoryCatalogueCache{ttl: ttl, now: time.Now}
}

func (m *memoryCatalogueCache) GetRefs(context.Context) ([]types.MissionRef, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.refs == nil || !m.now().Before(m.expires) {
		return nil, false, nil
	}
	out := make([]types.MissionRef, len(m.refs))
	copy(out, m.refs)
	return out, true, nil
}

func (m *memoryCatalogueCache) SetRefs(_ context.Context, refs []types.MissionRef) error {
	cp := make([]types.MissionRef, len(refs))
	copy(cp, refs)
	m.mu.Lock()
	m.refs = cp
	m.expires = m.now().Add(m.ttl)
	m.mu.Unlock()
	return nil
}

func (m *memoryCatalogueCache) Invalidate(context.Context) error {
	m.mu.Lock()
	m.refs = nil
	m.mu.Unlock()
	return nil
}

func (m *memoryCatalogueCache) Close() error { return nil }
