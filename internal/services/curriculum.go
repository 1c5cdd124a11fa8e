package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/clients/redis"
	"github.com/yungbote/atlas-backend/internal/curriculum/seed"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/platform/apierr"
)

type SeedResult struct {
	Version      int    `json:"version"`
	Checksum     string `json:"checksum"`
	MissionCount int    `json:"missionCount"`
	Skipped      bool   `json:"skipped"`
}

type CurriculumService interface {
	// Seed loads the catalogue into the mission table. Mission ids are kept
	// across reseeds; an unchanged catalogue is a no-op.
	Seed(ctx context.Context) (*SeedResult, error)
	ListMissions(ctx context.Context) ([]types.MissionSummary, error)
	GetMission(ctx context.Context, week int) (*types.Mission, error)
	// ResolveWeek maps a week number to its mission through the catalogue cache.
	ResolveWeek(ctx context.Context, week int) (*types.MissionRef, error)
	ListRefs(ctx context.Context) ([]types.MissionRef, error)
}

type curriculumService struct {
	db          *gorm.DB
	log         *logger.Logger
	missionRepo repos.MissionRepo
	versionRepo repos.CurriculumVersionRepo
	cache       redis.CatalogueCache
	load        func() (*seed.Catalogue, error)
	fill        singleflight.Group
}

func NewCurriculumService(
	db *gorm.DB,
	log *logger.Logger,
	missionRepo repos.MissionRepo,
	versionRepo repos.CurriculumVersionRepo,
	cache redis.CatalogueCache,
) CurriculumService {
	if cache == nil {
		cache = redis.NewMemoryCatalogueCache(redis.DefaultCatalogueTTL)
	}
	return &curriculumService{
		db:          db,
		log:         log.With("service", "CurriculumService"),
		missionRepo: missionRepo,
		versionRepo: versionRepo,
		cache:       cache,
		load:        seed.Load,
	}
}

func (cs *curriculumService) Seed(ctx context.Context) (*SeedResult, error) {
	cat, err := cs.load()
	if err != nil {
		return nil, fmt.Errorf("load catalogue: %w", err)
	}
	res := &SeedResult{Version: cat.Version, Checksum: cat.Checksum, MissionCount: len(cat.Missions)}

	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		prior, err := cs.versionRepo.GetByChecksum(dbc, cat.Checksum)
		if err != nil {
			return err
		}
		if prior != nil {
			n, err := cs.missionRepo.Count(dbc)
			if err != nil {
				return err
			}
			if int(n) == len(cat.Missions) {
				res.Skipped = true
				return nil
			}
		}
		if err := cs.missionRepo.UpsertByWeek(dbc, cat.ToMissions()); err != nil {
			return fmt.Errorf("upsert missions: %w", err)
		}
		if prior != nil {
			return nil
		}
		return cs.versionRepo.Create(dbc, &types.CurriculumVersion{
			Version:      cat.Version,
			Checksum:     cat.Checksum,
			MissionCount: len(cat.Missions),
		})
	})
	if err != nil {
		cs.log.Error("Seed failed", "error", err)
		return nil, err
	}
	if res.Skipped {
		cs.log.Info("Catalogue unchanged, seed skipped", "checksum", cat.Checksum)
		return res, nil
	}
	if err := cs.cache.Invalidate(ctx); err != nil {
		cs.log.Warn("Catalogue cache invalidate failed", "error", err)
	}
	cs.log.Info("Catalogue seeded", "version", cat.Version, "missions", len(cat.Missions), "checksum", cat.Checksum)
	return res, nil
}

func (cs *curriculumService) ListMissions(ctx context.Context) ([]types.MissionSummary, error) {
	out, err := cs.missionRepo.ListSummaries(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	return out, nil
}

func (cs *curriculumService) GetMission(ctx context.Context, week int) (*types.Mission, error) {
	m, err := cs.missionRepo.GetByWeek(dbctx.Context{Ctx: ctx}, week)
	if err != nil {
		return nil, fmt.Errorf("load mission: %w", err)
	}
	if m == nil {
		return nil, apierr.NotFound("mission_not_found", "week %d", week)
	}
	return m, nil
}

func (cs *curriculumService) ResolveWeek(ctx context.Context, week int) (*types.MissionRef, error) {
	refs, err := cs.ListRefs(ctx)
	if err != nil {
		return nil, err
	}
	for i := range refs {
		if refs[i].WeekNumber == week {
			ref := refs[i]
			return &ref, nil
		}
	}
	return nil, apierr.NotFound("mission_not_found", "week %d", week)
}

// ListRefs returns every mission reference ordered by week. Concurrent misses
// share a single database read.
func (cs *curriculumService) ListRefs(ctx context.Context) ([]types.MissionRef, error) {
	refs, ok, err := cs.cache.GetRefs(ctx)
	if err != nil {
		cs.log.Warn("Catalogue cache read failed", "error", err)
	}
	observability.Current().IncCatalogueLookup(ok)
	if ok {
		return refs, nil
	}

	// The fill is shared by every waiter, so it must not die with the first
	// caller's request.
	fillCtx := context.WithoutCancel(ctx)
	v, err, _ := cs.fill.Do("refs", func() (interface{}, error) {
		refs, err := cs.missionRepo.ListRefs(dbctx.Context{Ctx: fillCtx})
		if err != nil {
			return nil, err
		}
		// An unseeded table is not cached so the first seed is seen immediately.
		if len(refs) > 0 {
			if err := cs.cache.SetRefs(fillCtx, refs); err != nil {
				cs.log.Warn("Catalogue cache write failed", "error", err)
			}
		}
		return refs, nil
	})
	if err != nil {
		return nil, fmt.Errorf("load mission refs: %w", err)
	}
	return v.([]types.MissionRef), nil
}
