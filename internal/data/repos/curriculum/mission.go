package curriculum

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type MissionRepo interface {
	UpsertByWeek(dbc dbctx.Context, missions []*types.Mission) error
	GetByWeek(dbc dbctx.Context, week int) (*types.Mission, error)
	List(dbc dbctx.Context) ([]*types.Mission, error)
	ListSummaries(dbc dbctx.Context) ([]types.MissionSummary, error)
	ListRefs(dbc dbctx.Context) ([]types.MissionRef, error)
	Count(dbc dbctx.Context) (int64, error)
}

type missionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMissionRepo(db *gorm.DB, baseLog *logger.Logger) MissionRepo {
	return &missionRepo{db: db, log: baseLog.With("repo", "MissionRepo")}
}

// mutableColumns are rewritten on reseed. id and week_number never change, so
// progress rows keep pointing at the same mission.
var mutableColumns = []string{
	"title",
	"objective",
	"core_build_project",
	"stretch_goals",
	"architecture_concepts",
	"terminology",
	"tool_recommendations",
	"real_world_parallel",
	"teaching_challenge",
	"invention_challenge",
	"category",
	"difficulty",
	"estimated_hours",
	"updated_at",
}

func (r *missionRepo) UpsertByWeek(dbc dbctx.Context, missions []*types.Mission) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(missions) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "week_number"}},
			DoUpdates: clause.AssignmentColumns(mutableColumns),
		}).
		Create(&missions).Error
}

func (r *missionRepo) GetByWeek(dbc dbctx.Context, week int) (*types.Mission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var m types.Mission
	err := transaction.WithContext(dbc.Ctx).Where("week_number = ?", week).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *missionRepo) List(dbc dbctx.Context) ([]*types.Mission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Mission
	if err := transaction.WithContext(dbc.Ctx).
		Order("week_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *missionRepo) ListSummaries(dbc dbctx.Context) ([]types.MissionSummary, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []types.MissionSummary{}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Mission{}).
		Select("id", "week_number", "title", "category", "difficulty", "estimated_hours").
		Order("week_number ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *missionRepo) ListRefs(dbc dbctx.Context) ([]types.MissionRef, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []types.MissionRef{}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Mission{}).
		Select("id", "week_number", "category").
		Order("week_number ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *missionRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Mission{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
