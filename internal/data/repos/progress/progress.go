package progress

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type ProgressRepo interface {
	Create(dbc dbctx.Context, p *types.Progress) (*types.Progress, error)
	Get(dbc dbctx.Context, studentID, missionID uuid.UUID) (*types.Progress, error)
	Lock(dbc dbctx.Context, studentID, missionID uuid.UUID) (*types.Progress, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, studentID, missionID uuid.UUID) (int64, error)
	ListWithMission(dbc dbctx.Context, studentID uuid.UUID) ([]*types.ProgressWithMission, error)
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{db: db, log: baseLog.With("repo", "ProgressRepo")}
}

func (r *progressRepo) Create(dbc dbctx.Context, p *types.Progress) (*types.Progress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *progressRepo) Get(dbc dbctx.Context, studentID, missionID uuid.UUID) (*types.Progress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.first(transaction.WithContext(dbc.Ctx), studentID, missionID)
}

// Lock reads the (student, mission) row FOR UPDATE. A missing row is not locked;
// the unique index catches a concurrent insert instead.
func (r *progressRepo) Lock(dbc dbctx.Context, studentID, missionID uuid.UUID) (*types.Progress, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.first(transaction.WithContext(dbc.Ctx).Clauses(clause.Locking{Strength: "UPDATE"}), studentID, missionID)
}

func (r *progressRepo) first(q *gorm.DB, studentID, missionID uuid.UUID) (*types.Progress, error) {
	var p types.Progress
	err := q.Where("student_id = ? AND mission_id = ?", studentID, missionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Progress{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *progressRepo) Delete(dbc dbctx.Context, studentID, missionID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("student_id = ? AND mission_id = ?", studentID, missionID).
		Delete(&types.Progress{})
	return res.RowsAffected, res.Error
}

func (r *progressRepo) ListWithMission(dbc dbctx.Context, studentID uuid.UUID) ([]*types.ProgressWithMission, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ProgressWithMission
	if err := transaction.WithContext(dbc.Ctx).
		Table("progress").
		Select("progress.*, mission.week_number AS week_number, mission.category AS category").
		Joins("JOIN mission ON mission.id = progress.mission_id").
		Where("progress.student_id = ?", studentID).
		Order("mission.week_number ASC").
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
