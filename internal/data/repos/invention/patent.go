package invention

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type PatentIdeaRepo interface {
	Create(dbc dbctx.Context, p *types.PatentIdea) (*types.PatentIdea, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PatentIdea, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.PatentIdea, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type patentIdeaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPatentIdeaRepo(db *gorm.DB, baseLog *logger.Logger) PatentIdeaRepo {
	return &patentIdeaRepo{db: db, log: baseLog.With("repo", "PatentIdeaRepo")}
}

func (r *patentIdeaRepo) Create(dbc dbctx.Context, p *types.PatentIdea) (*types.PatentIdea, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *patentIdeaRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.PatentIdea, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var p types.PatentIdea
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patentIdeaRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.PatentIdea, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.PatentIdea{}
	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *patentIdeaRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.PatentIdea{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *patentIdeaRepo) Delete(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.PatentIdea{})
	return res.RowsAffected, res.Error
}
