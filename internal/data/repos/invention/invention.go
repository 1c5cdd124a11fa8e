package invention

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type InventionRepo interface {
	Create(dbc dbctx.Context, inv *types.Invention) (*types.Invention, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Invention, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Invention, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) (int64, error)
}

type inventionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInventionRepo(db *gorm.DB, baseLog *logger.Logger) InventionRepo {
	return &inventionRepo{db: db, log: baseLog.With("repo", "InventionRepo")}
}

func (r *inventionRepo) Create(dbc dbctx.Context, inv *types.Invention) (*types.Invention, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *inventionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Invention, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var inv types.Invention
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *inventionRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID) ([]*types.Invention, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Invention{}
	if err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *inventionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Invention{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *inventionRepo) Delete(dbc dbctx.Context, id uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).Where("id = ?", id).Delete(&types.Invention{})
	return res.RowsAffected, res.Error
}
