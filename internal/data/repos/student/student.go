package student

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type StudentRepo interface {
	Create(dbc dbctx.Context, s *types.Student) (*types.Student, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Student, error)
	GetByTenantKey(dbc dbctx.Context, tenantKey string) (*types.Student, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Student, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	AdjustInventionCount(dbc dbctx.Context, id uuid.UUID, delta int) error
}

type studentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudentRepo(db *gorm.DB, baseLog *logger.Logger) StudentRepo {
	return &studentRepo{db: db, log: baseLog.With("repo", "StudentRepo")}
}

func (r *studentRepo) Create(dbc dbctx.Context, s *types.Student) (*types.Student, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *studentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Student, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var s types.Student
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) GetByTenantKey(dbc dbctx.Context, tenantKey string) (*types.Student, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var s types.Student
	err := transaction.WithContext(dbc.Ctx).Where("tenant_key = ?", tenantKey).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LockByID reads the row FOR UPDATE. Callers must pass a transaction.
func (r *studentRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.Student, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var s types.Student
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *studentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Student{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// AdjustInventionCount applies delta in a single statement and never lets the count go negative.
func (r *studentRepo) AdjustInventionCount(dbc dbctx.Context, id uuid.UUID, delta int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || delta == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Student{}).
		Where("id = ?", id).
		Update("total_inventions", gorm.Expr(
			"CASE WHEN total_inventions + ? < 0 THEN 0 ELSE total_inventions + ? END", delta, delta,
		)).Error
}
