package curriculum

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type CurriculumVersionRepo interface {
	Create(dbc dbctx.Context, v *types.CurriculumVersion) error
	GetByChecksum(dbc dbctx.Context, checksum string) (*types.CurriculumVersion, error)
	Latest(dbc dbctx.Context) (*types.CurriculumVersion, error)
}

type curriculumVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumVersionRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumVersionRepo {
	return &curriculumVersionRepo{db: db, log: baseLog.With("repo", "CurriculumVersionRepo")}
}

func (r *curriculumVersionRepo) Create(dbc dbctx.Context, v *types.CurriculumVersion) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if v.SeededAt.IsZero() {
		v.SeededAt = time.Now().UTC()
	}
	return transaction.WithContext(dbc.Ctx).Create(v).Error
}

func (r *curriculumVersionRepo) GetByChecksum(dbc dbctx.Context, checksum string) (*types.CurriculumVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var v types.CurriculumVersion
	err := transaction.WithContext(dbc.Ctx).Where("checksum = ?", checksum).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *curriculumVersionRepo) Latest(dbc dbctx.Context) (*types.CurriculumVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var v types.CurriculumVersion
	err := transaction.WithContext(dbc.Ctx).Order("seeded_at DESC").Order("id DESC").First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
