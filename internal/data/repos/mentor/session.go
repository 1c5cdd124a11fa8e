package mentor

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type MentorSessionRepo interface {
	Create(dbc dbctx.Context, s *types.MentorSession) (*types.MentorSession, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MentorSession, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.MentorSession, error)
	LatestByStudent(dbc dbctx.Context, studentID uuid.UUID) (*types.MentorSession, error)
	UpdateTranscript(dbc dbctx.Context, id uuid.UUID, expectedVersion int64, messages datatypes.JSON) (bool, error)
	DeleteByStudent(dbc dbctx.Context, studentID uuid.UUID) (int64, error)
}

type mentorSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMentorSessionRepo(db *gorm.DB, baseLog *logger.Logger) MentorSessionRepo {
	return &mentorSessionRepo{db: db, log: baseLog.With("repo", "MentorSessionRepo")}
}

func (r *mentorSessionRepo) Create(dbc dbctx.Context, s *types.MentorSession) (*types.MentorSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

func (r *mentorSessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.MentorSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.firstByID(transaction.WithContext(dbc.Ctx), id)
}

func (r *mentorSessionRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.MentorSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return r.firstByID(transaction.WithContext(dbc.Ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *mentorSessionRepo) firstByID(q *gorm.DB, id uuid.UUID) (*types.MentorSession, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var s types.MentorSession
	err := q.Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *mentorSessionRepo) LatestByStudent(dbc dbctx.Context, studentID uuid.UUID) (*types.MentorSession, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var s types.MentorSession
	err := transaction.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Order("updated_at DESC").
		Order("created_at DESC").
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateTranscript writes messages only if the row is still at expectedVersion.
// It returns false when another writer got there first.
func (r *mentorSessionRepo) UpdateTranscript(dbc dbctx.Context, id uuid.UUID, expectedVersion int64, messages datatypes.JSON) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.MentorSession{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"messages":   messages,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *mentorSessionRepo) DeleteByStudent(dbc dbctx.Context, studentID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("student_id = ?", studentID).
		Delete(&types.MentorSession{})
	return res.RowsAffected, res.Error
}
