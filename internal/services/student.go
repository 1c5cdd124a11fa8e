package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	"github.com/yungbote/atlas-backend/internal/data/repos/dberr"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/platform/apierr"
)

const maxStudentAge = 120

type SetupStudentInput struct {
	Name            string `json:"name"`
	Age             *int   `json:"age"`
	DifficultyLevel string `json:"difficultyLevel"`
}

type StudentService interface {
	// GetCurrent returns the deployment's student, or nil before setup.
	GetCurrent(ctx context.Context) (*types.Student, error)
	// Setup creates the student once. Later calls return the existing row
	// and created=false.
	Setup(ctx context.Context, in SetupStudentInput) (student *types.Student, created bool, err error)
	Get(ctx context.Context, id uuid.UUID) (*types.Student, error)
}

type studentService struct {
	db          *gorm.DB
	log         *logger.Logger
	studentRepo repos.StudentRepo
}

func NewStudentService(db *gorm.DB, log *logger.Logger, studentRepo repos.StudentRepo) StudentService {
	return &studentService{
		db:          db,
		log:         log.With("service", "StudentService"),
		studentRepo: studentRepo,
	}
}

func (ss *studentService) GetCurrent(ctx context.Context) (*types.Student, error) {
	s, err := ss.studentRepo.GetByTenantKey(dbctx.Context{Ctx: ctx}, types.DefaultTenantKey)
	if err != nil {
		return nil, fmt.Errorf("load current student: %w", err)
	}
	return s, nil
}

func (ss *studentService) Get(ctx context.Context, id uuid.UUID) (*types.Student, error) {
	return ss.mustGet(dbctx.Context{Ctx: ctx}, id)
}

func (ss *studentService) mustGet(dbc dbctx.Context, id uuid.UUID) (*types.Student, error) {
	s, err := ss.studentRepo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if s == nil {
		return nil, apierr.NotFound("student_not_found", "student %s", id)
	}
	return s, nil
}

func (ss *studentService) Setup(ctx context.Context, in SetupStudentInput) (*types.Student, bool, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, false, apierr.Invalid("missing_name", "name required")
	}
	level := strings.ToLower(strings.TrimSpace(in.DifficultyLevel))
	if level == "" {
		level = types.DifficultyAdvanced
	}
	if !validDifficulty(level) {
		return nil, false, apierr.Invalid("invalid_difficulty_level", "difficulty level %q", in.DifficultyLevel)
	}
	if in.Age != nil && (*in.Age < 0 || *in.Age > maxStudentAge) {
		return nil, false, apierr.Invalid("invalid_age", "age %d", *in.Age)
	}

	dbc := dbctx.Context{Ctx: ctx}
	existing, err := ss.studentRepo.GetByTenantKey(dbc, types.DefaultTenantKey)
	if err != nil {
		return nil, false, fmt.Errorf("load current student: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	// No surrounding transaction: on Postgres a failed insert would poison it,
	// and the unique tenant_key index is what arbitrates concurrent setups.
	created, err := ss.studentRepo.Create(dbc, &types.Student{
		TenantKey:       types.DefaultTenantKey,
		Name:            name,
		Age:             in.Age,
		DifficultyLevel: level,
		CurrentWeek:     1,
	})
	if err == nil {
		ss.log.Info("Student created", "student_id", created.ID)
		return created, true, nil
	}
	if !dberr.IsUniqueViolation(err) {
		return nil, false, fmt.Errorf("create student: %w", err)
	}
	existing, err = ss.studentRepo.GetByTenantKey(dbc, types.DefaultTenantKey)
	if err != nil {
		return nil, false, fmt.Errorf("load current student: %w", err)
	}
	if existing == nil {
		return nil, false, fmt.Errorf("student vanished after duplicate insert")
	}
	ss.log.Debug("Concurrent setup resolved to existing student", "student_id", existing.ID)
	return existing, false, nil
}

func validDifficulty(d string) bool {
	switch d {
	case types.DifficultyIntermediate, types.DifficultyAdvanced, types.DifficultyLegendary:
		return true
	}
	return false
}
