package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/domain/invention"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/pkg/patch"
	"github.com/yungbote/atlas-backend/internal/platform/apierr"
)

type CreatePatentInput struct {
	Title            string  `json:"title"`
	ProblemStatement *string `json:"problemStatement"`
	CurrentSolutions *string `json:"currentSolutions"`
	NewApproach      *string `json:"newApproach"`
	Advantages       *string `json:"advantages"`
	ProvisionalDraft *string `json:"provisionalDraft"`
	Stage            int     `json:"stage"`
}

type PatentPatch struct {
	Title            patch.Field[string] `json:"title"`
	ProblemStatement patch.Field[string] `json:"problemStatement"`
	CurrentSolutions patch.Field[string] `json:"currentSolutions"`
	NewApproach      patch.Field[string] `json:"newApproach"`
	Advantages       patch.Field[string] `json:"advantages"`
	ProvisionalDraft patch.Field[string] `json:"provisionalDraft"`
	Stage            patch.Field[int]    `json:"stage"`
}

type PatentService interface {
	Create(ctx context.Context, studentID uuid.UUID, in CreatePatentInput) (*types.PatentIdea, error)
	List(ctx context.Context, studentID uuid.UUID) ([]*types.PatentIdea, error)
	Get(ctx context.Context, id uuid.UUID) (*types.PatentIdea, error)
	Update(ctx context.Context, id uuid.UUID, p PatentPatch) (*types.PatentIdea, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type patentService struct {
	db          *gorm.DB
	log         *logger.Logger
	studentRepo repos.StudentRepo
	patentRepo  repos.PatentIdeaRepo
}

func NewPatentService(db *gorm.DB, log *logger.Logger, studentRepo repos.StudentRepo, patentRepo repos.PatentIdeaRepo) PatentService {
	return &patentService{
		db:          db,
		log:         log.With("service", "PatentService"),
		studentRepo: studentRepo,
		patentRepo:  patentRepo,
	}
}

func validStage(s int) bool {
	return s >= invention.MinPatentStage && s <= invention.MaxPatentStage
}

func (ps *patentService) Create(ctx context.Context, studentID uuid.UUID, in CreatePatentInput) (*types.PatentIdea, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("missing_title", "title required")
	}
	stage := in.Stage
	if stage == 0 {
		stage = invention.MinPatentStage
	}
	if !validStage(stage) {
		return nil, apierr.Invalid("invalid_stage", "stage %d outside %d..%d", stage, invention.MinPatentStage, invention.MaxPatentStage)
	}

	dbc := dbctx.Context{Ctx: ctx}
	s, err := ps.studentRepo.GetByID(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if s == nil {
		return nil, apierr.NotFound("student_not_found", "student %s", studentID)
	}
	p, err := ps.patentRepo.Create(dbc, &types.PatentIdea{
		StudentID:        studentID,
		Title:            title,
		ProblemStatement: in.ProblemStatement,
		CurrentSolutions: in.CurrentSolutions,
		NewApproach:      in.NewApproach,
		Advantages:       in.Advantages,
		ProvisionalDraft: in.ProvisionalDraft,
		Stage:            stage,
	})
	if err != nil {
		return nil, fmt.Errorf("create patent idea: %w", err)
	}
	return p, nil
}

func (ps *patentService) List(ctx context.Context, studentID uuid.UUID) ([]*types.PatentIdea, error) {
	out, err := ps.patentRepo.ListByStudent(dbctx.Context{Ctx: ctx}, studentID)
	if err != nil {
		return nil, fmt.Errorf("list patent ideas: %w", err)
	}
	if out == nil {
		out = []*types.PatentIdea{}
	}
	return out, nil
}

func (ps *patentService) Get(ctx context.Context, id uuid.UUID) (*types.PatentIdea, error) {
	p, err := ps.patentRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load patent idea: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("patent_not_found", "patent idea %s", id)
	}
	return p, nil
}

func (ps *patentService) Update(ctx context.Context, id uuid.UUID, p PatentPatch) (*types.PatentIdea, error) {
	updates := map[string]interface{}{}
	if p.Title.Set {
		if p.Title.Null || strings.TrimSpace(p.Title.Value) == "" {
			return nil, apierr.Invalid("missing_title", "title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(p.Title.Value)
	}
	if p.Stage.Set {
		if p.Stage.Null || !validStage(p.Stage.Value) {
			return nil, apierr.Invalid("invalid_stage", "stage %d outside %d..%d", p.Stage.Value, invention.MinPatentStage, invention.MaxPatentStage)
		}
		updates["stage"] = p.Stage.Value
	}
	p.ProblemStatement.Apply(updates, "problem_statement")
	p.CurrentSolutions.Apply(updates, "current_solutions")
	p.NewApproach.Apply(updates, "new_approach")
	p.Advantages.Apply(updates, "advantages")
	p.ProvisionalDraft.Apply(updates, "provisional_draft")

	var out *types.PatentIdea
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := ps.patentRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load patent idea: %w", err)
		}
		if existing == nil {
			return apierr.NotFound("patent_not_found", "patent idea %s", id)
		}
		if len(updates) > 0 {
			updates["updated_at"] = time.Now().UTC()
			if err := ps.patentRepo.UpdateFields(dbc, id, updates); err != nil {
				return fmt.Errorf("update patent idea: %w", err)
			}
		}
		out, err = ps.patentRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *patentService) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := ps.patentRepo.Delete(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return fmt.Errorf("delete patent idea: %w", err)
	}
	if n == 0 {
		return apierr.NotFound("patent_not_found", "patent idea %s", id)
	}
	return nil
}
