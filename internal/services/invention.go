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

type CreateInventionInput struct {
	Title            string  `json:"title"`
	ProblemSolved    *string `json:"problemSolved"`
	NoveltyDesc      *string `json:"noveltyDesc"`
	ArchitectureDesc *string `json:"architectureDesc"`
	PrototypeLink    *string `json:"prototypeLink"`
	Status           string  `json:"status"`
	Patentable       bool    `json:"patentable"`
	WeekCreated      *int    `json:"weekCreated"`
}

type InventionPatch struct {
	Title            patch.Field[string] `json:"title"`
	ProblemSolved    patch.Field[string] `json:"problemSolved"`
	NoveltyDesc      patch.Field[string] `json:"noveltyDesc"`
	ArchitectureDesc patch.Field[string] `json:"architectureDesc"`
	PrototypeLink    patch.Field[string] `json:"prototypeLink"`
	Status           patch.Field[string] `json:"status"`
	Patentable       patch.Field[bool]   `json:"patentable"`
	WeekCreated      patch.Field[int]    `json:"weekCreated"`
}

type InventionService interface {
	// Create inserts the invention and bumps the student's invention count in
	// the same transaction.
	Create(ctx context.Context, studentID uuid.UUID, in CreateInventionInput) (*types.Invention, error)
	List(ctx context.Context, studentID uuid.UUID) ([]*types.Invention, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Invention, error)
	Update(ctx context.Context, id uuid.UUID, p InventionPatch) (*types.Invention, error)
	// Delete removes the invention and decrements the owner's count. An
	// unknown id is a no-op that reports deleted=false.
	Delete(ctx context.Context, id uuid.UUID) (deleted bool, err error)
}

type inventionService struct {
	db            *gorm.DB
	log           *logger.Logger
	studentRepo   repos.StudentRepo
	inventionRepo repos.InventionRepo
}

func NewInventionService(db *gorm.DB, log *logger.Logger, studentRepo repos.StudentRepo, inventionRepo repos.InventionRepo) InventionService {
	return &inventionService{
		db:            db,
		log:           log.With("service", "InventionService"),
		studentRepo:   studentRepo,
		inventionRepo: inventionRepo,
	}
}

func validWeek(w int) bool { return w >= 1 && w <= types.TotalWeeks }

func (is *inventionService) Create(ctx context.Context, studentID uuid.UUID, in CreateInventionInput) (*types.Invention, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apierr.Invalid("missing_title", "title required")
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = types.InventionIdea
	}
	if !invention.ValidStatus(status) {
		return nil, apierr.Invalid("invalid_status", "invention status %q", in.Status)
	}
	if in.WeekCreated != nil && !validWeek(*in.WeekCreated) {
		return nil, apierr.Invalid("invalid_week", "week %d", *in.WeekCreated)
	}

	var out *types.Invention
	err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		s, err := is.studentRepo.LockByID(dbc, studentID)
		if err != nil {
			return fmt.Errorf("lock student: %w", err)
		}
		if s == nil {
			return apierr.NotFound("student_not_found", "student %s", studentID)
		}
		inv, err := is.inventionRepo.Create(dbc, &types.Invention{
			StudentID:        studentID,
			Title:            title,
			ProblemSolved:    in.ProblemSolved,
			NoveltyDesc:      in.NoveltyDesc,
			ArchitectureDesc: in.ArchitectureDesc,
			PrototypeLink:    in.PrototypeLink,
			Status:           status,
			Patentable:       in.Patentable,
			WeekCreated:      in.WeekCreated,
		})
		if err != nil {
			return fmt.Errorf("create invention: %w", err)
		}
		if err := is.studentRepo.AdjustInventionCount(dbc, studentID, 1); err != nil {
			return fmt.Errorf("increment invention count: %w", err)
		}
		out = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	is.log.Info("Invention created", "student_id", studentID, "invention_id", out.ID)
	return out, nil
}

func (is *inventionService) List(ctx context.Context, studentID uuid.UUID) ([]*types.Invention, error) {
	out, err := is.inventionRepo.ListByStudent(dbctx.Context{Ctx: ctx}, studentID)
	if err != nil {
		return nil, fmt.Errorf("list inventions: %w", err)
	}
	if out == nil {
		out = []*types.Invention{}
	}
	return out, nil
}

func (is *inventionService) Get(ctx context.Context, id uuid.UUID) (*types.Invention, error) {
	inv, err := is.inventionRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load invention: %w", err)
	}
	if inv == nil {
		return nil, apierr.NotFound("invention_not_found", "invention %s", id)
	}
	return inv, nil
}

func (is *inventionService) Update(ctx context.Context, id uuid.UUID, p InventionPatch) (*types.Invention, error) {
	updates := map[string]interface{}{}
	if p.Title.Set {
		if p.Title.Null || strings.TrimSpace(p.Title.Value) == "" {
			return nil, apierr.Invalid("missing_title", "title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(p.Title.Value)
	}
	if p.Status.Set {
		if p.Status.Null || !invention.ValidStatus(p.Status.Value) {
			return nil, apierr.Invalid("invalid_status", "invention status %q", p.Status.Value)
		}
		updates["status"] = p.Status.Value
	}
	if p.Patentable.Set {
		if p.Patentable.Null {
			return nil, apierr.Invalid("invalid_patentable", "patentable cannot be null")
		}
		updates["patentable"] = p.Patentable.Value
	}
	if p.WeekCreated.HasValue() && !validWeek(p.WeekCreated.Value) {
		return nil, apierr.Invalid("invalid_week", "week %d", p.WeekCreated.Value)
	}
	p.ProblemSolved.Apply(updates, "problem_solved")
	p.NoveltyDesc.Apply(updates, "novelty_desc")
	p.ArchitectureDesc.Apply(updates, "architecture_desc")
	p.PrototypeLink.Apply(updates, "prototype_link")
	p.WeekCreated.Apply(updates, "week_created")

	var out *types.Invention
	err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		inv, err := is.inventionRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load invention: %w", err)
		}
		if inv == nil {
			return apierr.NotFound("invention_not_found", "invention %s", id)
		}
		if len(updates) > 0 {
			updates["updated_at"] = time.Now().UTC()
			if err := is.inventionRepo.UpdateFields(dbc, id, updates); err != nil {
				return fmt.Errorf("update invention: %w", err)
			}
		}
		out, err = is.inventionRepo.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (is *inventionService) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted := false
	err := is.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		inv, err := is.inventionRepo.GetByID(dbc, id)
		if err != nil {
			return fmt.Errorf("load invention: %w", err)
		}
		if inv == nil {
			return nil
		}
		if _, err := is.studentRepo.LockByID(dbc, inv.StudentID); err != nil {
			return fmt.Errorf("lock student: %w", err)
		}
		n, err := is.inventionRepo.Delete(dbc, id)
		if err != nil {
			return fmt.Errorf("delete invention: %w", err)
		}
		// A concurrent delete already took the row and its decrement.
		if n == 0 {
			return nil
		}
		if err := is.studentRepo.AdjustInventionCount(dbc, inv.StudentID, -1); err != nil {
			return fmt.Errorf("decrement invention count: %w", err)
		}
		deleted = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if deleted {
		is.log.Info("Invention deleted", "invention_id", id)
	}
	return deleted, nil
}
