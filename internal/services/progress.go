package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	"github.com/yungbote/atlas-backend/internal/data/repos/dberr"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/domain/progress"
	"github.com/yungbote/atlas-backend/internal/domain/student"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/pkg/patch"
	"github.com/yungbote/atlas-backend/internal/platform/apierr"
)

// ProgressPatch is a partial update. Absent fields are left untouched and
// explicit nulls clear the column.
type ProgressPatch struct {
	Status          patch.Field[string] `json:"status"`
	Notes           patch.Field[string] `json:"notes"`
	BuildLink       patch.Field[string] `json:"buildLink"`
	ReflectionNotes patch.Field[string] `json:"reflectionNotes"`
	SelfAssessment  patch.Field[int]    `json:"selfAssessment"`
}

// ProgressState is the status of one week for a student. Progress is nil
// when no row exists and the week is implicitly available.
type ProgressState struct {
	WeekNumber int             `json:"weekNumber"`
	MissionID  uuid.UUID       `json:"missionId"`
	Status     string          `json:"status"`
	Progress   *types.Progress `json:"progress"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type WeekStatus struct {
	Week      int        `json:"week"`
	MissionID *uuid.UUID `json:"missionId,omitempty"`
	Status    string     `json:"status"`
}

type ProgressAggregate struct {
	StudentID          uuid.UUID       `json:"studentId"`
	TotalMissions      int             `json:"totalMissions"`
	CompletedMissions  int             `json:"completedMissions"`
	InProgressMissions int             `json:"inProgressMissions"`
	TotalMissionsDone  int             `json:"totalMissionsDone"`
	TotalInventions    int             `json:"totalInventions"`
	EngineeringScore   int             `json:"engineeringScore"`
	CurrentWeek        int             `json:"currentWeek"`
	CategoryBreakdown  []CategoryCount `json:"categoryBreakdown"`
	WeeklyProgress     []WeekStatus    `json:"weeklyProgress"`
}

type ProgressService interface {
	Get(ctx context.Context, studentID uuid.UUID, week int) (*ProgressState, error)
	Upsert(ctx context.Context, studentID uuid.UUID, week int, p ProgressPatch) (*types.Progress, error)
	// Reset deletes the row. Score and mission counters are not rolled back.
	Reset(ctx context.Context, studentID uuid.UUID, week int) error
	Aggregate(ctx context.Context, studentID uuid.UUID) (*ProgressAggregate, error)
}

type progressService struct {
	db           *gorm.DB
	log          *logger.Logger
	studentRepo  repos.StudentRepo
	progressRepo repos.ProgressRepo
	curriculum   CurriculumService
	now          func() time.Time
}

func NewProgressService(
	db *gorm.DB,
	log *logger.Logger,
	studentRepo repos.StudentRepo,
	progressRepo repos.ProgressRepo,
	curriculum CurriculumService,
) ProgressService {
	return &progressService{
		db:           db,
		log:          log.With("service", "ProgressService"),
		studentRepo:  studentRepo,
		progressRepo: progressRepo,
		curriculum:   curriculum,
		now:          time.Now,
	}
}

func (ps *progressService) requireStudent(dbc dbctx.Context, id uuid.UUID) (*types.Student, error) {
	s, err := ps.studentRepo.GetByID(dbc, id)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if s == nil {
		return nil, apierr.NotFound("student_not_found", "student %s", id)
	}
	return s, nil
}

func (ps *progressService) Get(ctx context.Context, studentID uuid.UUID, week int) (*ProgressState, error) {
	ref, err := ps.curriculum.ResolveWeek(ctx, week)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := ps.requireStudent(dbc, studentID); err != nil {
		return nil, err
	}
	row, err := ps.progressRepo.Get(dbc, studentID, ref.ID)
	if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	st := &ProgressState{WeekNumber: week, MissionID: ref.ID, Status: types.ProgressAvailable, Progress: row}
	if row != nil {
		st.Status = row.Status
	}
	return st, nil
}

func validateProgressPatch(p ProgressPatch) error {
	if p.Status.Set {
		if p.Status.Null {
			return apierr.Invalid("invalid_status", "status cannot be null")
		}
		switch p.Status.Value {
		case types.ProgressInProgress, types.ProgressCompleted:
		case types.ProgressAvailable:
			return apierr.Invalid("invalid_status", "status %q is only reachable by reset", p.Status.Value)
		default:
			return apierr.Invalid("invalid_status", "status %q", p.Status.Value)
		}
	}
	if p.SelfAssessment.HasValue() {
		v := p.SelfAssessment.Value
		if v < progress.MinSelfAssessment || v > progress.MaxSelfAssessment {
			return apierr.Invalid("invalid_self_assessment", "self assessment %d outside %d..%d",
				v, progress.MinSelfAssessment, progress.MaxSelfAssessment)
		}
	}
	return nil
}

func (ps *progressService) Upsert(ctx context.Context, studentID uuid.UUID, week int, p ProgressPatch) (*types.Progress, error) {
	if err := validateProgressPatch(p); err != nil {
		return nil, err
	}
	ref, err := ps.curriculum.ResolveWeek(ctx, week)
	if err != nil {
		return nil, err
	}

	out, err := ps.upsertOnce(ctx, studentID, ref, p)
	if err != nil && dberr.IsUniqueViolation(err) {
		// Lost a race to insert the first row; the retry sees it and updates.
		ps.log.Debug("Progress insert raced, retrying", "student_id", studentID, "week", week)
		out, err = ps.upsertOnce(ctx, studentID, ref, p)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *progressService) upsertOnce(ctx context.Context, studentID uuid.UUID, ref *types.MissionRef, p ProgressPatch) (*types.Progress, error) {
	var out *types.Progress
	err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		s, err := ps.studentRepo.LockByID(dbc, studentID)
		if err != nil {
			return fmt.Errorf("lock student: %w", err)
		}
		if s == nil {
			return apierr.NotFound("student_not_found", "student %s", studentID)
		}

		existing, err := ps.progressRepo.Lock(dbc, studentID, ref.ID)
		if err != nil {
			return fmt.Errorf("lock progress: %w", err)
		}

		now := ps.now().UTC()
		prevStatus := ""
		var newStatus string

		if existing == nil {
			newStatus = types.ProgressInProgress
			if p.Status.HasValue() {
				newStatus = p.Status.Value
			}
			row := &types.Progress{
				StudentID: studentID,
				MissionID: ref.ID,
				Status:    newStatus,
			}
			if p.Notes.HasValue() {
				row.Notes = p.Notes.Ptr()
			}
			if p.BuildLink.HasValue() {
				row.BuildLink = p.BuildLink.Ptr()
			}
			if p.ReflectionNotes.HasValue() {
				row.ReflectionNotes = p.ReflectionNotes.Ptr()
			}
			if p.SelfAssessment.HasValue() {
				row.SelfAssessment = p.SelfAssessment.Ptr()
			}
			switch newStatus {
			case types.ProgressInProgress:
				row.StartedAt = &now
			case types.ProgressCompleted:
				row.CompletedAt = &now
			}
			if _, err := ps.progressRepo.Create(dbc, row); err != nil {
				return err
			}
		} else {
			prevStatus = existing.Status
			newStatus = existing.Status
			if p.Status.HasValue() {
				if existing.Status == types.ProgressCompleted && p.Status.Value == types.ProgressInProgress {
					return apierr.Invalid("invalid_transition", "completed mission cannot go back to in_progress; reset it first")
				}
				newStatus = p.Status.Value
			}

			updates := map[string]interface{}{}
			p.Notes.Apply(updates, "notes")
			p.BuildLink.Apply(updates, "build_link")
			p.ReflectionNotes.Apply(updates, "reflection_notes")
			p.SelfAssessment.Apply(updates, "self_assessment")
			if p.Status.HasValue() {
				updates["status"] = newStatus
				switch newStatus {
				case types.ProgressInProgress:
					updates["started_at"] = now
				case types.ProgressCompleted:
					updates["completed_at"] = now
				}
			}
			if len(updates) > 0 {
				updates["updated_at"] = now
				if err := ps.progressRepo.UpdateFields(dbc, existing.ID, updates); err != nil {
					return fmt.Errorf("update progress: %w", err)
				}
			}
		}

		if newStatus == types.ProgressCompleted && prevStatus != types.ProgressCompleted {
			score := s.EngineeringScore + student.CompletionScoreBonus
			if score > student.MaxEngineeringScore {
				score = student.MaxEngineeringScore
			}
			currentWeek := s.CurrentWeek
			if ref.WeekNumber+1 > currentWeek {
				currentWeek = ref.WeekNumber + 1
			}
			if err := ps.studentRepo.UpdateFields(dbc, studentID, map[string]interface{}{
				"total_missions_done": gorm.Expr("total_missions_done + ?", 1),
				"engineering_score":   score,
				"current_week":        currentWeek,
				"updated_at":          now,
			}); err != nil {
				return fmt.Errorf("update student aggregates: %w", err)
			}
			observability.Current().IncMissionCompleted(ref.Category)
			ps.log.Info("Mission completed",
				"student_id", studentID,
				"week", ref.WeekNumber,
				"engineering_score", score,
				"current_week", currentWeek,
			)
		}

		row, err := ps.progressRepo.Get(dbc, studentID, ref.ID)
		if err != nil {
			return fmt.Errorf("reload progress: %w", err)
		}
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *progressService) Reset(ctx context.Context, studentID uuid.UUID, week int) error {
	ref, err := ps.curriculum.ResolveWeek(ctx, week)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	if _, err := ps.requireStudent(dbc, studentID); err != nil {
		return err
	}
	n, err := ps.progressRepo.Delete(dbc, studentID, ref.ID)
	if err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	ps.log.Debug("Progress reset", "student_id", studentID, "week", week, "deleted", n)
	return nil
}

func (ps *progressService) Aggregate(ctx context.Context, studentID uuid.UUID) (*ProgressAggregate, error) {
	var (
		s    *types.Student
		rows []*types.ProgressWithMission
		refs []types.MissionRef
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s, err = ps.requireStudent(dbctx.Context{Ctx: gctx}, studentID)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = ps.progressRepo.ListWithMission(dbctx.Context{Ctx: gctx}, studentID)
		if err != nil {
			return fmt.Errorf("list progress: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		refs, err = ps.curriculum.ListRefs(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildAggregate(s, rows, refs), nil
}

// buildAggregate is a pure view over the rows; nothing is written.
func buildAggregate(s *types.Student, rows []*types.ProgressWithMission, refs []types.MissionRef) *ProgressAggregate {
	agg := &ProgressAggregate{
		StudentID:         s.ID,
		TotalMissions:     types.TotalWeeks,
		TotalMissionsDone: s.TotalMissionsDone,
		TotalInventions:   s.TotalInventions,
		EngineeringScore:  s.EngineeringScore,
		CurrentWeek:       s.CurrentWeek,
		CategoryBreakdown: []CategoryCount{},
		WeeklyProgress:    make([]WeekStatus, 0, types.TotalWeeks),
	}

	byWeek := make(map[int]string, len(rows))
	catIndex := map[string]int{}
	for _, r := range rows {
		byWeek[r.WeekNumber] = r.Status
		switch r.Status {
		case types.ProgressCompleted:
			agg.CompletedMissions++
			// Rows arrive in week order, so categories appear by first completed week.
			if i, ok := catIndex[r.Category]; ok {
				agg.CategoryBreakdown[i].Count++
			} else {
				catIndex[r.Category] = len(agg.CategoryBreakdown)
				agg.CategoryBreakdown = append(agg.CategoryBreakdown, CategoryCount{Category: r.Category, Count: 1})
			}
		case types.ProgressInProgress:
			agg.InProgressMissions++
		}
	}
	missionByWeek := make(map[int]uuid.UUID, len(refs))
	for _, ref := range refs {
		missionByWeek[ref.WeekNumber] = ref.ID
	}

	for week := 1; week <= types.TotalWeeks; week++ {
		status, ok := byWeek[week]
		if !ok {
			if week <= s.CurrentWeek+1 {
				status = types.ProgressAvailable
			} else {
				status = types.ProgressLocked
			}
		}
		ws := WeekStatus{Week: week, Status: status}
		if id, ok := missionByWeek[week]; ok {
			ws.MissionID = &id
		}
		agg.WeeklyProgress = append(agg.WeeklyProgress, ws)
	}
	return agg
}
