package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/data/repos"
	types "github.com/yungbote/atlas-backend/internal/domain"
	mentordomain "github.com/yungbote/atlas-backend/internal/domain/mentor"
	"github.com/yungbote/atlas-backend/internal/mentor/prompts"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
	"github.com/yungbote/atlas-backend/internal/platform/apierr"
	"github.com/yungbote/atlas-backend/internal/platform/openai"
)

const (
	DefaultMentorContextTurns  = 10
	DefaultMentorHistoryCap    = 40
	DefaultMentorMinReplyChars = 10

	mentorPersistAttempts = 3

	ReplySourceCompletion = "completion"
	ReplySourceFallback   = "fallback"
)

type MentorConfig struct {
	ContextTurns  int
	HistoryCap    int
	MinReplyChars int
}

func (c MentorConfig) withDefaults() MentorConfig {
	if c.ContextTurns <= 0 {
		c.ContextTurns = DefaultMentorContextTurns
	}
	if c.HistoryCap <= 0 {
		c.HistoryCap = DefaultMentorHistoryCap
	}
	if c.MinReplyChars <= 0 {
		c.MinReplyChars = DefaultMentorMinReplyChars
	}
	return c
}

type PostMessageInput struct {
	StudentID   uuid.UUID  `json:"studentId"`
	SessionID   *uuid.UUID `json:"sessionId"`
	Message     string     `json:"message"`
	StudentName string     `json:"studentName"`
}

type PostMessageResult struct {
	Reply     string    `json:"reply"`
	SessionID uuid.UUID `json:"sessionId"`
	Source    string    `json:"source"`
}

type MentorSessionView struct {
	ID        uuid.UUID             `json:"id"`
	StudentID uuid.UUID             `json:"studentId"`
	Context   string                `json:"context"`
	Messages  []types.MentorMessage `json:"messages"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
}

type MentorService interface {
	// GetOrCreateSession returns the student's most recently updated session,
	// creating an empty one if none exists.
	GetOrCreateSession(ctx context.Context, studentID uuid.UUID) (*MentorSessionView, error)
	// PostMessage never fails because of the completion service; an unusable
	// completion is replaced by a canned reply.
	PostMessage(ctx context.Context, in PostMessageInput) (*PostMessageResult, error)
	ClearSessions(ctx context.Context, studentID uuid.UUID) (int64, error)
}

type mentorService struct {
	db          *gorm.DB
	log         *logger.Logger
	cfg         MentorConfig
	studentRepo repos.StudentRepo
	sessionRepo repos.MentorSessionRepo
	completer   openai.Client
	fallback    *prompts.Fallback
	system      string
}

func NewMentorService(
	db *gorm.DB,
	log *logger.Logger,
	cfg MentorConfig,
	studentRepo repos.StudentRepo,
	sessionRepo repos.MentorSessionRepo,
	completer openai.Client,
	fallback *prompts.Fallback,
) MentorService {
	return &mentorService{
		db:          db,
		log:         log.With("service", "MentorService"),
		cfg:         cfg.withDefaults(),
		studentRepo: studentRepo,
		sessionRepo: sessionRepo,
		completer:   completer,
		fallback:    fallback,
		system:      prompts.SystemPrompt(),
	}
}

func (ms *mentorService) requireStudent(ctx context.Context, id uuid.UUID) (*types.Student, error) {
	s, err := ms.studentRepo.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, fmt.Errorf("load student: %w", err)
	}
	if s == nil {
		return nil, apierr.NotFound("student_not_found", "student %s", id)
	}
	return s, nil
}

func (ms *mentorService) decode(s *types.MentorSession) []types.MentorMessage {
	msgs, ok := mentordomain.DecodeTranscript(s.Messages)
	if !ok {
		ms.log.Warn("Unreadable mentor transcript, treating as empty", "session_id", s.ID)
	}
	return msgs
}

func viewOf(s *types.MentorSession, msgs []types.MentorMessage) *MentorSessionView {
	return &MentorSessionView{
		ID:        s.ID,
		StudentID: s.StudentID,
		Context:   s.Context,
		Messages:  msgs,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (ms *mentorService) GetOrCreateSession(ctx context.Context, studentID uuid.UUID) (*MentorSessionView, error) {
	if _, err := ms.requireStudent(ctx, studentID); err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	s, err := ms.sessionRepo.LatestByStudent(dbc, studentID)
	if err != nil {
		return nil, fmt.Errorf("load mentor session: %w", err)
	}
	if s != nil {
		return viewOf(s, ms.decode(s)), nil
	}
	s, err = ms.sessionRepo.Create(dbc, &types.MentorSession{
		StudentID: studentID,
		Context:   mentordomain.DefaultContext,
	})
	if err != nil {
		return nil, fmt.Errorf("create mentor session: %w", err)
	}
	ms.log.Debug("Mentor session created", "student_id", studentID, "session_id", s.ID)
	return viewOf(s, []types.MentorMessage{}), nil
}

func (ms *mentorService) PostMessage(ctx context.Context, in PostMessageInput) (*PostMessageResult, error) {
	text := strings.TrimSpace(in.Message)
	if in.StudentID == uuid.Nil || text == "" {
		return nil, apierr.Invalid("missing_fields", "studentId and message required")
	}
	student, err := ms.requireStudent(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.StudentName)
	if name == "" {
		name = student.Name
	}

	var session *types.MentorSession
	if in.SessionID != nil && *in.SessionID != uuid.Nil {
		s, err := ms.sessionRepo.GetByID(dbctx.Context{Ctx: ctx}, *in.SessionID)
		if err != nil {
			return nil, fmt.Errorf("load mentor session: %w", err)
		}
		if s != nil && s.StudentID == in.StudentID {
			session = s
		}
	}

	history := []types.MentorMessage{}
	if session != nil {
		history = ms.decode(session)
	}
	userTurn := types.MentorMessage{Role: types.MentorRoleUser, Content: in.Message}
	history = append(history, userTurn)

	reply, source := ms.reply(ctx, history, in.Message, name)
	assistantTurn := types.MentorMessage{Role: types.MentorRoleAssistant, Content: reply}

	var sessionID uuid.UUID
	if session == nil {
		created, err := ms.createWith(ctx, in.StudentID, append(history, assistantTurn))
		if err != nil {
			return nil, err
		}
		sessionID = created.ID
	} else {
		if err := ms.appendTurns(ctx, session.ID, userTurn, assistantTurn); err != nil {
			return nil, err
		}
		sessionID = session.ID
	}

	return &PostMessageResult{Reply: reply, SessionID: sessionID, Source: source}, nil
}

// reply asks the completion service using the last ContextTurns messages and
// falls back to the keyword table when the answer is unusable.
func (ms *mentorService) reply(ctx context.Context, history []types.MentorMessage, userText, studentName string) (string, string) {
	window := history
	if len(window) > ms.cfg.ContextTurns {
		window = window[len(window)-ms.cfg.ContextTurns:]
	}
	msgs := make([]openai.Message, 0, len(window))
	for _, m := range window {
		role := types.MentorRoleAssistant
		if m.Role == types.MentorRoleUser {
			role = types.MentorRoleUser
		}
		msgs = append(msgs, openai.Message{Role: role, Content: m.Content})
	}

	reason := ""
	if ms.completer == nil {
		reason = string(openai.ReasonDisabled)
	} else {
		start := time.Now()
		text, err := ms.completer.Complete(ctx, ms.system, msgs)
		elapsed := time.Since(start)
		switch {
		case err != nil:
			reason = string(openai.ReasonOf(err))
			if reason == "" {
				reason = "error"
			}
			if reason != string(openai.ReasonDisabled) {
				ms.log.Warn("Completion unusable, using fallback", "reason", reason, "error", err)
			}
		case utf8.RuneCountInString(strings.TrimSpace(text)) <= ms.cfg.MinReplyChars:
			reason = string(openai.ReasonEmpty)
			ms.log.Warn("Completion too short, using fallback", "reason", reason, "chars", utf8.RuneCountInString(strings.TrimSpace(text)))
		default:
			observability.Current().ObserveCompletion("ok", elapsed)
			observability.Current().IncMentorReply(ReplySourceCompletion, "")
			return text, ReplySourceCompletion
		}
		observability.Current().ObserveCompletion(reason, elapsed)
	}

	rule, text := ms.fallback.Select(userText, studentName)
	ms.log.Debug("Fallback reply selected", "rule", rule, "reason", reason)
	observability.Current().IncMentorReply(ReplySourceFallback, rule)
	return text, ReplySourceFallback
}

// createWith stores a brand-new session with the full message list.
func (ms *mentorService) createWith(ctx context.Context, studentID uuid.UUID, msgs []types.MentorMessage) (*types.MentorSession, error) {
	raw, err := mentordomain.EncodeTranscript(msgs)
	if err != nil {
		return nil, fmt.Errorf("encode transcript: %w", err)
	}
	s, err := ms.sessionRepo.Create(dbctx.Context{Ctx: ctx}, &types.MentorSession{
		StudentID:     studentID,
		Messages:      raw,
		SchemaVersion: mentordomain.TranscriptSchemaVersion,
		Context:       mentordomain.DefaultContext,
	})
	if err != nil {
		return nil, fmt.Errorf("create mentor session: %w", err)
	}
	return s, nil
}

// appendTurns re-reads the stored transcript under a row lock and writes it
// back with the two new turns, guarded by the session version. Concurrent
// appends are retried rather than overwritten.
func (ms *mentorService) appendTurns(ctx context.Context, sessionID uuid.UUID, turns ...types.MentorMessage) error {
	for attempt := 1; attempt <= mentorPersistAttempts; attempt++ {
		written := false
		err := ms.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			dbc := dbctx.Context{Ctx: ctx, Tx: tx}
			s, err := ms.sessionRepo.LockByID(dbc, sessionID)
			if err != nil {
				return fmt.Errorf("lock mentor session: %w", err)
			}
			if s == nil {
				return apierr.NotFound("session_not_found", "mentor session %s", sessionID)
			}
			msgs := append(ms.decode(s), turns...)
			msgs = mentordomain.TrimTranscript(msgs, ms.cfg.HistoryCap)
			raw, err := mentordomain.EncodeTranscript(msgs)
			if err != nil {
				return fmt.Errorf("encode transcript: %w", err)
			}
			ok, err := ms.sessionRepo.UpdateTranscript(dbc, sessionID, s.Version, raw)
			if err != nil {
				return fmt.Errorf("update mentor session: %w", err)
			}
			written = ok
			return nil
		})
		if err != nil {
			return err
		}
		if written {
			return nil
		}
		ms.log.Debug("Mentor session version moved, retrying append", "session_id", sessionID, "attempt", attempt)
	}
	return apierr.Conflict("session_busy", "mentor session %s", sessionID)
}

func (ms *mentorService) ClearSessions(ctx context.Context, studentID uuid.UUID) (int64, error) {
	n, err := ms.sessionRepo.DeleteByStudent(dbctx.Context{Ctx: ctx}, studentID)
	if err != nil {
		return 0, fmt.Errorf("clear mentor sessions: %w", err)
	}
	ms.log.Info("Mentor sessions cleared", "student_id", studentID, "deleted", n)
	return n, nil
}
