package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/atlas-backend/internal/pkg/errors"
	"github.com/yungbote/atlas-backend/internal/platform/openai"
)

func (f *fixture) transcript(t *testing.T, sessionID uuid.UUID) []types.MentorMessage {
	t.Helper()
	s, err := f.sessionRepo.GetByID(dbctx.Context{Ctx: f.ctx}, sessionID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return f.mentor.(*mentorService).decode(s)
}

func TestMentorFallbackStartsSession(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "What is a vector database?"})
	require.NoError(t, err)
	assert.Equal(t, ReplySourceFallback, res.Source)
	assert.Contains(t, res.Reply, "Vector Databases")
	assert.NotEqual(t, uuid.Nil, res.SessionID)

	msgs := f.transcript(t, res.SessionID)
	require.Len(t, msgs, 2)
	assert.Equal(t, types.MentorRoleUser, msgs[0].Role)
	assert.Equal(t, "What is a vector database?", msgs[0].Content)
	assert.Equal(t, types.MentorRoleAssistant, msgs[1].Role)
	assert.Equal(t, res.Reply, msgs[1].Content)
}

func TestMentorGreetingUsesName(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "Good morning"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Reply, "Hey Ada!"), res.Reply)

	res, err = f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "Good morning", StudentName: "Grace"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Reply, "Hey Grace!"), res.Reply)
}

func TestMentorUsesCompletion(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)
	f.completer.err = nil
	f.completer.reply = "Start by sketching the data flow first."

	res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "How should I begin?"})
	require.NoError(t, err)
	assert.Equal(t, ReplySourceCompletion, res.Source)
	assert.Equal(t, "Start by sketching the data flow first.", res.Reply)

	call := f.completer.lastCall()
	require.Len(t, call, 1)
	assert.Equal(t, openai.Message{Role: types.MentorRoleUser, Content: "How should I begin?"}, call[0])
}

func TestMentorShortCompletionFallsBack(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)
	f.completer.err = nil

	for _, reply := range []string{"", "   ", "ok", "0123456789", "  ten chars!  "} {
		f.completer.reply = reply
		res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "tell me about sql"})
		require.NoError(t, err)
		assert.Equal(t, ReplySourceFallback, res.Source, "reply %q", reply)
	}

	f.completer.reply = "01234567890"
	res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "tell me about sql"})
	require.NoError(t, err)
	assert.Equal(t, ReplySourceCompletion, res.Source)
}

func TestMentorContextWindowAndCap(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	var sessionID *uuid.UUID
	for i := 1; i <= 45; i++ {
		res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{
			StudentID: s.ID,
			SessionID: sessionID,
			Message:   fmt.Sprintf("question %d", i),
		})
		require.NoError(t, err)
		if sessionID == nil {
			id := res.SessionID
			sessionID = &id
		} else {
			assert.Equal(t, *sessionID, res.SessionID)
		}
	}

	call := f.completer.lastCall()
	require.Len(t, call, DefaultMentorContextTurns)
	assert.Equal(t, "question 45", call[len(call)-1].Content)
	assert.Equal(t, types.MentorRoleAssistant, call[0].Role)
	assert.Equal(t, "question 41", call[1].Content)

	msgs := f.transcript(t, *sessionID)
	require.Len(t, msgs, DefaultMentorHistoryCap)
	assert.Equal(t, "question 26", msgs[0].Content)
	assert.Equal(t, types.MentorRoleUser, msgs[0].Role)
	assert.Equal(t, "question 45", msgs[38].Content)
	assert.Equal(t, types.MentorRoleAssistant, msgs[39].Role)
}

func TestMentorForeignSessionStartsNew(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	unknown := uuid.New()
	res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, SessionID: &unknown, Message: "hi"})
	require.NoError(t, err)
	assert.NotEqual(t, unknown, res.SessionID)
	assert.Len(t, f.transcript(t, res.SessionID), 2)
}

func TestMentorGetOrCreateIdempotent(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	first, err := f.mentor.GetOrCreateSession(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, first.Messages)
	assert.Equal(t, "general", first.Context)

	second, err := f.mentor.GetOrCreateSession(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, SessionID: &first.ID, Message: "game physics?"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, res.SessionID)

	third, err := f.mentor.GetOrCreateSession(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
	assert.Len(t, third.Messages, 2)

	_, err = f.mentor.GetOrCreateSession(f.ctx, uuid.New())
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestMentorClearSessions(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	for i := 0; i < 3; i++ {
		_, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "hello"})
		require.NoError(t, err)
	}
	n, err := f.mentor.ClearSessions(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = f.mentor.ClearSessions(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	view, err := f.mentor.GetOrCreateSession(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Messages)
}

func TestMentorCorruptTranscriptIsFailSoft(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	res, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "hello"})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&types.MentorSession{}).
		Where("id = ?", res.SessionID).
		Update("messages", datatypes.JSON(`[{"role":1}]`)).Error)

	view, err := f.mentor.GetOrCreateSession(f.ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Messages)

	res, err = f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, SessionID: &res.SessionID, Message: "again"})
	require.NoError(t, err)
	assert.Len(t, f.transcript(t, res.SessionID), 2)
}

func TestMentorConcurrentAppendsKeepEveryTurn(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	view, err := f.mentor.GetOrCreateSession(f.ctx, s.ID)
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.mentor.PostMessage(f.ctx, PostMessageInput{
				StudentID: s.ID,
				SessionID: &view.ID,
				Message:   fmt.Sprintf("parallel %d", i),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	msgs := f.transcript(t, view.ID)
	require.Len(t, msgs, 2*n)
	seen := map[string]bool{}
	for i := 0; i < len(msgs); i += 2 {
		assert.Equal(t, types.MentorRoleUser, msgs[i].Role)
		assert.Equal(t, types.MentorRoleAssistant, msgs[i+1].Role)
		seen[msgs[i].Content] = true
	}
	assert.Len(t, seen, n)
}

func TestMentorValidation(t *testing.T) {
	f := newFixture(t)
	s := f.student(t)

	_, err := f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: s.ID, Message: "   "})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
	_, err = f.mentor.PostMessage(f.ctx, PostMessageInput{Message: "hello"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
	_, err = f.mentor.PostMessage(f.ctx, PostMessageInput{StudentID: uuid.New(), Message: "hello"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
