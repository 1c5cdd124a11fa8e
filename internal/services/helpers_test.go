package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/clients/redis"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	types "github.com/yungbote/atlas-backend/internal/domain"
	"github.com/yungbote/atlas-backend/internal/mentor/prompts"
	"github.com/yungbote/atlas-backend/internal/platform/openai"
)

type fakeCompleter struct {
	mu    sync.Mutex
	reply string
	err   error
	calls [][]openai.Message
}

func (f *fakeCompleter) Enabled() bool { return true }

func (f *fakeCompleter) Complete(_ context.Context, _ string, history []openai.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]openai.Message, len(history))
	copy(cp, history)
	f.calls = append(f.calls, cp)
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func (f *fakeCompleter) lastCall() []openai.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

type fixture struct {
	ctx context.Context
	db  *gorm.DB

	studentRepo repos.StudentRepo
	sessionRepo repos.MentorSessionRepo
	cache       redis.CatalogueCache

	students   StudentService
	curriculum CurriculumService
	progress   ProgressService
	inventions InventionService
	patents    PatentService
	mentor     MentorService
	completer  *fakeCompleter
}

func failingCompleter() *fakeCompleter {
	return &fakeCompleter{err: &openai.CompletionError{Reason: openai.ReasonNetwork}}
}

// newFixture wires every service over a fresh database with the real
// catalogue seeded.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	f := &fixture{
		ctx:         context.Background(),
		db:          db,
		studentRepo: repos.NewStudentRepo(db, log),
		sessionRepo: repos.NewMentorSessionRepo(db, log),
		cache:       redis.NewMemoryCatalogueCache(0),
		completer:   failingCompleter(),
	}
	missionRepo := repos.NewMissionRepo(db, log)
	f.students = NewStudentService(db, log, f.studentRepo)
	f.curriculum = NewCurriculumService(db, log, missionRepo, repos.NewCurriculumVersionRepo(db, log), f.cache)
	f.progress = NewProgressService(db, log, f.studentRepo, repos.NewProgressRepo(db, log), f.curriculum)
	f.inventions = NewInventionService(db, log, f.studentRepo, repos.NewInventionRepo(db, log))
	f.patents = NewPatentService(db, log, f.studentRepo, repos.NewPatentIdeaRepo(db, log))

	fb, err := prompts.LoadFallback()
	require.NoError(t, err)
	f.mentor = NewMentorService(db, log, MentorConfig{}, f.studentRepo, f.sessionRepo, f.completer, fb)

	_, err = f.curriculum.Seed(f.ctx)
	require.NoError(t, err)
	return f
}

func (f *fixture) student(t *testing.T) *types.Student {
	t.Helper()
	s, _, err := f.students.Setup(f.ctx, SetupStudentInput{Name: "Ada"})
	require.NoError(t, err)
	return s
}

func (f *fixture) reload(t *testing.T, s *types.Student) *types.Student {
	t.Helper()
	got, err := f.students.Get(f.ctx, s.ID)
	require.NoError(t, err)
	return got
}
