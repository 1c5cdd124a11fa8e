package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/atlas-backend/internal/clients/redis"
	"github.com/yungbote/atlas-backend/internal/data/repos"
	"github.com/yungbote/atlas-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/atlas-backend/internal/http/handlers"
	"github.com/yungbote/atlas-backend/internal/http/response"
	"github.com/yungbote/atlas-backend/internal/mentor/prompts"
	"github.com/yungbote/atlas-backend/internal/platform/openai"
	"github.com/yungbote/atlas-backend/internal/services"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)

	studentRepo := repos.NewStudentRepo(db, log)
	curriculum := services.NewCurriculumService(db, log,
		repos.NewMissionRepo(db, log), repos.NewCurriculumVersionRepo(db, log), redis.NewMemoryCatalogueCache(0))
	_, err := curriculum.Seed(context.Background())
	require.NoError(t, err)

	fb, err := prompts.LoadFallback()
	require.NoError(t, err)
	// An unconfigured client always reports disabled, so replies come from the fallback table.
	completer := openai.NewClient(openai.Config{}, log)

	return NewRouter(RouterConfig{
		Log:              log,
		HealthHandler:    httpH.NewHealthHandler(db),
		StudentHandler:   httpH.NewStudentHandler(log, services.NewStudentService(db, log, studentRepo)),
		MissionHandler:   httpH.NewMissionHandler(log, curriculum),
		ProgressHandler:  httpH.NewProgressHandler(log, services.NewProgressService(db, log, studentRepo, repos.NewProgressRepo(db, log), curriculum)),
		InventionHandler: httpH.NewInventionHandler(log, services.NewInventionService(db, log, studentRepo, repos.NewInventionRepo(db, log))),
		PatentHandler:    httpH.NewPatentHandler(log, services.NewPatentService(db, log, studentRepo, repos.NewPatentIdeaRepo(db, log))),
		MentorHandler: httpH.NewMentorHandler(log, services.NewMentorService(db, log, services.MentorConfig{},
			studentRepo, repos.NewMentorSessionRepo(db, log), completer, fb)),
	})
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[response.ErrorEnvelope](t, rec).Error.Code
}

func setupStudent(t *testing.T, r *gin.Engine) string {
	t.Helper()
	rec := do(t, r, http.MethodPost, "/api/student", map[string]any{"name": "Ada", "age": 14})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[map[string]any](t, rec)["id"].(string)
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestStudentRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/student", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", rec.Body.String())

	id := setupStudent(t, r)

	rec = do(t, r, http.MethodPost, "/api/student", map[string]any{"name": "Someone else"})
	assert.Equal(t, http.StatusOK, rec.Code)
	again := decode[map[string]any](t, rec)
	assert.Equal(t, id, again["id"])
	assert.Equal(t, "Ada", again["name"])
	assert.EqualValues(t, 1, again["currentWeek"])

	rec = do(t, r, http.MethodGet, "/api/students/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, r, http.MethodGet, "/api/students/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_student_id", errorCode(t, rec))
}

func TestMissionRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := do(t, r, http.MethodGet, "/api/missions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 52)

	rec = do(t, r, http.MethodGet, "/api/missions/3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, decode[map[string]any](t, rec)["weekNumber"])

	rec = do(t, r, http.MethodGet, "/api/missions/53", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/missions/three", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_week", errorCode(t, rec))
}

func TestProgressRoutes(t *testing.T) {
	r := newTestRouter(t)
	id := setupStudent(t, r)

	rec := do(t, r, http.MethodGet, fmt.Sprintf("/api/progress/%s/1", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "available", decode[map[string]any](t, rec)["status"])

	rec = do(t, r, http.MethodPost, fmt.Sprintf("/api/progress/%s/1", id), map[string]any{"status": "completed", "notes": "done"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "completed", decode[map[string]any](t, rec)["status"])

	rec = do(t, r, http.MethodPost, fmt.Sprintf("/api/progress/%s/1", id), map[string]any{"status": "in_progress"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_transition", errorCode(t, rec))

	rec = do(t, r, http.MethodPost, fmt.Sprintf("/api/progress/%s/2", id), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "in_progress", decode[map[string]any](t, rec)["status"])

	rec = do(t, r, http.MethodGet, "/api/progress/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	agg := decode[services.ProgressAggregate](t, rec)
	assert.Equal(t, 1, agg.CompletedMissions)
	assert.Equal(t, 1, agg.InProgressMissions)
	assert.Equal(t, 2, agg.CurrentWeek)
	assert.Len(t, agg.WeeklyProgress, 52)

	rec = do(t, r, http.MethodDelete, fmt.Sprintf("/api/progress/%s/1", id), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodGet, fmt.Sprintf("/api/progress/%s/1", id), nil)
	assert.Equal(t, "available", decode[map[string]any](t, rec)["status"])

	rec = do(t, r, http.MethodPost, fmt.Sprintf("/api/progress/%s/0", id), map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/progress/nope/1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProgressUpsertEmptyChunkedBody(t *testing.T) {
	r := newTestRouter(t)
	id := setupStudent(t, r)

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/progress/%s/4", id), bytes.NewReader(nil))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "in_progress", decode[map[string]any](t, rec)["status"])

	req = httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/progress/%s/5", id), bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", errorCode(t, rec))
}

func TestInventionAndPatentRoutes(t *testing.T) {
	r := newTestRouter(t)
	id := setupStudent(t, r)

	rec := do(t, r, http.MethodPost, "/api/students/"+id+"/inventions", map[string]any{"title": "Gesture glove", "patentable": true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invID := decode[map[string]any](t, rec)["id"].(string)

	rec = do(t, r, http.MethodPost, "/api/students/"+id+"/inventions", map[string]any{"title": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, r, http.MethodPut, "/api/inventions/"+invID, map[string]any{"status": "prototype"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "prototype", decode[map[string]any](t, rec)["status"])

	rec = do(t, r, http.MethodGet, "/api/students/"+id, nil)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["totalInventions"])

	rec = do(t, r, http.MethodDelete, "/api/inventions/"+invID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode[map[string]any](t, rec)["deleted"])
	rec = do(t, r, http.MethodDelete, "/api/inventions/"+invID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode[map[string]any](t, rec)["deleted"])

	rec = do(t, r, http.MethodGet, "/api/students/"+id, nil)
	assert.EqualValues(t, 0, decode[map[string]any](t, rec)["totalInventions"])

	rec = do(t, r, http.MethodPost, "/api/students/"+id+"/patents", map[string]any{"title": "Glove claims"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	patentID := decode[map[string]any](t, rec)["id"].(string)

	rec = do(t, r, http.MethodPut, "/api/patents/"+patentID, map[string]any{"stage": 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/students/"+id+"/patents", nil)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	rec = do(t, r, http.MethodDelete, "/api/patents/"+patentID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, r, http.MethodGet, "/api/patents/"+patentID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMentorRoutes(t *testing.T) {
	r := newTestRouter(t)
	id := setupStudent(t, r)

	rec := do(t, r, http.MethodPost, "/api/mentor/chat", map[string]any{"studentId": id, "message": "How do embeddings work?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[services.PostMessageResult](t, rec)
	assert.Equal(t, services.ReplySourceFallback, res.Source)
	assert.Contains(t, res.Reply, "Vector Databases")

	rec = do(t, r, http.MethodPost, "/api/mentor/chat", map[string]any{
		"studentId": id, "sessionId": res.SessionID.String(), "message": "thanks",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, res.SessionID, decode[services.PostMessageResult](t, rec).SessionID)

	rec = do(t, r, http.MethodGet, "/api/mentor/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[services.MentorSessionView](t, rec)
	assert.Equal(t, res.SessionID, view.ID)
	assert.Len(t, view.Messages, 4)

	rec = do(t, r, http.MethodPost, "/api/mentor/chat", map[string]any{"studentId": id})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_fields", errorCode(t, rec))

	rec = do(t, r, http.MethodDelete, "/api/mentor/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode[map[string]any](t, rec)["deleted"])
}
