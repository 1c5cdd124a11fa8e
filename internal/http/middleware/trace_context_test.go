package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/pkg/ctxutil"
)

func traceRouter(seen **ctxutil.TraceData) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		*seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	var td *ctxutil.TraceData
	r := traceRouter(&td)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.NotNil(t, td)
	assert.NotEmpty(t, td.RequestID)
	assert.Equal(t, td.RequestID, rec.Header().Get(headerRequestID))
	assert.Equal(t, td.TraceID, rec.Header().Get(headerTraceID))
}

func TestAttachTraceContextKeepsClientIDs(t *testing.T) {
	var td *ctxutil.TraceData
	r := traceRouter(&td)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-123")
	req.Header.Set(headerTraceID, "trace-abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotNil(t, td)
	assert.Equal(t, "req-123", td.RequestID)
	assert.Equal(t, "trace-abc", td.TraceID)
}

func TestAttachTraceContextRejectsUnsafeIDs(t *testing.T) {
	var td *ctxutil.TraceData
	r := traceRouter(&td)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, strings.Repeat("a", maxClientIDLen+1))
	req.Header.Set(headerTraceID, "has space")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.NotNil(t, td)
	assert.Len(t, td.RequestID, 36)
	assert.Equal(t, td.RequestID, td.TraceID)
}

func TestMetricsSkipsProbesAndLabelsUnmatched(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics(observability.MetricsConfig{Enabled: true})
	r := gin.New()
	r.Use(Metrics(m))
	r.GET("/healthcheck", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/missions/:week", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/healthcheck", "/api/missions/3", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	var sb strings.Builder
	require.NoError(t, m.WritePrometheus(&sb))
	out := sb.String()
	assert.Contains(t, out, `route="/api/missions/:week"`)
	assert.Contains(t, out, `route="unmatched"`)
	assert.NotContains(t, out, `route="/healthcheck"`)
}
