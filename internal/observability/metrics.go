package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

type Metrics struct {
	apiRequests *CounterVec
	apiLatency  *HistogramVec
	apiInflight *Gauge
	apiReqTotal *Counter
	apiReqError *Counter

	completionRequests *CounterVec
	completionLatency  *HistogramVec
	mentorReplies      *CounterVec
	missionsCompleted  *CounterVec
	catalogueLookups   *CounterVec

	dbStats   *GaugeVec
	redisUp   *Gauge
	redisPing *Gauge

	scrapeInterval time.Duration
}

type MetricsConfig struct {
	Enabled bool
	// ScrapeInterval paces the database and redis collectors.
	ScrapeInterval time.Duration
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide metrics, or nil when metrics are off.
// Every method is safe on a nil receiver.
func Current() *Metrics {
	return instance
}

func Init(log *logger.Logger, cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics(cfg)
		if log != nil {
			log.Info("metrics initialized", "scrape_interval", instance.scrapeInterval.String())
		}
	})
	return instance
}

// NewMetrics builds an unregistered set, for tests and for Init.
func NewMetrics(cfg MetricsConfig) *Metrics {
	interval := cfg.ScrapeInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Metrics{
		apiRequests: NewCounterVec("atlas_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"atlas_api_request_duration_seconds",
			"API request latency in seconds by method/route/status.",
			[]string{"method", "route", "status"},
			[]float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("atlas_api_inflight_requests", "In-flight API requests."),
		apiReqTotal: NewCounter("atlas_api_requests_total_all", "Total API requests (all)."),
		apiReqError: NewCounter("atlas_api_requests_error_total", "Total API requests answered with 5xx."),

		completionRequests: NewCounterVec("atlas_completion_requests_total", "Completion calls by outcome.", []string{"outcome"}),
		completionLatency: NewHistogramVec(
			"atlas_completion_duration_seconds",
			"Completion call latency in seconds by outcome.",
			[]string{"outcome"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		),
		mentorReplies:     NewCounterVec("atlas_mentor_replies_total", "Mentor replies by source and fallback rule.", []string{"source", "rule"}),
		missionsCompleted: NewCounterVec("atlas_missions_completed_total", "First-time mission completions by category.", []string{"category"}),
		catalogueLookups:  NewCounterVec("atlas_catalogue_cache_lookups_total", "Catalogue cache lookups by result.", []string{"result"}),

		dbStats:   NewGaugeVec("atlas_db_pool", "Database pool stats.", []string{"stat"}),
		redisUp:   NewGauge("atlas_redis_up", "Redis reachability (1 up, 0 down)."),
		redisPing: NewGauge("atlas_redis_ping_seconds", "Redis ping latency in seconds."),

		scrapeInterval: interval,
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.apiReqTotal,
		m.apiReqError,
		m.completionRequests,
		m.completionLatency,
		m.mentorReplies,
		m.missionsCompleted,
		m.catalogueLookups,
		m.dbStats,
		m.redisUp,
		m.redisPing,
	}
	for _, wr := range writers {
		if err := wr.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route, status)
	m.apiReqTotal.Inc()
	if isServerErrorStatus(status) {
		m.apiReqError.Inc()
	}
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveCompletion records one completion call. outcome is "ok" or the
// failure reason reported by the client.
func (m *Metrics) ObserveCompletion(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	outcome = strings.TrimSpace(outcome)
	if outcome == "" {
		outcome = "unknown"
	}
	m.completionRequests.Inc(outcome)
	if dur > 0 {
		m.completionLatency.Observe(dur.Seconds(), outcome)
	}
}

func (m *Metrics) IncMentorReply(source, rule string) {
	if m == nil {
		return
	}
	if rule == "" {
		rule = "none"
	}
	m.mentorReplies.Inc(source, rule)
}

func (m *Metrics) IncMissionCompleted(category string) {
	if m == nil {
		return
	}
	if category == "" {
		category = "unknown"
	}
	m.missionsCompleted.Inc(category)
}

func (m *Metrics) IncCatalogueLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.catalogueLookups.Inc("hit")
		return
	}
	m.catalogueLookups.Inc("miss")
}

func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB) {
	if m == nil || db == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					if log != nil {
						log.Warn("metrics: db stats unavailable", "error", err)
					}
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.Set(float64(stats.OpenConnections), "open_connections")
				m.dbStats.Set(float64(stats.InUse), "in_use")
				m.dbStats.Set(float64(stats.Idle), "idle")
				m.dbStats.Set(float64(stats.WaitCount), "wait_count")
				m.dbStats.Set(stats.WaitDuration.Seconds(), "wait_duration_seconds")
				m.dbStats.Set(float64(stats.MaxOpenConnections), "max_open_connections")
			}
		}
	}()
}

func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, opts *redis.Options) {
	if m == nil || opts == nil || strings.TrimSpace(opts.Addr) == "" {
		return
	}
	rdb := redis.NewClient(opts)
	go func() {
		ticker := time.NewTicker(m.scrapeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_ = rdb.Close()
				return
			case <-ticker.C:
				start := time.Now()
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					if log != nil {
						log.Warn("metrics: redis ping failed", "error", err)
					}
					continue
				}
				m.redisUp.Set(1)
				m.redisPing.Set(time.Since(start).Seconds())
			}
		}
	}()
}
