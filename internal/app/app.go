package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	dbpkg "github.com/yungbote/atlas-backend/internal/data/db"
	"github.com/yungbote/atlas-backend/internal/http"
	"github.com/yungbote/atlas-backend/internal/observability"
	"github.com/yungbote/atlas-backend/internal/pkg/logger"
)

const serviceName = "atlas"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	dbService    *dbpkg.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// Open connects to the database and runs migrations. It is all the migrate
// command needs.
func Open(cfg Config, log *logger.Logger) (*dbpkg.Service, error) {
	svc, err := dbpkg.NewService(cfg.DB(), log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return svc, nil
}

func New(ctx context.Context, cfg Config, log *logger.Logger) (*App, error) {
	cfg.Log(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: serviceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     observability.ParseHeaders(cfg.OtelHeaders),
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})
	metrics := observability.Init(log, observability.MetricsConfig{
		Enabled:        cfg.MetricsEnabled,
		ScrapeInterval: secondsToDuration(cfg.MetricsScrapeIntervalSeconds),
	})

	dbService, err := Open(cfg, log)
	if err != nil {
		return nil, err
	}
	theDB := dbService.DB()

	clientset, err := wireClients(cfg, log)
	if err != nil {
		_ = dbService.Close()
		return nil, err
	}

	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, clientset)
	if err != nil {
		clientset.Close()
		_ = dbService.Close()
		return nil, err
	}

	handlerset := wireHandlers(log, theDB, serviceset)
	router := wireRouter(log, cfg, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clientset,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Start seeds the catalogue when configured and starts the background
// metrics collectors.
func (a *App) Start(ctx context.Context) error {
	if a == nil || a.cancel != nil {
		return nil
	}
	if a.Cfg.SeedOnStart {
		res, err := a.Services.Curriculum.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed curriculum: %w", err)
		}
		a.Log.Info("Curriculum ready", "version", res.Version, "missions", res.MissionCount, "skipped", res.Skipped)
	}

	bg, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.Metrics.StartDBCollector(bg, a.Log, a.DB)
	if a.Cfg.RedisAddr != "" {
		a.Metrics.StartRedisCollector(bg, a.Log, &goredis.Options{
			Addr:     a.Cfg.RedisAddr,
			Password: a.Cfg.RedisPassword,
			DB:       a.Cfg.RedisDB,
		})
	}
	return nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return http.NewServerWithEngine(a.Router, a.Log).Run(ctx, a.Cfg.Addr())
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.otelShutdown != nil {
		_ = a.otelShutdown(context.Background())
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
