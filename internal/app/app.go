package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/yungbote/placeshare-backend/internal/data/db"
	httpserver "github.com/yungbote/placeshare-backend/internal/http"
	"github.com/yungbote/placeshare-backend/internal/jobs/imagesweep"
	"github.com/yungbote/placeshare-backend/internal/observability"
	"github.com/yungbote/placeshare-backend/internal/platform/logger"
	"github.com/yungbote/placeshare-backend/internal/platform/objectstore"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	DB       *db.Service
	Store    objectstore.Store
	Metrics  *observability.Metrics
	Repos    Repos
	Services Services
	Server   *httpserver.Server
	Sweeper  *imagesweep.Sweeper

	redis        *redis.Client
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads the config from the environment and wires the application.
func New(ctx context.Context) (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	log.Info("Configuration loaded", cfg.logFields()...)
	if cfg.LogMode != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	a := &App{Log: log, Cfg: cfg}
	a.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel())
	if cfg.MetricsEnabled {
		a.Metrics = observability.NewMetrics()
	}

	dbService, err := db.New(cfg.DB(), log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init database: %w", err)
	}
	a.DB = dbService
	if err := dbService.AutoMigrateAll(); err != nil {
		a.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	store, err := resolveObjectStore(ctx, log, cfg.ObjectStore())
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store

	geocoder, rdb, err := wireGeocoder(ctx, log, cfg, a.Metrics)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.redis = rdb

	a.Repos = wireRepos(dbService.DB(), log)
	a.Services = wireServices(dbService.DB(), log, cfg, a.Repos, geocoder, store, a.Metrics)
	handlers := wireHandlers(log, dbService.DB(), a.Services, store, cfg)
	middleware := wireMiddleware(log, a.Services)
	a.Server = wireServer(log, cfg, handlers, middleware, a.Metrics)

	if cfg.ImageSweepEnabled {
		a.Sweeper = imagesweep.New(imagesweep.Options{
			Store:    store,
			Owners:   []imagesweep.ImageKeyLister{a.Repos.Place, a.Repos.User},
			Prefix:   "images/",
			Interval: seconds(cfg.ImageSweepIntervalSeconds),
			Grace:    seconds(cfg.ImageSweepGraceSeconds),
			Log:      log,
			Metrics:  a.Metrics,
		})
	}
	return a, nil
}

// Start launches background work. It is a no-op when already started.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Sweeper != nil {
		a.Sweeper.Start(ctx)
	}
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(ctx, addr, seconds(a.Cfg.ShutdownTimeout))
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn("Failed to close redis client", "error", err)
		}
		a.redis = nil
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.Log.Warn("Failed to close database", "error", err)
		}
		a.DB = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("Failed to flush traces", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
