package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/studynotion-backend/internal/data/db"
	"github.com/yungbote/studynotion-backend/internal/http"
	"github.com/yungbote/studynotion-backend/internal/observability"
	"github.com/yungbote/studynotion-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services

	shutdownOtel func(context.Context) error
	cancel       context.CancelFunc
}

// New loads config from configPath (and the environment) and wires every layer.
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(ctx, log, cfg)
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	shutdownOtel := observability.InitOTel(ctx, log, cfg.Otel())
	observability.Init(cfg.MetricsEnabled)

	theDB, err := db.Open(log, cfg.DB())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init db: %w", err)
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	clientset, err := wireClients(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clientset)
	handlerset := wireHandlers(log, cfg, theDB, serviceset)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, handlerset, middleware, clientset.Media)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		shutdownOtel: shutdownOtel,
	}, nil
}

// Start launches background collectors. It is idempotent.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if m := observability.Current(); m != nil {
		interval := time.Duration(a.Cfg.DBStatsIntervalSecs) * time.Second
		m.StartDBCollector(ctx, a.Log, a.DB, interval)
	}
}

// Run starts background collectors and serves HTTP on Cfg.HTTPAddr until ctx ends.
func (a *App) Run(ctx context.Context) error {
	a.Start()
	a.Log.Info("Server listening", "addr", a.Cfg.HTTPAddr)
	return http.NewServer(a.Router).Run(ctx, a.Cfg.HTTPAddr)
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
	if a.shutdownOtel != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownOtel(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
