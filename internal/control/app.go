package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vietddude/fridgechef/internal/api"
	"github.com/vietddude/fridgechef/internal/chef"
	"github.com/vietddude/fridgechef/internal/core/config"
	"github.com/vietddude/fridgechef/internal/core/worker"
	"github.com/vietddude/fridgechef/internal/genai"
	"github.com/vietddude/fridgechef/internal/health"
	redisclient "github.com/vietddude/fridgechef/internal/infra/redis"
	"github.com/vietddude/fridgechef/internal/infra/storage"
	"github.com/vietddude/fridgechef/internal/infra/storage/memory"
	"github.com/vietddude/fridgechef/internal/infra/storage/postgres"
)

const grpcSyncInterval = 15 * time.Second

// App is the main application struct that manages the service lifecycle.
type App struct {
	cfg         *config.AppConfig
	executor    *genai.Executor
	service     *chef.Service
	store       storage.Store
	healthMon   *health.Monitor
	server      *api.Server
	grpcServer  *health.GRPCServer
	db          *postgres.DB
	redisClient *redisclient.Client
	log         *slog.Logger
}

// Option customizes NewApp.
type Option func(*options)

type options struct {
	genaiOpts []genai.Option
}

// WithGenAIOptions passes options to the executor, e.g. a custom HTTP client.
func WithGenAIOptions(opts ...genai.Option) Option {
	return func(o *options) { o.genaiOpts = append(o.genaiOpts, opts...) }
}

// NewApp creates the application with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: slog.Default()}

	// 1. Initialize Storage
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		a.db = db
		a.store = db.Store()
		a.log.Info("Using PostgreSQL storage")
	} else {
		a.store = memory.NewMemoryStorage().Store()
		a.log.Info("Using Memory storage")
	}

	// 2. Cache and quota
	var cache chef.RecipeCache
	var quota chef.Limiter
	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			a.closeStores()
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		a.redisClient = rc
		cache = redisclient.NewRecipeCache(rc, cfg.Cache.TTL)
		quota = redisclient.NewQuota(rc, cfg.Quota.DailyGenerations)
		a.log.Info("Using Redis cache")
	} else {
		cache = memory.NewRecipeCache(cfg.Cache.TTL)
		quota = memory.NewQuota(cfg.Quota.DailyGenerations)
	}

	// 3. Model executor
	genaiLog := a.log.With("component", "genai")
	genaiOpts := append([]genai.Option{
		genai.WithLogger(genaiLog),
		genai.WithRetryHook(func(attempt int, delay time.Duration, err error) {
			genaiLog.Info("Model call failed, retrying", "attempt", attempt, "delay", delay, "error", err)
		}),
	}, o.genaiOpts...)
	executor, err := genai.NewExecutor(cfg.GenAI, genaiOpts...)
	if err != nil {
		a.closeStores()
		return nil, err
	}
	a.executor = executor

	// 4. Service
	a.service = chef.NewService(chef.Deps{
		Generator: executor,
		Cache:     cache,
		Quota:     quota,
		Store:     a.store,
		Logger:    a.log.With("component", "chef"),
	})

	// 5. Health and servers
	a.healthMon = health.NewMonitor(executor.Monitor)
	if a.db != nil {
		a.healthMon.AddDependency("database", a.db, true)
	}
	if a.redisClient != nil {
		a.healthMon.AddDependency("redis", a.redisClient, false)
	}
	a.server = api.NewServer(a.service, a.healthMon, cfg.Server.Port)
	if cfg.Server.GRPCPort != 0 {
		a.grpcServer = health.NewGRPCServer(a.healthMon, cfg.Server.GRPCPort)
	}

	return a, nil
}

// Service returns the assistant service, for one-shot CLI commands.
func (a *App) Service() *chef.Service {
	return a.service
}

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Start starts the servers and background collectors. It does not block.
func (a *App) Start(ctx context.Context) error {
	go func() {
		a.log.Info("Starting HTTP server", "port", a.cfg.Server.Port)
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("HTTP server failed", "error", err)
		}
	}()

	if a.grpcServer != nil {
		go func() {
			a.log.Info("Starting gRPC health server", "port", a.cfg.Server.GRPCPort)
			if err := a.grpcServer.Start(); err != nil {
				a.log.Error("gRPC server failed", "error", err)
			}
		}()
		go a.grpcServer.RunSync(ctx, grpcSyncInterval)
	}

	// Start History Pruner
	go worker.NewPruner(a.cfg.History.Retention, a.store.History).Start(ctx)

	// Start DB Metrics Collector
	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}
	return nil
}

// Stop shuts the servers down and closes connections.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping fridgechef...")

	if a.grpcServer != nil {
		a.grpcServer.Stop(ctx)
	}
	err := a.server.Stop(ctx)
	a.closeStores()
	return err
}

// Close releases connections without touching the servers.
func (a *App) Close() {
	a.closeStores()
}

func (a *App) closeStores() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
		a.redisClient = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
		a.db = nil
	}
}
