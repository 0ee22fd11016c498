package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/loan-workbench/internal/config"
	"github.com/kirillkom/loan-workbench/internal/core/catalog"
	"github.com/kirillkom/loan-workbench/internal/core/ports"
	"github.com/kirillkom/loan-workbench/internal/core/usecase"
	"github.com/kirillkom/loan-workbench/internal/infrastructure/cache/redis"
	"github.com/kirillkom/loan-workbench/internal/infrastructure/queue/nats"
	"github.com/kirillkom/loan-workbench/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/loan-workbench/internal/infrastructure/resilience"
	"github.com/kirillkom/loan-workbench/internal/observability/metrics"
)

type Role string

const (
	RoleAPI    Role = "api"
	RoleWorker Role = "worker"
)

type App struct {
	Config  config.Config
	Catalog *catalog.Catalog

	Events    ports.EventSubscriber
	Loans     ports.LoanService
	Documents ports.DocumentService
	Snapshots *usecase.ChecklistSnapshotUseCase

	HTTPMetrics   *metrics.HTTPServerMetrics
	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, role Role) (*App, error) {
	cat, err := LoadCatalog(cfg.CatalogOverlayPath)
	if err != nil {
		return nil, err
	}

	executor := resilience.NewExecutor(resilienceConfig(cfg))
	app := &App{Config: cfg, Catalog: cat}
	switch role {
	case RoleWorker:
		app.WorkerMetrics = metrics.NewWorkerMetrics(string(role))
		executor.WithObserver(app.WorkerMetrics)
	default:
		app.HTTPMetrics = metrics.NewHTTPServerMetrics(string(RoleAPI))
		executor.WithObserver(app.HTTPMetrics)
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	loans := postgres.NewLoanRepository(db)
	documents := postgres.NewDocumentRepository(db)
	snapshots := postgres.NewSnapshotRepository(db)

	redisClient := redis.NewClient(redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := redis.Ping(ctx, redisClient); err != nil {
		slog.Warn("redis_unavailable_at_startup", "addr", cfg.RedisAddr, "error", err)
	}
	custom := redis.NewCustomRequirementStore(redisClient, cfg.CustomRequirementTTL, executor)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = redisClient.Close()
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	var publisher ports.EventPublisher = queue
	if app.HTTPMetrics != nil {
		publisher = newObservedPublisher(queue, app.HTTPMetrics)
	}

	app.Events = queue
	app.Loans = usecase.NewLoanUseCase(loans, documents, custom, cat, publisher)
	app.Documents = usecase.NewDocumentUseCase(loans, documents, custom, cat, publisher)
	app.Snapshots = usecase.NewChecklistSnapshotUseCase(loans, documents, custom, cat, snapshots)
	app.closeFn = func() {
		queue.Close()
		_ = redisClient.Close()
		_ = db.Close()
	}
	return app, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// LoadCatalog returns the built-in catalog merged with the overlay file at
// path, if any.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	cat, err := catalog.LoadFile(catalog.Default(), path)
	if err != nil {
		return nil, fmt.Errorf("load requirement catalog: %w", err)
	}
	return cat, nil
}

func resilienceConfig(cfg config.Config) resilience.Config {
	out := resilience.DefaultConfig()
	out.RetryMaxAttempts = cfg.ResilienceRetryMaxAttempts
	out.RetryInitialBackoff = cfg.ResilienceRetryInitialBackoff
	out.RetryMaxBackoff = cfg.ResilienceRetryMaxBackoff
	out.BreakerEnabled = cfg.ResilienceBreakerEnabled
	if cfg.ResilienceBreakerMinRequests > 0 {
		out.BreakerMinRequests = uint32(cfg.ResilienceBreakerMinRequests)
	}
	out.BreakerFailureRatio = cfg.ResilienceBreakerFailureRatio
	out.BreakerOpenTimeout = cfg.ResilienceBreakerOpenTimeout
	return out
}
