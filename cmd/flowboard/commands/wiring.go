package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/flowboard/core/internal/adapters/gotrue"
	"github.com/flowboard/core/internal/adapters/postgrest"
	"github.com/flowboard/core/internal/adapters/repository"
	"github.com/flowboard/core/internal/adapters/rowmap"
	"github.com/flowboard/core/internal/adapters/sessioncache"
	"github.com/flowboard/core/internal/application/services"
	"github.com/flowboard/core/internal/infrastructure/config"
	"github.com/flowboard/core/internal/infrastructure/database"
	"github.com/flowboard/core/internal/infrastructure/logger"
	"github.com/flowboard/core/internal/infrastructure/server"
	"github.com/flowboard/core/internal/ports"
)

// stack is everything a command needs, wired for the configured store driver.
type stack struct {
	cfg    *config.Config
	logger *logger.Logger

	db       *database.DB
	redis    *sessioncache.Redis
	identity *services.LocalIdentity

	tasks    *services.TaskStore
	auth     *services.AuthService
	boards   *services.BoardService
	registry *services.BoardRegistry
	metrics  *prometheus.Registry
}

func loadConfig(logOutput string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logOutput != "" {
		cfg.Logger.Output = logOutput
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, appLogger, nil
}

// buildStack selects the task table and identity provider by store driver:
// "rest" talks to the hosted backend, "postgres" and "sqlite" use a local
// database with the built-in identity provider.
func buildStack(ctx context.Context, cfg *config.Config, appLogger *logger.Logger) (*stack, error) {
	s := &stack{
		cfg:     cfg,
		logger:  appLogger,
		metrics: prometheus.NewRegistry(),
	}
	s.metrics.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var (
		table    ports.TableStore
		provider ports.IdentityProvider
	)

	switch cfg.Store.Driver {
	case "rest":
		table = postgrest.New(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout, appLogger)
		provider = gotrue.New(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout, appLogger)
	default:
		db, err := database.New(cfg.Store.Driver, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.db = db
		table = repository.NewSQLTableStore(db.DB, cfg.Store.Driver, map[string][]string{cfg.Store.Table: rowmap.Columns}, appLogger)
		s.identity = services.NewLocalIdentity(repository.NewUserRepository(db.DB), cfg.JWT, cfg.App.OrgDomain, appLogger)
		provider = s.identity
	}

	var cache ports.SessionCache
	switch cfg.Session.Cache {
	case "redis":
		redis, err := sessioncache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.redis = redis
		cache = redis
	default:
		cache = sessioncache.NewMemory()
	}

	s.tasks = services.NewTaskStore(table, cfg.Store.Table, appLogger)
	s.auth = services.NewAuthService(provider, cache, cfg.Session.TTL, cfg.App.OrgDomain, appLogger)
	s.boards = services.NewBoardService(s.tasks, services.NewBoardMetrics(s.metrics), appLogger)
	s.registry = services.NewBoardRegistry(s.boards, cfg.Session.BoardIdleTTL, cfg.Session.MaxBoards)

	appLogger.Infow("Stack ready",
		"store", cfg.Store.Driver,
		"table", cfg.Store.Table,
		"session_cache", cfg.Session.Cache,
	)
	return s, nil
}

func (s *stack) dependencies() server.Dependencies {
	checks := make(map[string]server.HealthCheck)
	if s.db != nil {
		checks["database"] = s.db.HealthCheck
	}
	if s.redis != nil {
		checks["redis"] = s.redis.Ping
	}

	return server.Dependencies{
		Auth:     s.auth,
		Boards:   s.boards,
		Registry: s.registry,
		Metrics:  s.metrics,
		Checks:   checks,
	}
}

func (s *stack) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warnw("Failed to close redis", "error", err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Warnw("Failed to close database", "error", err)
		}
	}
}
