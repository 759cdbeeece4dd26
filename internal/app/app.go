package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/capperdesk/grader/external/jobqueue"
	"github.com/capperdesk/grader/external/oddsfeed"
	"github.com/capperdesk/grader/internal/config"
	"github.com/capperdesk/grader/internal/domain/game"
	"github.com/capperdesk/grader/internal/domain/ledger"
	"github.com/capperdesk/grader/internal/domain/pick"
	"github.com/capperdesk/grader/internal/infrastructure/cache"
	"github.com/capperdesk/grader/internal/infrastructure/repository/memory"
	"github.com/capperdesk/grader/internal/infrastructure/repository/postgres"
	"github.com/capperdesk/grader/internal/interfaces/httpapi"
	"github.com/capperdesk/grader/internal/platform/logging"
	"github.com/capperdesk/grader/internal/platform/resilience"
	"github.com/capperdesk/grader/internal/usecase"
)

// NewHTTPServer wires repositories, external clients and the grading
// service into an HTTP server. The returned cleanup drains the ledger
// outbox and closes storage connections.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	var (
		pickRepo   pick.Repository
		gameRepo   game.Repository
		ledgerRepo ledger.Repository
		db         *sqlx.DB
	)

	switch cfg.StorageDriver {
	case config.StorageDriverPostgres:
		var err error
		db, err = openDB(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		pickRepo = postgres.NewPickRepository(db)
		gameRepo = postgres.NewGameRepository(db)
		ledgerRepo = postgres.NewLedgerRepository(db)
	case config.StorageDriverMemory:
		pickRepo = memory.NewPickRepository(memory.SeedPicks())
		gameRepo = memory.NewGameRepository(memory.SeedGames())
		ledgerRepo = memory.NewLedgerRepository()
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	var (
		linesCache  usecase.LinesCache
		redisClient *redis.Client
	)
	if cfg.RedisEnabled {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			closeDB(db, logger)
			return nil, nil, fmt.Errorf("parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		linesCache = cache.NewRedisLinesCache(redisClient, cfg.LinesCacheTTL, logger)
	} else {
		linesCache = cache.NewMemoryLinesCache(cfg.LinesCacheTTL)
	}

	var feed usecase.LinesFeed
	if cfg.OddsFeedEnabled {
		feed = oddsfeed.NewClient(oddsfeed.ClientConfig{
			BaseURL:    cfg.OddsFeedBaseURL,
			APIKey:     cfg.OddsFeedAPIKey,
			Timeout:    cfg.OddsFeedTimeout,
			MaxRetries: cfg.OddsFeedMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.OddsFeedCircuitEnabled,
				FailureThreshold: cfg.OddsFeedCircuitFailureCount,
				OpenTimeout:      cfg.OddsFeedCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.OddsFeedCircuitHalfOpenMaxReq,
			},
		})
	}

	ledgerOutbox, err := usecase.NewLedgerOutboxService(ledgerRepo, cfg.LedgerWorkers, logger)
	if err != nil {
		closeDB(db, logger)
		return nil, nil, fmt.Errorf("start ledger outbox: %w", err)
	}

	gradingSvc := usecase.NewGradingService(
		pickRepo,
		gameRepo,
		feed,
		linesCache,
		ledgerOutbox,
		usecase.GradingConfig{
			DefaultWindow:   cfg.GradingWindow,
			PrefetchWorkers: cfg.GradingPrefetchWorkers,
		},
		logger,
	)

	var jobQueue usecase.JobQueue
	rescheduleInterval := cfg.GradingInterval
	if cfg.QStashEnabled {
		jobQueue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	} else {
		jobQueue = usecase.NewNoopJobQueue()
		rescheduleInterval = 0
	}

	handler := httpapi.NewHandler(gradingSvc, jobQueue, rescheduleInterval, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		ledgerOutbox.Close()
		closeDB(db, logger)
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func(ctx context.Context) error {
		ledgerOutbox.Close()
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("close redis client failed", "error", err)
			}
		}
		if db != nil {
			return db.Close()
		}
		return nil
	}

	return server, cleanup, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dbURL,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func closeDB(db *sqlx.DB, logger *logging.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Warn("close database failed", "error", err)
	}
}
