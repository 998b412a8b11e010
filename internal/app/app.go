package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-questions/internal/config"
	"github.com/gokatarajesh/quiz-questions/internal/logging"
	"github.com/gokatarajesh/quiz-questions/internal/metrics"
	"github.com/gokatarajesh/quiz-questions/internal/question"
	"github.com/gokatarajesh/quiz-questions/internal/server"
	"github.com/gokatarajesh/quiz-questions/internal/snapshot"
	ws "github.com/gokatarajesh/quiz-questions/pkg/http/ws"
)

// Application aggregates shared infrastructure (snapshot backend, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	questions *question.Service
	http      *http.Server
	closers   []io.Closer
}

// New bootstraps the logger, snapshot backend, question store and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Str("snapshot_backend", cfg.Storage.Backend).Msg("starting application bootstrap")

	sink, closers, err := newSink(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Storage.LoadTimeout)
	defer cancel()
	store, err := question.Bootstrap(loadCtx, sink, question.BootstrapOptions{
		SourcePath:   cfg.Storage.BootstrapSource,
		DefaultTopic: cfg.Storage.DefaultTopic,
	}, logger)
	if err != nil {
		closeAll(closers, logger)
		return nil, fmt.Errorf("bootstrap question store: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collectorSet := metrics.New(registry)

	opts := question.ServiceOptions{Metrics: collectorSet}
	var feedHandler http.HandlerFunc
	if cfg.FeedEnabled {
		feed := question.NewFeedPublisher(ws.NewHub(logger), logger)
		opts.Publisher = feed
		feedHandler = feed.HandleFeed
	} else {
		logger.Warn().Msg("question feed disabled (FEED_ENABLED=false)")
	}

	questionSvc := question.NewService(store, sink, logger, opts)
	questionHTTP := question.NewHTTPHandler(questionSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, registry, questionHTTP, feedHandler)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		questions: questionSvc,
		http:      apiServer,
		closers:   closers,
	}, nil
}

// newSink builds the configured snapshot backend and whatever must be closed
// on shutdown.
func newSink(ctx context.Context, cfg *config.App) (snapshot.Sink, []io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		db := stdlib.OpenDBFromPool(pool)
		return snapshot.NewSQLSink(db, snapshot.DriverPostgres), []io.Closer{poolCloser{pool}, db}, nil

	case config.BackendSQLite:
		db, err := snapshot.OpenSQLite(ctx, cfg.SQLite.DSN)
		if err != nil {
			return nil, nil, err
		}
		return snapshot.NewSQLSink(db, snapshot.DriverSQLite), []io.Closer{db}, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("connect redis: %w", err)
		}
		return snapshot.NewRedisSink(client, cfg.Redis.SnapshotKey), []io.Closer{client}, nil

	default:
		return snapshot.NewFileSink(cfg.Storage.SnapshotPath), nil, nil
	}
}

type poolCloser struct {
	pool *pgxpool.Pool
}

func (p poolCloser) Close() error {
	p.pool.Close()
	return nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		runErr = fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	// catches up a snapshot left stale by an earlier failed save
	if err := a.questions.Persist(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("final snapshot write failed")
	}

	closeAll(a.closers, a.logger)
	a.logger.Info().Msg("shutdown complete")
	return runErr
}

func closeAll(closers []io.Closer, logger zerolog.Logger) {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Error().Err(err).Msg("resource close error")
		}
	}
}
