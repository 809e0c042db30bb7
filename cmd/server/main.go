package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/puzzlehunt/internal/config"
	"github.com/playperu/puzzlehunt/internal/database"
	"github.com/playperu/puzzlehunt/internal/handler/health"
	"github.com/playperu/puzzlehunt/internal/migrations"
	"github.com/playperu/puzzlehunt/internal/progress"
	"github.com/playperu/puzzlehunt/internal/server"
	"github.com/playperu/puzzlehunt/internal/telemetry"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// --- Tracing ---
	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, "puzzlehunt")
	if err != nil {
		return fmt.Errorf("setting up tracing: %w", err)
	}
	defer shutdownTracing(context.Background())
	if cfg.OTelEndpoint != "" {
		logger.Info("tracing enabled", "endpoint", cfg.OTelEndpoint)
	}

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	schema, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "schema_version", schema.Version, "applied", len(schema.Applied))

	store := server.NewSQLiteStore(db)
	if cfg.AdminPasswordHash != "" {
		created, err := store.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPasswordHash)
		if err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}
		if created {
			logger.Info("admin account created", "email", cfg.AdminEmail)
		}
	}
	if cfg.SeedDemo {
		if err := server.SeedDemo(ctx, logger, store); err != nil {
			return fmt.Errorf("seeding demo: %w", err)
		}
	}

	checks := map[string]health.Checker{
		"sqlite": dbChecker{db},
	}

	// --- Live feed ---
	var (
		feed      server.Feed
		runBroker func(context.Context) error
	)
	if cfg.RedisURL != "" {
		rdb, err := openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		rb := server.NewRedisBroker(rdb, logger)
		feed, runBroker = rb, rb.Run
		checks["redis"] = rb
	} else {
		feed = server.NewBroker()
	}

	svc := progress.New(store,
		progress.WithPreviousMode(cfg.PreviousMode),
		progress.WithStrictCodes(cfg.StrictCodes),
		progress.WithPublisher(feed),
		progress.WithLogger(logger),
	)

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Service:   svc,
		Admin:     store,
		Directory: store,
		Feed:      feed,
		SPADir:    cfg.SPADir,
		Mount: func(r chi.Router) {
			r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
		},
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	if runBroker != nil {
		g.Go(func() error {
			logger.Info("starting redis event pump")
			return runBroker(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }
