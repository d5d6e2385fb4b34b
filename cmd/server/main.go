package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/emberlabs/snapmetrics/internal/api"
	"github.com/emberlabs/snapmetrics/internal/config"
	"github.com/emberlabs/snapmetrics/internal/pkg/logger"
	"github.com/emberlabs/snapmetrics/internal/repository/postgres"
	"github.com/emberlabs/snapmetrics/internal/service/share"
	"github.com/emberlabs/snapmetrics/internal/snapshot"
	"github.com/emberlabs/snapmetrics/internal/storage"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Row store
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}

	// Object store
	store, err := storage.NewS3Store(ctx, storage.S3Options{
		Endpoint:     cfg.Storage.Endpoint,
		Region:       cfg.Storage.Region,
		AccessKey:    cfg.Storage.AccessKey,
		SecretKey:    cfg.Storage.SecretKey,
		UsePathStyle: cfg.Storage.UsePathStyle,
	})
	if err != nil {
		return fmt.Errorf("initializing object store: %w", err)
	}

	// Snapshot cache (optional)
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, snapshot caching disabled", "addr", cfg.Redis.Addr, "error", err)
			rdb = nil
		}
	}

	// Wiring
	locator := storage.NewLocator(store, postgres.NewObjectIndex(db), cfg.Storage.Buckets, cfg.Storage.StepTimeout())
	builder := snapshot.NewBuilder(locator, store, snapshot.NewCache(rdb, cfg.Redis.SnapshotTTL()), postgres.NewSnapshotRepo(db))
	shares := share.NewService(postgres.NewShareRepo(db))

	server := api.NewServer(cfg.Server, api.NewHandlers(shares, builder, db, rdb))

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Server.Addr(), "buckets", fmt.Sprint(cfg.Storage.Buckets))
		errCh <- server.ListenAndServe(cfg.Server.Addr())
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
