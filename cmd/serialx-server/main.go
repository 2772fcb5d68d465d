// Command serialx-server runs the REST wrapper around the serialx codec.
//
// Configuration comes from an optional YAML file (-config), a .env file in
// the working directory, and SERIALX_* environment variables, in increasing
// order of precedence.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hengadev/serialx/internal/health"
	"github.com/hengadev/serialx/internal/server"
	"github.com/hengadev/serialx/internal/store"
	s3store "github.com/hengadev/serialx/providers/s3"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	devLogging := flag.Bool("dev", false, "human-readable development logging")
	flag.Parse()

	// Absent .env files are fine; explicit files are the operator's job.
	_ = godotenv.Load()

	logger, err := newLogger(*devLogging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(logger, *configPath); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(logger *zap.Logger, configPath string) error {
	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := buildStore(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("build document store: %w", err)
	}
	defer docs.Close()

	checker := health.NewChecker("serialx-server", version)
	checker.Register(health.Check{
		Name:     "document-store",
		Critical: true,
		Probe: func(ctx context.Context) error {
			_, err := docs.Count(ctx)
			return err
		},
	})

	srv, err := server.New(cfg, docs, checker, logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.String("store", cfg.Store.Driver),
		)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func buildStore(ctx context.Context, cfg server.StoreConfig) (store.DocumentStore, error) {
	switch cfg.Driver {
	case server.DriverMemory:
		return store.NewMemoryStore(), nil
	case server.DriverSQLite:
		return store.NewSQLiteStore(cfg.Path)
	case server.DriverS3:
		return s3store.NewFromConfig(ctx, cfg.Bucket, cfg.Prefix, cfg.Region)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
