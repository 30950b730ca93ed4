package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SAP-F-2025/mmse-service/internal/cache"
	"github.com/SAP-F-2025/mmse-service/internal/config"
	"github.com/SAP-F-2025/mmse-service/internal/handlers"
	"github.com/SAP-F-2025/mmse-service/internal/i18n"
	"github.com/SAP-F-2025/mmse-service/internal/metrics"
	"github.com/SAP-F-2025/mmse-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/mmse-service/internal/scoring"
	"github.com/SAP-F-2025/mmse-service/internal/services"
	"github.com/SAP-F-2025/mmse-service/internal/storage"
	"github.com/SAP-F-2025/mmse-service/internal/utils"
	"github.com/SAP-F-2025/mmse-service/pkg"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE:  runServe,
	}
	f := cmd.Flags()
	f.StringP("port", "p", "8080", "HTTP listen port")
	f.String("database-url", "", "PostgreSQL DSN (or DATABASE_URL)")
	f.String("redis-url", "", "Redis URL (or REDIS_URL)")
	f.Bool("auto-migrate", false, "Migrate the schema before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := setupLogging(cfg)
	slogger := logger.Slog()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if migrate, _ := cmd.Flags().GetBool("auto-migrate"); migrate {
		if err := pkg.Migrate(db); err != nil {
			return err
		}
	}

	cacheService := cache.NewNoopCache()
	if client, err := pkg.NewRedisClient(cfg); err != nil {
		logger.Warn("Redis unavailable, caching disabled", "error", err)
	} else {
		defer client.Close()
		cacheService = cache.NewRedisCache(client, slogger, "mmse")
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("Failed to close event publisher", "error", err)
		}
	}()

	drawings, err := newDrawingStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if err := i18n.Init(cfg.Locale); err != nil {
		return err
	}

	m := metrics.New(true)
	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      postgres.NewRepository(db),
		Engine:    scoring.NewEngine(scoring.WithLocation(cfg.Location())),
		Cache:     cacheService,
		CacheTTL:  cfg.CacheTTL,
		Drawings:  drawings,
		Publisher: publisher,
		Metrics:   m,
		DBTimeout: cfg.DBTimeout,
		Logger:    slogger,
	})

	router := handlers.NewHandlerManager(
		serviceManager,
		handlers.NewCasdoorVerifier(cfg.Casdoor),
		m,
		logger,
	).NewRouter()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "addr", srv.Addr, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newDrawingStore(ctx context.Context, cfg *config.Config, logger utils.Logger) (storage.DrawingStore, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !cfg.Storage.Enabled {
		return storage.InlineStore{}, nil
	}
	store, err := storage.NewMinioStore(ctx, cfg.Storage, logger.Slog())
	if err != nil {
		return nil, err
	}
	logger.Info("Storing drawings in object storage", "bucket", cfg.Storage.Bucket)
	return store, nil
}
