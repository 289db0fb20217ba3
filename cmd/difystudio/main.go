package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container
	"golang.org/x/sync/errgroup"

	difyadapter "github.com/ericfisherdev/difystudio/internal/adapter/driven/dify"
	sqliteadapter "github.com/ericfisherdev/difystudio/internal/adapter/driven/sqlite"
	httphandler "github.com/ericfisherdev/difystudio/internal/adapter/driving/http"
	"github.com/ericfisherdev/difystudio/internal/application"
	"github.com/ericfisherdev/difystudio/internal/config"
	"github.com/ericfisherdev/difystudio/internal/metrics"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger()
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"dify_base_url", cfg.DifyBaseURL,
		"env_api_key", cfg.HasFallbackAPIKey(),
		"allowed_origins", cfg.AllowedOrigins,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	logger.Info("migrations complete")

	// 5. Derive the at-rest encryption key from the secret and installation salt.
	salt, err := sqliteadapter.LoadOrCreateSalt(ctx, db)
	if err != nil {
		return err
	}
	sealer, err := sqliteadapter.NewSealer(cfg.EncryptionSecret, salt)
	if err != nil {
		return fmt.Errorf("create sealer: %w", err)
	}

	// 6. Wire adapters.
	configStore := sqliteadapter.NewDifyConfigRepo(db, sealer, logger)
	modelStore := sqliteadapter.NewAIModelRepo(db, sealer, logger)

	reg := metrics.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(reg)
	upstreamMetrics := metrics.NewUpstreamMetrics(reg)

	difyClient := difyadapter.NewClient(cfg.UpstreamTimeout, upstreamMetrics)

	// 7. Create application services. Credentials are resolved per request.
	resolver := application.NewCredentialResolver(configStore, application.FallbackCredentials{
		BaseURL:       cfg.DifyBaseURL,
		APIKey:        cfg.DifyAPIKey,
		DatasetAPIKey: cfg.DifyDatasetAPIKey,
	}, logger)

	configSvc := application.NewConfigService(configStore, resolver, difyClient, cfg.DifyBaseURL)
	datasetSvc := application.NewDatasetService(resolver, difyClient)
	workflowSvc := application.NewWorkflowService(resolver, difyClient)
	modelSvc := application.NewModelService(modelStore)
	healthSvc := application.NewHealthService(db, resolver, logger)

	if view, err := configSvc.Get(ctx); err == nil && !view.Configured && !cfg.HasFallbackAPIKey() {
		logger.Info("no dify api key configured, upstream calls disabled until one is saved via POST /api/config")
	}

	// 8. Create HTTP handler and register routes.
	apiHandler := httphandler.NewHandler(configSvc, datasetSvc, workflowSvc, modelSvc, healthSvc, logger)
	handler := httphandler.NewServeMux(apiHandler, logger, httphandler.ServerOptions{
		AllowedOrigins: cfg.AllowedOrigins,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: metrics.Handler(reg),
		MaxUploadBytes: cfg.MaxUploadBytes,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      cfg.UpstreamTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// 9. Wait for shutdown signal or server failure, then drain.
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown: %w", err)
		}
		return nil
	})

	logger.Info("difystudio started", "listen_addr", cfg.ListenAddr)

	if err := g.Wait(); err != nil {
		return err
	}

	// 10. Log shutdown complete.
	logger.Info("shutdown complete")
	return nil
}
