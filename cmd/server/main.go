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

	"github.com/nutriscan/backend/config"
	httpDelivery "github.com/nutriscan/backend/internal/delivery/http"
	"github.com/nutriscan/backend/internal/domain"
	"github.com/nutriscan/backend/internal/infrastructure/barcode"
	"github.com/nutriscan/backend/internal/infrastructure/cache"
	"github.com/nutriscan/backend/internal/infrastructure/gemini"
	"github.com/nutriscan/backend/internal/infrastructure/ocr"
	"github.com/nutriscan/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutriscan/backend/internal/infrastructure/repository"
	"github.com/nutriscan/backend/internal/infrastructure/storage"
	"github.com/nutriscan/backend/internal/infrastructure/token"
	"github.com/nutriscan/backend/internal/infrastructure/usda"
	"github.com/nutriscan/backend/internal/logging"
	"github.com/nutriscan/backend/internal/usecase"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting NutriScan backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Type),
		zap.String("cache", cfg.Cache.Type))

	// Initialize infrastructure dependencies
	store, closeStore, err := newDocumentStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	productCache, closeCache, err := newCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeCache()

	users := repository.NewUsers(store, cfg.Storage.UsersKey)
	profiles := repository.NewProfiles(store, cfg.Storage.ProfilesKey)

	tokens, err := token.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	primary := openfoodfacts.NewClient(cfg.OpenFoodFacts.BaseURL, cfg.OpenFoodFacts.UserAgent, cfg.OpenFoodFacts.RequestsPerMinute, logger)
	var fallback domain.ProductSource
	if cfg.USDA.APIKey != "" {
		fallback = usda.NewClient(cfg.USDA.APIKey, cfg.USDA.BaseURL, logger)
		logger.Info("USDA fallback enabled", zap.String("api_key", logging.Redact(cfg.USDA.APIKey)))
	} else {
		logger.Warn("USDA fallback disabled: no API key configured")
	}

	generator, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:      cfg.GenAI.APIKey,
		Model:       cfg.GenAI.Model,
		Temperature: cfg.GenAI.Temperature,
		BaseURL:     cfg.GenAI.BaseURL,
	}, logger)
	if err != nil {
		return err
	}

	// Initialize usecase layer
	products := usecase.NewProductService(productCache, primary, fallback, usecase.ProductServiceConfig{CacheTTL: cfg.Cache.TTL}, logger)
	history := usecase.NewHistoryService(profiles, usecase.HistoryServiceConfig{MaxEntries: cfg.History.MaxEntries}, logger)
	reader := ocr.NewReader(ocr.Config{Language: cfg.OCR.Language, PageSegMode: cfg.OCR.PageSegMode}, logger)

	handler := httpDelivery.NewHandler(httpDelivery.Services{
		Auth:     usecase.NewAuthService(users, profiles, tokens, usecase.AuthServiceConfig{}, logger),
		Profiles: usecase.NewProfileService(profiles, logger),
		Scans:    usecase.NewScanService(barcode.NewDecoder(logger), products, history, logger),
		Analyses: usecase.NewAnalysisService(profiles, products, history, reader, generator, logger),
		History:  history,
	}, cfg.Server.MaxUploadBytes, logger)

	router := httpDelivery.SetupRouter(cfg, handler, tokens, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// newDocumentStore opens the configured store for the credential and profile documents
func newDocumentStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (domain.DocumentStore, func(), error) {
	switch cfg.Storage.Type {
	case "s3":
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.Storage.Bucket,
			Region:          cfg.Storage.Region,
			Endpoint:        cfg.Storage.Endpoint,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	case "postgres":
		store, err := storage.NewPostgresStore(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		logger.Warn("using in-memory storage: accounts are lost on restart")
		return storage.NewMemoryStore(), func() {}, nil
	}
}

// newCache creates the product cache selected by config
func newCache(ctx context.Context, cfg *config.Config) (domain.CacheRepository, func(), error) {
	if cfg.Cache.Type == "redis" {
		c, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, "nutriscan:")
		if err != nil {
			return nil, nil, err
		}
		return c, func() { c.Close() }, nil
	}
	c := cache.NewMemoryCache(10 * time.Minute)
	return c, func() { c.Close() }, nil
}
