package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-siswa-web/internal/handler"
	"github.com/noah-isme/sma-siswa-web/internal/middleware"
	"github.com/noah-isme/sma-siswa-web/internal/models"
	"github.com/noah-isme/sma-siswa-web/internal/repository"
	"github.com/noah-isme/sma-siswa-web/internal/router"
	"github.com/noah-isme/sma-siswa-web/internal/service"
	"github.com/noah-isme/sma-siswa-web/internal/web"
	"github.com/noah-isme/sma-siswa-web/pkg/cache"
	"github.com/noah-isme/sma-siswa-web/pkg/config"
	"github.com/noah-isme/sma-siswa-web/pkg/database"
	"github.com/noah-isme/sma-siswa-web/pkg/logger"
)

// @title Siswa Web API
// @version 1.0.0
// @description Read-only JSON view of the student records
// @BasePath /api/v1
// @schemes http

type siswaStore interface {
	FindAll(ctx context.Context) ([]models.Siswa, error)
	FindOne(ctx context.Context, field models.SiswaField, value string) (*models.Siswa, error)
	Insert(ctx context.Context, s *models.Siswa) error
	UpdateByNISN(ctx context.Context, nisn string, upd models.SiswaUpdate) error
	DeleteByNISN(ctx context.Context, nisn string) error
}

type storeHandle struct {
	store siswaStore
	ready handler.ReadinessCheck
	close func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logr.Fatal("store connection failed", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.close(closeCtx); err != nil {
			logr.Warn("store close failed", zap.Error(err))
		}
	}()

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{cfg.DBDriver: store.ready}

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, "siswa-web:")
			checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
			defer cacheRepo.Close() //nolint:errcheck
		}
	}
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, true)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		logr.Fatal("template parse failed", zap.Error(err))
	}

	authSvc := service.NewAuthService(service.AuthConfig{Username: cfg.Admin.Username, Password: cfg.Admin.Password}, metrics, logr)
	siswaSvc := service.NewSiswaService(store.store, cacheSvc, metrics, validator.New(), logr)
	exportSvc := service.NewExportService(siswaSvc, logr, nil, nil)

	routes := router.New(router.Options{
		Config:       cfg,
		Logger:       logr,
		Metrics:      metrics,
		Renderer:     renderer,
		SessionStore: middleware.NewSessionStore(cfg.Session, cfg.Env == config.EnvProduction),
	}, router.Handlers{
		Auth:     handler.NewAuthHandler(authSvc, logr),
		Pages:    handler.NewPageHandler(siswaSvc),
		Siswa:    handler.NewSiswaHandler(siswaSvc, exportSvc, logr),
		SiswaAPI: handler.NewSiswaAPIHandler(siswaSvc),
		Metrics:  handler.NewMetricsHandler(metrics, checks, logr),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           routes,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "driver", cfg.DBDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logr.Warn("shutdown error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config) (*storeHandle, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return &storeHandle{
			store: repository.NewSiswaRepository(db),
			ready: db.PingContext,
			close: func(context.Context) error { return db.Close() },
		}, nil
	case config.DriverMongo:
		client, mdb, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		repo := repository.NewSiswaMongoRepository(mdb.Collection(cfg.Mongo.Collection))
		if err := repo.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ensure siswa indexes: %w", err)
		}
		return &storeHandle{
			store: repo,
			ready: func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close: client.Disconnect,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}
