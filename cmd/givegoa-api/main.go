package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/givegoa/givegoa-api/api/swagger"
	"github.com/givegoa/givegoa-api/internal/handler"
	"github.com/givegoa/givegoa-api/internal/repository"
	"github.com/givegoa/givegoa-api/internal/router"
	"github.com/givegoa/givegoa-api/internal/service"
	"github.com/givegoa/givegoa-api/pkg/cache"
	"github.com/givegoa/givegoa-api/pkg/config"
	"github.com/givegoa/givegoa-api/pkg/database"
	"github.com/givegoa/givegoa-api/pkg/inference"
	"github.com/givegoa/givegoa-api/pkg/logger"
)

// @title GiveGoa API
// @version 1.0.0
// @description Request intake, prioritization and resource allocation for community aid
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	metrics := service.NewMetricsService()
	validate := validator.New()

	var redisClient *redis.Client
	if cfg.Store.Driver == config.StoreDriverRedis || cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer client.Close()
		redisClient = client
	}

	store, checks, closeStore, err := openStore(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	defer closeStore()

	stateRepo := repository.NewStateRepository(
		repository.NewInstrumentedBucketStore(store, metrics),
		cfg.Store.KeyPrefix,
		logr.Named("state"),
	)

	var cacheClient redis.Cmdable
	if cfg.Dashboard.CacheEnabled {
		cacheClient = redisClient
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(cacheClient, logr), metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)

	aiClient, err := inference.New(ctx, cfg.AI)
	if err != nil {
		return err
	}
	if !aiClient.Configured() {
		logr.Warn("GEMINI_API_KEY not set; classification, scoring and optimization will use fallbacks")
	}
	gateway := service.NewGatewayService(aiClient, service.GatewayModels{
		Classify: cfg.AI.ClassifyModel,
		Score:    cfg.AI.ScoreModel,
		Optimize: cfg.AI.OptimizeModel,
	}, validate, metrics, logr.Named("gateway"))

	auditSvc := service.NewAuditService(stateRepo, nil, nil, logr)
	authSvc := service.NewAuthService(nil, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	requestSvc := service.NewRequestService(stateRepo, auditSvc, gateway, gateway, validate, logr, service.RequestServiceConfig{
		AcceptScoreFallback: cfg.Scoring.AcceptFallback,
	})
	resourceSvc := service.NewResourceService(stateRepo, auditSvc, validate, logr)
	weightsSvc := service.NewWeightsService(stateRepo, auditSvc, validate, logr)
	allocationSvc := service.NewAllocationService(stateRepo, auditSvc, gateway, validate, logr)
	dashboardSvc := service.NewDashboardService(stateRepo, cacheSvc, logr, service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL})
	stateRepo.OnCommit(dashboardSvc.Invalidate)

	engine := router.New(cfg, logr, authSvc, metrics, router.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Requests:   handler.NewRequestHandler(requestSvc),
		Resources:  handler.NewResourceHandler(resourceSvc),
		Allocation: handler.NewAllocationHandler(allocationSvc),
		Audit:      handler.NewAuditHandler(auditSvc),
		Dashboard:  handler.NewDashboardHandler(dashboardSvc),
		Weights:    handler.NewWeightsHandler(weightsSvc),
		Metrics:    handler.NewMetricsHandler(metrics, checks),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env), zap.String("store", cfg.Store.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logr.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-serverErr:
		return err
	}
}

// openStore selects the bucket store for STORE_DRIVER and returns its readiness checks.
func openStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (repository.BucketStore, map[string]handler.ReadinessCheck, func(), error) {
	noop := func() {}
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		return repository.NewMemoryBucketStore(), nil, noop, nil
	case config.StoreDriverRedis:
		checks := map[string]handler.ReadinessCheck{
			"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		}
		return repository.NewRedisBucketStore(redisClient), checks, noop, nil
	case config.StoreDriverPostgres, config.StoreDriverSQLite, "":
		var (
			db  *sqlx.DB
			err error
		)
		if cfg.Store.Driver == config.StoreDriverPostgres {
			db, err = database.NewPostgres(cfg.Database)
		} else {
			db, err = database.NewSQLite(cfg.Store.SQLitePath)
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
		}
		store := repository.NewSQLBucketStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, nil, fmt.Errorf("migrate state table: %w", err)
		}
		checks := map[string]handler.ReadinessCheck{"database": db.PingContext}
		return store, checks, func() { _ = db.Close() }, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}
}
