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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/racha-stats-service/internal/cache"
	"github.com/maxviazov/racha-stats-service/internal/config"
	"github.com/maxviazov/racha-stats-service/internal/handler"
	"github.com/maxviazov/racha-stats-service/internal/logger"
	"github.com/maxviazov/racha-stats-service/internal/repository"
	"github.com/maxviazov/racha-stats-service/internal/repository/postgres"
	"github.com/maxviazov/racha-stats-service/internal/scheduler"
	"github.com/maxviazov/racha-stats-service/internal/service"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("APP_CONFIG"); p != "" {
		configPath = p
	}

	// Load application config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}

	// Initialize logger
	if cfg.Logger.Env == "" {
		cfg.Logger.Env = cfg.App.Env
	}
	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLogger); err != nil {
		appLogger.Fatal().Err(err).Msg("service stopped with error")
	}
	appLogger.Info().Msg("👋 Service stopped")
}

func run(ctx context.Context, cfg *config.Config, appLogger zerolog.Logger) error {
	db, err := repository.New(ctx, cfg.Postgres, appLogger)
	if err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}
	defer db.Close()

	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(ctx, db.Pool()); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		appLogger.Info().Msg("✅ Migrations applied")
	}

	rachaRepo := postgres.NewRachaRepository(db.Pool())
	matchRepo := postgres.NewMatchRepository(db.Pool())
	txManager := postgres.NewTxManager(db.Pool())

	health := handler.NewHealthHandler(postgres.NewPinger(db.Pool()))

	var statsCache cache.Stats = cache.Noop{}
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		rc := cache.NewRedis(client, cfg.Redis.Prefix, time.Duration(cfg.Redis.TTL)*time.Second)
		if err := rc.Ping(ctx); err != nil {
			// reports still work straight from Postgres
			appLogger.Warn().Err(err).Msg("redis not reachable at startup")
		}
		statsCache = rc
		health.With("redis", rc)
		appLogger.Info().Str("prefix", cfg.Redis.Prefix).Int("ttl_seconds", cfg.Redis.TTL).Msg("✅ Stats cache enabled")
	}

	statsSvc := service.NewStatsService(rachaRepo, matchRepo, statsCache, appLogger)
	rachaSvc := service.NewRachaService(rachaRepo, appLogger)
	matchSvc := service.NewMatchService(rachaRepo, matchRepo, txManager, statsCache, appLogger)

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(appLogger)
		if err != nil {
			return fmt.Errorf("scheduler init failed: %w", err)
		}
		warmer := scheduler.NewStatsWarmer(rachaRepo, statsSvc, 0, appLogger)
		if _, err := sched.AddJob(scheduler.WarmJobName, cfg.Scheduler.WarmCron, warmer.Task(ctx)); err != nil {
			return fmt.Errorf("register %s: %w", scheduler.WarmJobName, err)
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				appLogger.Error().Err(err).Msg("scheduler shutdown failed")
			}
		}()
	}

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.App.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}
	engine.Use(handler.RequestID(appLogger), handler.RequestLogger(appLogger), handler.Recovery(appLogger))
	handler.Register(engine, health, statsSvc, rachaSvc, matchSvc)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info().Str("addr", srv.Addr).Msg("🚀 Service started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.App.ShutdownTimeout)*time.Second)
		defer cancel()
		appLogger.Info().Msg("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
