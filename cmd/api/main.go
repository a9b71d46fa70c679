// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/learnhub/internal/admin"
	"github.com/carterperez-dev/learnhub/internal/ai"
	"github.com/carterperez-dev/learnhub/internal/auth"
	"github.com/carterperez-dev/learnhub/internal/config"
	"github.com/carterperez-dev/learnhub/internal/core"
	"github.com/carterperez-dev/learnhub/internal/course"
	"github.com/carterperez-dev/learnhub/internal/health"
	"github.com/carterperez-dev/learnhub/internal/middleware"
	"github.com/carterperez-dev/learnhub/internal/realtime"
	"github.com/carterperez-dev/learnhub/internal/remotesync"
	"github.com/carterperez-dev/learnhub/internal/server"
	"github.com/carterperez-dev/learnhub/internal/storage"
	"github.com/carterperez-dev/learnhub/internal/store"
	"github.com/carterperez-dev/learnhub/internal/user"
	"github.com/carterperez-dev/learnhub/internal/view"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen,gocyclo // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"store_backend", cfg.Store.Backend,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	var rdb *core.Redis
	if cfg.UsesRedis() {
		rdb, err = core.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		logger.Info("redis connected",
			"pool_size", cfg.Redis.PoolSize,
		)
	}

	var db *core.Database
	if cfg.Store.Backend == config.StoreBackendPostgres {
		db, err = core.NewDatabase(ctx, cfg.Database)
		if err != nil {
			return err
		}
		logger.Info("database connected",
			"max_open_conns", cfg.Database.MaxOpenConns,
			"max_idle_conns", cfg.Database.MaxIdleConns,
		)
	}

	kv, err := openStorage(ctx, cfg, db, rdb)
	if err != nil {
		return err
	}

	storeOpts := []store.Option{store.WithLogger(logger)}
	if syncer := remotesync.New(cfg.Sync); syncer.Enabled() {
		storeOpts = append(storeOpts, store.WithSyncer(syncer))
		logger.Info("remote profile sync enabled", "base_url", cfg.Sync.BaseURL)
	}
	st := store.New(kv, cfg.Store.Namespace, storeOpts...)

	if err := seedStore(ctx, st, cfg.Store.SeedPath, logger); err != nil {
		return err
	}

	if !cfg.IsProduction() {
		generated, keyErr := auth.EnsureKeyPair(cfg.JWT)
		if keyErr != nil {
			return keyErr
		}
		if generated {
			logger.Warn("generated development signing keys",
				"private_key_path", cfg.JWT.PrivateKeyPath,
			)
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	var (
		redisClient *redis.Client
		authRepo    auth.Repository
	)
	if rdb != nil {
		redisClient = rdb.Client
		authRepo = auth.NewRedisRepository(rdb.Client, cfg.Store.Namespace)
	} else {
		authRepo = auth.NewMemoryRepository()
		logger.Warn("refresh tokens kept in memory; sessions end on restart")
	}

	userSvc := user.NewService(st)
	userHandler := user.NewHandler(userSvc)

	authSvc := auth.NewService(authRepo, jwtManager, userSvc)
	authHandler := auth.NewHandler(authSvc)
	verifier := jwtManager.WithTokenVersions(authSvc)

	var generator ai.Generator
	if cfg.AI.APIKey != "" {
		generator = ai.NewGeminiClient(cfg.AI)
	} else {
		logger.Warn("AI_API_KEY not set; generation endpoints answer 503")
	}
	aiSvc := ai.NewService(generator, cfg.AI.ImageBaseURL, logger)
	aiHandler := ai.NewHandler(aiSvc)

	courseSvc := course.NewService(st, aiSvc, logger)
	courseHandler := course.NewHandler(courseSvc)

	hub := realtime.NewHub(cfg.Realtime.Heartbeat, logger)
	var bus realtime.Bus = realtime.NewLocalBus()
	if cfg.Realtime.Bus == "redis" {
		bus = realtime.NewRedisBus(redisClient, cfg.Realtime.RedisChannel, logger)
	}
	if err := bus.Start(ctx, hub.Broadcast); err != nil {
		return err
	}
	detach := realtime.NewBridge(bus, logger).Attach(st)
	defer detach()
	eventsHandler := realtime.NewHandler(hub)

	viewHandler := view.NewHandler()

	healthHandler := health.NewHandler().AddCheck("store", st)
	adminCfg := admin.HandlerConfig{Store: st}
	if rdb != nil {
		healthHandler.AddCheck("redis", rdb)
		adminCfg.RedisStats = rdb.PoolStats
		adminCfg.RedisPing = rdb.Ping
	}
	if db != nil {
		healthHandler.AddCheck("database", db)
		adminCfg.DBStats = db.Stats
		adminCfg.DBPing = db.Ping
	}
	adminHandler := admin.NewHandler(adminCfg)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Tracing)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)
	aiLimiter := middleware.PlanRateLimiter(redisClient, "ai", middleware.DefaultAIPlans)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterRoutes(r, authenticator)
		courseHandler.RegisterRoutes(r, authenticator, aiLimiter)
		aiHandler.RegisterRoutes(r, authenticator, aiLimiter)
		viewHandler.RegisterRoutes(r, optionalAuth)
		eventsHandler.RegisterRoutes(r, authenticator)
		adminHandler.RegisterRoutes(r, authenticator, middleware.RequireInstructor)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close error", "error", err)
		}
	}

	if db != nil {
		if err := db.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

func openStorage(
	ctx context.Context,
	cfg *config.Config,
	db *core.Database,
	rdb *core.Redis,
) (storage.KV, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendMemory:
		return storage.NewMemory(), nil
	case config.StoreBackendFile:
		return storage.NewFile(cfg.Store.FileDir)
	case config.StoreBackendRedis:
		return storage.NewRedis(rdb.Client, cfg.Store.Namespace), nil
	case config.StoreBackendPostgres:
		pg := storage.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return pg, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func seedStore(ctx context.Context, st *store.Store, path string, logger *slog.Logger) error {
	if path == "" {
		return nil
	}

	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	seeded, err := st.Seed(ctx, f)
	if err != nil {
		return err
	}
	if seeded {
		logger.Info("store seeded", "path", path)
	}
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
