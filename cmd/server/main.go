package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/internal/config"
	"github.com/fastygo/tasktracker/internal/infrastructure/buffer"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/tasktracker/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/tasktracker/internal/infrastructure/redis"
	"github.com/fastygo/tasktracker/internal/middleware"
	"github.com/fastygo/tasktracker/internal/router"
	"github.com/fastygo/tasktracker/internal/services"
	"github.com/fastygo/tasktracker/internal/services/lifecycle"
	"github.com/fastygo/tasktracker/internal/token"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	"github.com/fastygo/tasktracker/pkg/logger"
	"github.com/fastygo/tasktracker/pkg/password"
	"github.com/fastygo/tasktracker/repository"
	"github.com/fastygo/tasktracker/repository/memory"
	"github.com/fastygo/tasktracker/repository/postgres"
	redisRepo "github.com/fastygo/tasktracker/repository/redis"
	"github.com/fastygo/tasktracker/usecase"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
	"github.com/fastygo/tasktracker/usecase/identity"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger = zapLogger.With(zap.String("app", cfg.AppName), zap.String("env", cfg.Environment))

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, stop := manager.SignalContext(context.Background())
	defer stop()

	var (
		userRepo  repository.UserRepository
		taskRepo  repository.TaskRepository
		userCache repository.UserCache
		probes    []monitor.Probe
		buf       usecase.OperationBuffer
		bufStore  *buffer.Store
	)

	switch {
	case cfg.UsesPostgres():
		if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
			zapLogger.Fatal("migrations failed", zap.Error(err))
		}

		pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
		if err != nil {
			zapLogger.Fatal("postgres connection failed", zap.Error(err))
		}
		manager.Register("postgres", func(context.Context) error {
			pgInfra.Close(pool, zapLogger)
			return nil
		})
		probes = append(probes, monitor.PostgresProbe(pool))

		userRepo = postgres.NewUserRepository(pool)
		taskRepo = postgres.NewTaskRepository(pool)

		bufStore, err = buffer.Open(cfg.Buffer.Path)
		if err != nil {
			zapLogger.Fatal("failed to open buffer store", zap.Error(err))
		}
		manager.Register("buffer", func(context.Context) error {
			return bufStore.Close()
		})
		probes = append(probes, monitor.BufferProbe(bufStore))
	default:
		zapLogger.Warn("using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		userRepo = store.Users()
		taskRepo = store.Tasks()
	}

	if cfg.Redis.Enabled {
		redisClient, err := redisInfra.NewClient(appCtx, cfg.Redis)
		if err != nil {
			zapLogger.Fatal("redis connection failed", zap.Error(err))
		}
		manager.Register("redis", func(context.Context) error {
			return redisClient.Close()
		})
		probes = append(probes, monitor.RedisProbe(redisClient))
		userCache = redisRepo.NewUserCache(redisClient, cfg.Redis.UserCacheTTL)
	}

	mon := monitor.New(10*time.Second, bufStore, zapLogger, probes...)
	mon.Start()
	manager.Register("monitor", func(context.Context) error {
		mon.Stop()
		return nil
	})

	if bufStore != nil {
		processor := services.NewBufferProcessor(
			bufStore,
			mon,
			taskRepo,
			zapLogger,
			services.ProcessorConfig{
				Interval:   cfg.Buffer.SyncInterval,
				BatchSize:  50,
				MaxRetries: cfg.Buffer.MaxRetry,
			},
		)
		processor.Start()
		manager.Register("buffer_processor", func(ctx context.Context) error {
			processor.Stop(ctx)
			return nil
		})
		buf = services.NewBufferBridge(processor)
	}

	tokenService, err := token.NewService(token.Config{
		Secret:     cfg.JWT.Secret,
		Issuer:     cfg.JWT.Issuer,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	}, token.WithLogger(zapLogger))
	if err != nil {
		zapLogger.Fatal("token service", zap.Error(err))
	}

	hasher, err := password.New(password.Config{
		Algorithm:  cfg.Password.Algorithm,
		BcryptCost: cfg.Password.BcryptCost,
	})
	if err != nil {
		zapLogger.Fatal("password hasher", zap.Error(err))
	}

	resolver := identity.New(userRepo, userCache, zapLogger)
	authUseCase := authUC.New(userRepo, hasher, tokenService, zapLogger)
	taskUseCase := taskUC.New(taskRepo, buf, zapLogger, taskUC.WithStrictOwnership(cfg.Tasks.StrictOwnership))

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:    apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Profile: apiHandler.NewProfileHandler(ctxAdapter, zapLogger),
		Task:    apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health:  apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(tokenService, resolver, ctxAdapter, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger)(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Concurrency:  cfg.HTTP.MaxConn,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started",
			zap.String("address", cfg.Address()),
			zap.String("storage", cfg.Storage.Driver),
			zap.Bool("strict_ownership", cfg.Tasks.StrictOwnership))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Error("server stopped listening", zap.Error(err))
			stop()
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
