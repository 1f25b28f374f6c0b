package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"cvstudio/internal/api"
	"cvstudio/internal/auth"
	"cvstudio/internal/config"
	"cvstudio/internal/database"
	"cvstudio/internal/repository"
	"cvstudio/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	deps := api.RouterDeps{
		Logger:                logger,
		ClamdAddr:             cfg.Clamd.Addr,
		LoginRateLimitPerHour: cfg.Auth.LoginRatePerHr,
		LoginLockThreshold:    cfg.Auth.LockThreshold,
		LoginLockTTL:          cfg.Auth.LockTTL,
		CookieDomain:          cfg.Auth.CookieDomain,
		AllowedOrigins:        cfg.API.AllowedOrigins,
	}

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		// 演示模式：无账号、不落盘，进程退出即丢弃。
		deps.Repo = repository.NewMemoryRepository()
		logger.Info("storage backend: in-memory (demo mode, data is ephemeral)")

	case config.BackendPostgres:
		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			log.Fatalf("init database: %v", err)
		}
		if err := db.AutoMigrate(&database.User{}, &database.CV{}); err != nil {
			log.Fatalf("auto migrate: %v", err)
		}
		logger.Info("database ready",
			slog.String("host", cfg.Database.Host),
			slog.String("db", cfg.Database.Name),
		)

		authService, err := auth.NewService(
			[]byte(cfg.Auth.PrivateKeyPEM),
			[]byte(cfg.Auth.PublicKeyPEM),
			cfg.Auth.AccessTokenTTL,
			cfg.Auth.RefreshTokenTTL,
		)
		if err != nil {
			log.Fatalf("init auth service: %v", err)
		}

		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("ping redis: %v", err)
		}

		storageClient, err := storage.NewClient(cfg.MinIO)
		if err != nil {
			log.Fatalf("init storage client: %v", err)
		}
		logger.Info("storage client ready", slog.String("bucket", cfg.MinIO.Bucket))

		deps.Repo = repository.NewGormRepository(db)
		deps.DB = db
		deps.AuthService = authService
		deps.RedisClient = redisClient
		deps.Storage = storageClient
		deps.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr()})

	default:
		log.Fatalf("unknown storage backend %q", cfg.Storage.Backend)
	}

	router := api.NewRouter(logger)
	api.RegisterRoutes(router, deps)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	logger.Info("api listening", slog.String("address", address))
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
