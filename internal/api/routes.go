package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"cvstudio/internal/api/middleware"
	"cvstudio/internal/auth"
	"cvstudio/internal/repository"
	"cvstudio/internal/storage"
)

// RouterDeps 汇总路由注册所需的依赖。
// 内存后端（演示模式）下 DB、AuthService、RedisClient、Storage、
// AsynqClient 均为 nil，此时只挂 CV 与模板路由，身份由固定匿名用户充当。
type RouterDeps struct {
	Repo                  repository.Repository
	DB                    *gorm.DB
	AsynqClient           *asynq.Client
	AuthService           *auth.Service
	RedisClient           *redis.Client
	Storage               *storage.Client
	Logger                *slog.Logger
	ClamdAddr             string
	LoginRateLimitPerHour int
	LoginLockThreshold    int
	LoginLockTTL          time.Duration
	CookieDomain          string
	AllowedOrigins        []string
}

// RegisterRoutes 注册 /v1 路由组。
func RegisterRoutes(router *gin.Engine, deps RouterDeps) {
	demoMode := deps.AuthService == nil

	cvHandler := NewCVHandler(deps.Repo, deps.AsynqClient, deps.Storage)
	templateHandler := NewTemplateHandler()

	var identity gin.HandlerFunc
	if demoMode {
		identity = middleware.DemoIdentity()
	} else {
		identity = middleware.AuthMiddleware(deps.AuthService)
	}

	v1 := router.Group("/v1")
	{
		v1.GET("/templates", templateHandler.ListTemplates)

		cvGroup := v1.Group("/cvs")
		cvGroup.Use(identity)
		{
			cvGroup.GET("", cvHandler.ListCVs)
			cvGroup.POST("", cvHandler.CreateCV)
			cvGroup.GET("/:id", cvHandler.GetCV)
			cvGroup.PATCH("/:id", cvHandler.PatchCV)
			cvGroup.DELETE("/:id", cvHandler.DeleteCV)
			cvGroup.GET("/:id/export", cvHandler.ExportCV)
			cvGroup.GET("/:id/download", cvHandler.DownloadCV)
			cvGroup.GET("/:id/download-link", cvHandler.GetDownloadLink)
		}

		if demoMode {
			return
		}

		authHandler := NewAuthHandler(deps.DB, deps.AuthService, deps.RedisClient, deps.Logger,
			deps.LoginRateLimitPerHour, deps.LoginLockThreshold, deps.LoginLockTTL, deps.CookieDomain)
		wsHandler := NewWsHandler(deps.RedisClient, deps.AuthService, deps.Logger, deps.AllowedOrigins)
		assetHandler := NewAssetHandler(deps.Storage, deps.Logger, deps.ClamdAddr)

		v1.GET("/ws", wsHandler.HandleConnection)

		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authHandler.Logout)
		}

		assetGroup := v1.Group("/assets")
		assetGroup.Use(identity)
		{
			assetGroup.POST("/upload", assetHandler.UploadAsset)
			assetGroup.GET("/view", assetHandler.GetAssetURL)
			assetGroup.GET("", assetHandler.ListAssets)
		}
	}
}
