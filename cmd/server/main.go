package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop_api/internal/pkg/config"
	"shop_api/internal/pkg/middleware"
	"shop_api/internal/pkg/push"
	"shop_api/internal/pkg/registry"
	"shop_api/internal/pkg/uploader"
	"shop_api/pkg/cache"
	"shop_api/pkg/database"
	"shop_api/pkg/logger"

	// 各业务模块通过 init() 自注册
	_ "shop_api/internal/domain/analytics"
	_ "shop_api/internal/domain/cart"
	_ "shop_api/internal/domain/common"
	_ "shop_api/internal/domain/coupon"
	_ "shop_api/internal/domain/payment"
	_ "shop_api/internal/domain/product"
	_ "shop_api/internal/domain/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// 1. 配置与日志
	config.LoadConfig()
	logger.InitLogger(config.GlobalConfig.App.Debug)
	defer logger.Sync()

	// 2. 基础设施
	db := database.InitDatabase()
	rdb := database.InitRedis()
	cacheService := cache.NewRedisCache(rdb, "")

	// 3. 可选的外部服务，配置缺失时降级
	if err := uploader.InitUploader(); err != nil {
		logger.Log.Warn("uploader disabled", zap.Error(err))
	}
	if err := push.InitPushService(); err != nil {
		logger.Log.Warn("push service disabled", zap.Error(err))
	}

	// 4. HTTP 引擎与全局中间件
	gin.SetMode(config.GlobalConfig.Server.Mode)
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.LoggerMiddleware(),
		middleware.MetricsMiddleware(),
		middleware.RateLimitMiddleware(),
		cors.Default(),
	)

	// 5. 初始化所有业务模块
	moduleCtx := &registry.ModuleContext{
		DB:     db,
		Redis:  rdb,
		Router: router,
		Cache:  cacheService,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("failed to init modules", zap.Error(err))
	}

	// 6. 启动服务并优雅退出
	srv := &http.Server{
		Addr:              ":" + config.GlobalConfig.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}

	logger.Log.Info("server exited")
}
