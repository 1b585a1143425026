package analytics

import (
	"shop_api/internal/domain/analytics/handler"
	"shop_api/internal/domain/analytics/repository"
	"shop_api/internal/domain/analytics/service"
	"shop_api/internal/pkg/middleware"
	"shop_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// AnalyticsModule 运营分析模块
type AnalyticsModule struct{}

func init() {
	registry.Register(&AnalyticsModule{})
}

func (m *AnalyticsModule) Name() string {
	return "analytics"
}

func (m *AnalyticsModule) Priority() int {
	// 只读聚合，最后初始化业务模块
	return 30
}

func (m *AnalyticsModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	analyticsRepo := repository.NewAnalyticsRepository(ctx.DB)
	analyticsService := service.NewAnalyticsService(analyticsRepo, ctx.Cache)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	// 2. 路由注册
	setupRoutes(ctx.Router, analyticsHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.AnalyticsHandler) {
	group := r.Group("/api/analytics")
	group.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		group.GET("", h.GetOverview)
		group.GET("/daily-sales", h.GetDailySales)
		group.GET("/top-products", h.GetTopProducts)
		group.GET("/revenue-by-category", h.GetRevenueByCategory)
	}
}
