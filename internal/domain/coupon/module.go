package coupon

import (
	"context"

	"shop_api/internal/domain/coupon/handler"
	"shop_api/internal/domain/coupon/repository"
	"shop_api/internal/domain/coupon/service"
	"shop_api/internal/pkg/middleware"
	"shop_api/internal/pkg/registry"
	"shop_api/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// CouponModule 优惠券模块
type CouponModule struct {
	cron *cron.Cron
}

func init() {
	registry.Register(&CouponModule{})
}

func (m *CouponModule) Name() string {
	return "coupon"
}

func (m *CouponModule) Priority() int {
	return 15
}

func (m *CouponModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	couponRepo := repository.NewCouponRepository(ctx.DB)
	couponService := service.NewCouponService(couponRepo)
	couponHandler := handler.NewCouponHandler(couponService)

	// 2. 路由注册
	setupRoutes(ctx.Router, couponHandler)

	// 3. 每小时停用过期券
	m.cron = cron.New()
	if _, err := m.cron.AddFunc("@hourly", func() {
		if _, err := couponService.CleanupExpiredCoupons(context.Background()); err != nil {
			logger.Log.Error("coupon cleanup job failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}
	m.cron.Start()

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CouponHandler) {
	group := r.Group("/api/coupons")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", h.GetCoupon)
		group.GET("/all", h.GetMyCoupons)
		group.POST("/validate", h.ValidateCoupon)

		// 管理员路由
		admin := group.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("", h.GetAllCoupons)
			admin.POST("", h.CreateCoupon)
			admin.POST("/bulk", h.CreateBulkCoupons)
			admin.PATCH("/:id/deactivate", h.DeactivateCoupon)
			admin.DELETE("/:id", h.DeleteCoupon)
		}
	}
}
