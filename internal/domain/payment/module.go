package payment

import (
	cartRepo "shop_api/internal/domain/cart/repository"
	cartService "shop_api/internal/domain/cart/service"
	couponRepo "shop_api/internal/domain/coupon/repository"
	couponService "shop_api/internal/domain/coupon/service"
	"shop_api/internal/domain/payment/handler"
	"shop_api/internal/domain/payment/repository"
	"shop_api/internal/domain/payment/service"
	"shop_api/internal/domain/payment/strategy"
	productRepo "shop_api/internal/domain/product/repository"
	"shop_api/internal/pkg/middleware"
	"shop_api/internal/pkg/registry"
	"shop_api/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PaymentModule 支付模块
type PaymentModule struct{}

func init() {
	registry.Register(&PaymentModule{})
}

func (m *PaymentModule) Name() string {
	return "payment"
}

func (m *PaymentModule) Priority() int {
	// 依赖商品/优惠券/购物车
	return 20
}

func (m *PaymentModule) Init(ctx *registry.ModuleContext) error {
	// 1. 支付渠道策略，配置缺失的渠道跳过
	strategies := make(map[string]strategy.PaymentStrategy)

	if alipayStrategy, err := strategy.NewAlipayStrategy(); err != nil {
		logger.Log.Warn("alipay strategy disabled", zap.Error(err))
	} else {
		strategies[alipayStrategy.Name()] = alipayStrategy
	}

	if wechatStrategy, err := strategy.NewWechatStrategy(); err != nil {
		logger.Log.Warn("wechat strategy disabled", zap.Error(err))
	} else {
		strategies[wechatStrategy.Name()] = wechatStrategy
	}

	// 2. 依赖注入
	orders := repository.NewOrderRepository(ctx.DB)
	products := productRepo.NewProductRepository(ctx.DB)
	coupons := couponRepo.NewCouponRepository(ctx.DB)
	couponSvc := couponService.NewCouponService(coupons)
	cartSvc := cartService.NewCartService(cartRepo.NewCartRepository(ctx.DB), products)
	sessions := strategy.NewSessionStore(ctx.Redis)
	rewards := service.NewRewardIssuer(couponSvc, coupons)

	paymentSvc := service.NewPaymentService(orders, products, couponSvc, cartSvc, sessions, strategies, rewards)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)

	// 3. 路由注册
	setupRoutes(ctx.Router, paymentHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.PaymentHandler) {
	// 渠道回调，无需认证
	notifyGroup := r.Group("/api/payments/notify")
	{
		notifyGroup.POST("/alipay", h.AlipayNotify)
		notifyGroup.POST("/wechat", h.WechatNotify)
	}

	group := r.Group("/api/payments")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/create-checkout-session", h.CreateCheckoutSession)
		group.POST("/checkout-success", h.CheckoutSuccess)
	}

	orderGroup := r.Group("/api/orders")
	orderGroup.Use(middleware.AuthMiddleware())
	{
		orderGroup.GET("", h.GetMyOrders)
		orderGroup.GET("/:id", h.GetOrder)

		// 管理员路由
		admin := orderGroup.Group("/admin")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("", h.GetAllOrders)
			admin.PATCH("/:id/status", h.UpdateOrderStatus)
		}
	}
}
