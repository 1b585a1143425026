package cart

import (
	"shop_api/internal/domain/cart/handler"
	"shop_api/internal/domain/cart/repository"
	"shop_api/internal/domain/cart/service"
	productRepo "shop_api/internal/domain/product/repository"
	"shop_api/internal/pkg/middleware"
	"shop_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CartModule 购物车模块
type CartModule struct{}

func init() {
	registry.Register(&CartModule{})
}

func (m *CartModule) Name() string {
	return "cart"
}

func (m *CartModule) Priority() int {
	// 依赖商品模块的数据
	return 10
}

func (m *CartModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	cartRepo := repository.NewCartRepository(ctx.DB)
	products := productRepo.NewProductRepository(ctx.DB)
	cartService := service.NewCartService(cartRepo, products)
	cartHandler := handler.NewCartHandler(cartService)

	// 2. 路由注册
	setupRoutes(ctx.Router, cartHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CartHandler) {
	group := r.Group("/api/cart")
	group.Use(middleware.AuthMiddleware())
	{
		group.GET("", h.GetCart)
		group.POST("", h.AddToCart)
		group.PUT("/:productId", h.UpdateQuantity)
		group.DELETE("/:productId", h.RemoveFromCart)
		group.DELETE("", h.ClearCart)
	}
}
