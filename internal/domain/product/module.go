package product

import (
	"shop_api/internal/domain/product/handler"
	"shop_api/internal/domain/product/repository"
	"shop_api/internal/domain/product/service"
	"shop_api/internal/pkg/middleware"
	"shop_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ProductModule 商品模块
type ProductModule struct{}

func init() {
	registry.Register(&ProductModule{})
}

func (m *ProductModule) Name() string {
	return "product"
}

func (m *ProductModule) Priority() int {
	// 商品模块先于购物车/支付初始化
	return 5
}

func (m *ProductModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	productRepo := repository.NewProductRepository(ctx.DB)
	productService := service.NewProductService(productRepo, ctx.Cache)
	productHandler := handler.NewProductHandler(productService)

	// 2. 路由注册
	setupRoutes(ctx.Router, productHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ProductHandler) {
	group := r.Group("/api/products")
	{
		// 公开路由
		group.GET("/featured", h.GetFeatured)
		group.GET("/recommended", h.GetRecommended)
		group.GET("/category/:category", h.GetByCategory)
		group.GET("/:id", h.GetProduct)

		// 管理员路由
		admin := group.Group("")
		admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
		{
			admin.GET("", h.GetProducts)
			admin.POST("", h.CreateProduct)
			admin.PUT("/:id", h.UpdateProduct)
			admin.PATCH("/:id/featured", h.ToggleFeatured)
			admin.DELETE("/:id", h.DeleteProduct)
		}
	}
}
