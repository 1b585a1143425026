package user

import (
	"shop_api/internal/domain/user/handler"
	"shop_api/internal/domain/user/repository"
	"shop_api/internal/domain/user/service"
	"shop_api/internal/pkg/middleware"
	"shop_api/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，因为其他模块可能依赖它
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	tokenStore := service.NewTokenStore(ctx.Redis)
	userService := service.NewUserService(userRepo, tokenStore)
	userHandler := handler.NewUserHandler(userService)

	// 2. 路由注册
	setupRoutes(ctx.Router, userHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler) {
	// 公开路由
	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/signup", h.Signup)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh-token", h.Refresh)
	}

	// 受保护的路由
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", h.Logout)
		authGroup.GET("/profile", h.GetProfile)
		authGroup.PUT("/profile", h.UpdateProfile)
		authGroup.PUT("/password", h.ChangePassword)
	}

	// 管理员路由
	adminGroup := r.Group("/api/users")
	adminGroup.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		adminGroup.GET("", h.GetUsers)
	}
}
