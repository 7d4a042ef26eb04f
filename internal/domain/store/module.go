package store

import (
	"marketplace_backend/internal/domain/store/handler"
	"marketplace_backend/internal/domain/store/repository"
	"marketplace_backend/internal/domain/store/service"
	userRepo "marketplace_backend/internal/domain/user/repository"
	"marketplace_backend/internal/pkg/middleware"
	"marketplace_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// StoreModule 店铺模块
type StoreModule struct{}

func init() {
	registry.Register(&StoreModule{})
}

func (m *StoreModule) Name() string {
	return "store"
}

func (m *StoreModule) Priority() int {
	return 10
}

func (m *StoreModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	sRepo := repository.NewStoreRepository(ctx.DB)
	uRepo := userRepo.NewUserRepository(ctx.DB)
	sService := service.NewStoreService(sRepo, uRepo, ctx.Notifier)
	sHandler := handler.NewStoreHandler(sService)

	// 2. 路由注册
	setupRoutes(ctx.Router, sHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.StoreHandler) {
	stores := r.Group("/stores")
	{
		// 公开浏览
		stores.GET("/", h.ListStores)
		stores.GET("/:id", h.GetStore)

		auth := stores.Group("")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.POST("/register", h.RegisterStore)

			admin := auth.Group("")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.POST("/:id/review", h.ReviewStore)
			}
		}
	}

	products := r.Group("/products")
	{
		products.GET("/", h.ListProducts)
		products.GET("/:id", h.GetProduct)

		auth := products.Group("")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.POST("/", h.AddProduct)
			auth.PUT("/:id", h.UpdateProduct)
		}
	}
}
