package order

import (
	"marketplace_backend/internal/domain/order/handler"
	"marketplace_backend/internal/domain/order/repository"
	"marketplace_backend/internal/domain/order/service"
	storeRepo "marketplace_backend/internal/domain/store/repository"
	"marketplace_backend/internal/pkg/middleware"
	"marketplace_backend/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	return 20
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	oRepo := repository.NewOrderRepository(ctx.DB)
	sRepo := storeRepo.NewStoreRepository(ctx.DB)
	oService := service.NewOrderService(oRepo, sRepo, ctx.Redis)
	oHandler := handler.NewOrderHandler(oService)

	// 2. 路由注册
	setupRoutes(ctx.Router, oHandler)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler) {
	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("/", h.CreateOrder)
		orders.GET("/my-orders", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/cancel", h.CancelOrder)

		staff := orders.Group("")
		staff.Use(middleware.StaffMiddleware())
		{
			staff.PUT("/:id/status", h.UpdateFulfillment)
		}

		admin := orders.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.GET("/", h.ListOrders)
		}
	}
}
