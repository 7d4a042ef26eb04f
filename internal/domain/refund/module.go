package refund

import (
	orderRepo "marketplace_backend/internal/domain/order/repository"
	"marketplace_backend/internal/domain/refund/handler"
	"marketplace_backend/internal/domain/refund/repository"
	"marketplace_backend/internal/domain/refund/service"
	"marketplace_backend/internal/pkg/config"
	"marketplace_backend/internal/pkg/gateway"
	"marketplace_backend/internal/pkg/middleware"
	"marketplace_backend/internal/pkg/registry"
	"marketplace_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RefundModule 退款模块
type RefundModule struct {
	service service.RefundService
}

func init() {
	registry.Register(&RefundModule{})
}

func (m *RefundModule) Name() string {
	return "refund"
}

func (m *RefundModule) Priority() int {
	return 30
}

// Service 暴露给后台对账任务
func (m *RefundModule) Service() service.RefundService {
	return m.service
}

func (m *RefundModule) Init(ctx *registry.ModuleContext) error {
	// 1. 按配置组装退款网关
	gateways, err := buildGateways()
	if err != nil {
		return err
	}

	// 2. 依赖注入
	rRepo := repository.NewRefundRepository(ctx.DB)
	oRepo := orderRepo.NewOrderRepository(ctx.DB)
	m.service = service.NewRefundService(rRepo, oRepo, gateways, ctx.Notifier)
	rHandler := handler.NewRefundHandler(m.service)

	// 3. 路由注册
	setupRoutes(ctx.Router, rHandler)

	return nil
}

// buildGateways 注册所有配置了凭证的支付渠道
func buildGateways() (*gateway.Registry, error) {
	reg := gateway.NewRegistry()
	cfg := config.GlobalConfig

	if cfg.Stripe.SecretKey != "" {
		gw, err := gateway.NewStripeGateway()
		if err != nil {
			return nil, err
		}
		reg.Register("stripe", gw)
		logger.Log.Info("refund gateway registered", zap.String("channel", "stripe"))
	}

	if cfg.Alipay.AppID != "" {
		gw, err := gateway.NewAlipayGateway()
		if err != nil {
			return nil, err
		}
		reg.Register("alipay", gw)
		logger.Log.Info("refund gateway registered", zap.String("channel", "alipay"))
	}

	if cfg.Wechat.MchID != "" {
		gw, err := gateway.NewWechatGateway()
		if err != nil {
			return nil, err
		}
		reg.Register("wechat", gw)
		logger.Log.Info("refund gateway registered", zap.String("channel", "wechat"))
	}

	return reg, nil
}

func setupRoutes(r *gin.Engine, h *handler.RefundHandler) {
	refunds := r.Group("/refunds")
	{
		// 公开查询
		refunds.GET("/:id", h.GetRefund)

		auth := refunds.Group("")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.POST("/request", h.RequestRefund)
			auth.GET("/customer/my-refunds", h.ListMyRefunds)

			staff := auth.Group("")
			staff.Use(middleware.StaffMiddleware())
			{
				staff.POST("/:id/process", h.ProcessRefund)
				staff.POST("/:id/cancel", h.CancelRefund)
			}

			admin := auth.Group("")
			admin.Use(middleware.AdminMiddleware())
			{
				admin.GET("/admin/all", h.ListRefunds)
			}
		}
	}
}
