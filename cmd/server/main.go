package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"marketplace_backend/internal/pkg/config"
	"marketplace_backend/internal/pkg/middleware"
	"marketplace_backend/internal/pkg/notify"
	"marketplace_backend/internal/pkg/registry"
	"marketplace_backend/internal/pkg/worker"
	"marketplace_backend/pkg/database"
	"marketplace_backend/pkg/logger"
	"marketplace_backend/pkg/metrics"

	// 各业务模块通过 init() 自注册
	_ "marketplace_backend/internal/domain/common"
	_ "marketplace_backend/internal/domain/order"
	"marketplace_backend/internal/domain/refund"
	_ "marketplace_backend/internal/domain/store"
	_ "marketplace_backend/internal/domain/user"
	userRepo "marketplace_backend/internal/domain/user/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger.Init(config.GlobalConfig.App.Env)
	defer logger.Sync()

	db := database.InitDatabase()
	rdb := database.InitRedis()

	// 通知出口：邮件必开，移动推送按配置
	var push notify.PushService
	if config.GlobalConfig.Push.AccessKeyID != "" {
		p, err := notify.NewAliyunPushService()
		if err != nil {
			logger.Log.Fatal("failed to init push service", zap.Error(err))
		}
		push = p
	}
	notifier := notify.NewSink(notify.NewEmailSender(), push, userRepo.NewUserRepository(db))

	if config.GlobalConfig.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(metrics.Middleware())
	r.Use(middleware.RateLimitMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.GlobalConfig.App.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	moduleCtx := &registry.ModuleContext{
		DB:       db,
		Redis:    rdb,
		Router:   r,
		Notifier: notifier,
	}
	if err := registry.InitModules(moduleCtx); err != nil {
		logger.Log.Fatal("failed to init modules", zap.Error(err))
	}

	// 退款对账任务：每 5 分钟扫一次，收敛停留超过 15 分钟的 processing 退款单
	var sweeper *worker.RefundSweeper
	if m, ok := registry.GetModules()["refund"].(*refund.RefundModule); ok {
		sweeper = worker.NewRefundSweeper(m.Service(), 5*time.Minute, 15*time.Minute, 50)
		sweeper.Start()
	}

	srv := &http.Server{
		Addr:    ":" + config.GlobalConfig.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("server shutting down")
	if sweeper != nil {
		sweeper.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("forced shutdown", zap.Error(err))
	}
	logger.Log.Info("server stopped")
}
