package common

import (
	"net/http"
	"time"

	"marketplace_backend/internal/pkg/config"
	"marketplace_backend/internal/pkg/middleware"
	"marketplace_backend/internal/pkg/registry"
	"marketplace_backend/internal/pkg/uploader"
	"marketplace_backend/pkg/logger"
	"marketplace_backend/pkg/metrics"
	"marketplace_backend/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CommonModule 平台级通用端点：健康检查、指标、文件上传
type CommonModule struct{}

func init() {
	registry.Register(&CommonModule{})
}

func (m *CommonModule) Name() string {
	return "common"
}

func (m *CommonModule) Priority() int {
	return 100
}

func (m *CommonModule) Init(ctx *registry.ModuleContext) error {
	var up uploader.Uploader
	if config.GlobalConfig.OSS.Endpoint != "" {
		ossUploader, err := uploader.NewAliyunOSSUploader()
		if err != nil {
			return err
		}
		up = ossUploader
	}

	r := ctx.Router

	r.GET("/health", func(c *gin.Context) {
		status := gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		}

		if sqlDB, err := ctx.DB.DB(); err != nil || sqlDB.Ping() != nil {
			status["status"] = "degraded"
			status["database"] = "unreachable"
		}
		if ctx.Redis != nil {
			if err := ctx.Redis.Ping(c.Request.Context()).Err(); err != nil {
				status["status"] = "degraded"
				status["redis"] = "unreachable"
			}
		}

		code := http.StatusOK
		if status["status"] != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, status)
	})

	r.GET("/metrics", metrics.Handler())

	// 商品图片上传，仅登录用户可用
	upload := r.Group("/upload")
	upload.Use(middleware.AuthMiddleware())
	upload.POST("/image", func(c *gin.Context) {
		if up == nil {
			response.Error(c, http.StatusServiceUnavailable, response.ErrServerInternal, "Upload storage is not configured")
			return
		}

		file, err := c.FormFile("file")
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Missing file")
			return
		}

		url, err := up.UploadFile(file)
		if err != nil {
			logger.Log.Error("file upload failed", zap.String("filename", file.Filename), zap.Error(err))
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, "Upload failed")
			return
		}
		response.Success(c, gin.H{"url": url})
	})

	return nil
}
