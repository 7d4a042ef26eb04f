package middleware

import (
	"time"

	"marketplace_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoggerMiddleware 访问日志，复用 TraceMiddleware 分配的追踪ID
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		traceID := TraceID(c)
		if traceID == "" {
			// 未挂 TraceMiddleware 时兜底生成，保证日志总能串联
			traceID = uuid.New().String()
			c.Set(TraceIDKey, traceID)
		}

		c.Next()

		cost := time.Since(start)
		status := c.Writer.Status()

		if logger.Log != nil {
			logger.Log.Info(path,
				zap.Int("status", status),
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.String("query", query),
				zap.String("ip", c.ClientIP()),
				zap.String("user-agent", c.Request.UserAgent()),
				zap.String("trace_id", traceID),
				zap.Duration("cost", cost),
			)
		}
	}
}
