package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TraceIDKey 追踪ID在 gin context 中的键
const TraceIDKey = "traceID"

const traceHeader = "X-Trace-ID"

// TraceMiddleware 为每个请求分配追踪ID
// 透传上游带来的 X-Trace-ID，便于跨服务串联退款等链路日志
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		c.Set(TraceIDKey, traceID)
		c.Header(traceHeader, traceID)

		c.Next()
	}
}

// TraceID 取当前请求的追踪ID，未经过 TraceMiddleware 时为空串
func TraceID(c *gin.Context) string {
	return c.GetString(TraceIDKey)
}
