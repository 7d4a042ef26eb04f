package middleware

import (
	"net/http"
	"strings"

	"marketplace_backend/internal/domain/user/model"
	"marketplace_backend/pkg/response"
	"marketplace_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware JWT认证中间件
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		// 检查格式 "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := utils.ParseToken(parts[1])
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.ErrTokenInvalid, "Invalid or expired token")
			c.Abort()
			return
		}

		// 将 userID 和 role 存入上下文
		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// AdminMiddleware 管理员权限中间件
func AdminMiddleware() gin.HandlerFunc {
	return requireRole(func(role int) bool {
		return role == model.RoleAdmin
	}, "Admin permission required")
}

// StaffMiddleware 平台管理员或店主权限中间件 (退款裁决等后台操作)
func StaffMiddleware() gin.HandlerFunc {
	return requireRole(func(role int) bool {
		return role == model.RoleAdmin || role == model.RoleStoreOwner
	}, "Admin or store owner permission required")
}

func requireRole(allowed func(int) bool, msg string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, response.ErrNoPermission, "Unauthorized")
			c.Abort()
			return
		}

		roleInt, ok := role.(int)
		if !ok {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, "Invalid role format")
			c.Abort()
			return
		}

		if !allowed(roleInt) {
			response.Error(c, http.StatusForbidden, response.ErrNoPermission, msg)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUserID 从上下文取当前登录用户ID
func CurrentUserID(c *gin.Context) uint {
	val, _ := c.Get("userID")
	if id, ok := val.(uint); ok {
		return id
	}
	return 0
}

// CurrentRole 从上下文取当前用户角色
func CurrentRole(c *gin.Context) int {
	val, _ := c.Get("role")
	if role, ok := val.(int); ok {
		return role
	}
	return 0
}
