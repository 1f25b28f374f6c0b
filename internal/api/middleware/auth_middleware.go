package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cvstudio/internal/auth"
)

// UserIDKey 是认证中间件写入 gin 上下文的用户 ID 键。
const UserIDKey = "userID"

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

// AuthMiddleware 校验 Bearer 访问令牌并将 userID 注入上下文。
func AuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c)
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c)
			return
		}

		rawToken := parts[1]
		if strings.TrimSpace(rawToken) == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := authService.ValidateToken(rawToken)
		if err != nil || claims.TokenType != "access" {
			abortUnauthorized(c)
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// DemoIdentity 在内存后端（演示模式）下为每个请求注入固定匿名用户。
// 此模式没有注册与登录，所有人共享同一份会话内数据。
func DemoIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserIDKey, uint(1))
		c.Next()
	}
}
