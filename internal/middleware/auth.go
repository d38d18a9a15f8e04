package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"Lee_Forum/internal/pkg"
	"Lee_Forum/internal/repository/redis"
)

const ContextUserIDKey = "user_id"

// AuthMiddleware 校验 access token，且必须与 redis 中该用户当前的登录 token 一致
func AuthMiddleware(tokens *pkg.TokenManager, sessions *redis.SessionRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid authorization format"})
			return
		}
		tokenStr := parts[1]

		claims, err := tokens.ParseAccess(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			return
		}

		ctx := c.Request.Context()
		// redis校验是否是正确的token
		origin, err := sessions.GetUserToken(ctx, claims.UserID)
		if err != nil || origin != tokenStr {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "Account has been logging elsewhere"})
			return
		}

		// 校验通过后更新过期时间
		if err := sessions.ExtendUserToken(ctx, claims.UserID); err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"msg": "session store unavailable"})
			return
		}

		// 注入 user_id
		c.Set(ContextUserIDKey, claims.UserID)
		c.Next()
	}
}

// UserID handler 取当前登录用户
func UserID(c *gin.Context) uint64 {
	return c.GetUint64(ContextUserIDKey)
}
