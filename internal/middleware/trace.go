package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"Lee_Forum/internal/pkg/logger"
)

const TraceHeader = "X-Trace-Id"

// Trace 优先使用前端传入的 trace id，否则生成新的；写入请求 ctx 并回写响应头
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := logger.WithTraceID(c.Request.Context(), c.GetHeader(TraceHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(TraceHeader, logger.TraceID(ctx))
		c.Next()
	}
}

// RequestLogger 按状态码分级记录每个请求
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if uid := UserID(c); uid != 0 {
			fields = append(fields, zap.Uint64("user_id", uid))
		}

		l := log.With(c.Request.Context())
		switch {
		case status >= 500:
			l.Error("server error", fields...)
		case status >= 400:
			l.Warn("client error", fields...)
		default:
			l.Info("request completed", fields...)
		}
	}
}
