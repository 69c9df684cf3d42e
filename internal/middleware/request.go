package middleware

import (
	"time"

	"phone-shop/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey 是 context 和响应头里使用的请求 ID 键
const (
	RequestIDKey    = "requestID"
	RequestIDHeader = "X-Request-ID"
)

// RequestLogger 为每个请求分配 ID 并用 zerolog 记录访问日志
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		log := logger.WithRequestID(id)
		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("request")
	}
}
