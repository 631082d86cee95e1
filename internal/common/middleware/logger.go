package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"social-hub-backend/internal/common/logger"
)

// Logger пишет access-лог через глобальный zerolog. Пробы и /metrics не логируются.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if skipAccessLog(path) {
			return
		}
		if raw != "" && !strings.Contains(raw, "access_token") {
			path = path + "?" + raw
		}

		event := logger.Info()
		if c.Writer.Status() >= 500 {
			event = logger.Error()
		}

		event.
			Str("request_id", getRequestID(c)).
			Str("user_id", GetUserID(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Int("body_size", c.Writer.Size()).
			Msg("Request processed")
	}
}

func skipAccessLog(path string) bool {
	switch path {
	case "/health", "/live", "/ready", "/metrics":
		return true
	}
	return false
}
