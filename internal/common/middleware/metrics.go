package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"social-hub-backend/internal/common/metrics"
)

// Metrics пишет длительность и статус каждого запроса в Prometheus.
// Путь берется из шаблона маршрута, чтобы не плодить метки по id.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncInFlight()
		defer metrics.DecInFlight()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
