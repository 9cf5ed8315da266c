package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshop/pkg/metrics"
)

// Metrics HTTP请求指标中间件
// path标签使用路由模板(如/api/v1/orders/:id)而非实际URL,
// 避免高基数标签
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.IncGauge(metrics.HTTPRequestsInProgress)

		c.Next()

		metrics.DecGauge(metrics.HTTPRequestsInProgress)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		metrics.IncCounterVec(metrics.HTTPRequestsTotal, map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		})
		metrics.ObserveHistogramVec(metrics.HTTPRequestDuration, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, time.Since(start).Seconds())
	}
}
