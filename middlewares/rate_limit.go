// file: middlewares/rate_limit.go
package middlewares

import (
	"time"

	"EscapeCTF/services"
	"EscapeCTF/utils"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware 按来源 IP 的请求闸门。
// 限速器是注入的服务（Redis 或进程内实现），不是包级全局 map。
func RateLimitMiddleware(limiter services.RateLimiter, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := limiter.Allow(c.Request.Context(), c.ClientIP(), "http_request", limit, window)
		if err != nil {
			// 限速器故障时放行，不把依赖故障放大成全站拒绝
			c.Next()
			return
		}
		if !ok {
			utils.Error(c, 4290, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}
		c.Next()
	}
}
