package middleware

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/user/vidora/internal/utils"
)

// RateLimit 固定窗口限流中间件，按 客户端IP+路由 计数。
// rdb 为 nil 时（未配置 Redis）直接放行；Redis 故障时也放行，
// 限流属于保护措施，不能因为它把登录整个弄挂
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	if rdb == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), utils.HashIP(c.ClientIP()))
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Printf("[RateLimit] redis 异常，放行请求: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			// 第一次命中时设置窗口过期
			rdb.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			c.Header("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			utils.Error(c, 429, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
