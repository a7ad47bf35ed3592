package router

import (
	"context"
	"strconv"
	"strings"

	handlershared "github.com/shopcart-next/internal/http/handlers/shared"
	"github.com/shopcart-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 从请求中提取限流维度
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) key(dimension string) string {
	if r.Prefix == "" {
		return dimension
	}
	return r.Prefix + ":" + dimension
}

// retryAfter 距窗口结束的秒数，TTL 异常时按整窗口计算
func (r RateLimitRule) retryAfter(ttl int64) int {
	if ttl < 1 {
		return r.WindowSeconds
	}
	return int(ttl)
}

// INCR 首次命中时设置过期，返回 {count, ttl}
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return {current, redis.call("TTL", KEYS[1])}
`)

func hitWindow(ctx context.Context, client *redis.Client, key string, windowSeconds int) (count int64, ttl int64, err error) {
	values, err := fixedWindowScript.Run(ctx, client, []string{key}, windowSeconds).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(values) < 2 {
		return 0, 0, redis.Nil
	}
	return values[0], values[1], nil
}

// RateLimitMiddleware 基于 Redis 的固定窗口限流，Redis 不可用时放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		dimension := ""
		if keyFunc != nil {
			dimension = strings.TrimSpace(keyFunc(c))
		}
		if dimension == "" {
			dimension = c.ClientIP()
		}
		key := rule.key(dimension)

		count, ttl, err := hitWindow(c.Request.Context(), client, key, rule.WindowSeconds)
		if err != nil {
			handlershared.RequestLog(c).Warnw("rate_limit_unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.MaxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(int64(rule.MaxRequests)-count, 0), 10))
		if count <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		wait := rule.retryAfter(ttl)
		c.Header("Retry-After", strconv.Itoa(wait))
		handlershared.RequestLog(c).Infow("rate_limit_exceeded", "key", key, "count", count)
		response.ErrorWithData(c, response.CodeTooManyRequests, handlershared.Message("error.too_many_requests"), gin.H{
			"retry_after": wait,
		})
		c.Abort()
	}
}

// KeyByIP 按客户端 IP 限流
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndParam 按路由参数与客户端 IP 组合限流，参数为空时退回 IP
func KeyByIPAndParam(param string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.TrimSpace(c.Param(param))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}
