package router

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/shopcart-next/internal/config"
	handlershared "github.com/shopcart-next/internal/http/handlers/shared"
	"github.com/shopcart-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Content-Type", "Content-Length", "Accept-Encoding", "Cache-Control", "X-Requested-With", requestIDHeader}
)

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return fallback
	}
	return values
}

// CORSMiddleware 跨域中间件，OPTIONS 预检直接返回 204
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	origins := orDefault(cfg.AllowedOrigins, []string{"*"})
	static := map[string]string{
		"Access-Control-Allow-Methods":  strings.Join(orDefault(cfg.AllowedMethods, defaultCORSMethods), ", "),
		"Access-Control-Allow-Headers":  strings.Join(orDefault(cfg.AllowedHeaders, defaultCORSHeaders), ", "),
		"Access-Control-Expose-Headers": requestIDHeader,
	}
	if cfg.AllowCredentials {
		static["Access-Control-Allow-Credentials"] = "true"
	}
	if cfg.MaxAge > 0 {
		static["Access-Control-Max-Age"] = strconv.Itoa(cfg.MaxAge)
	}

	return func(c *gin.Context) {
		header := c.Writer.Header()
		if allowed := resolveAllowedOrigin(c.GetHeader("Origin"), origins, cfg.AllowCredentials); allowed != "" {
			header.Set("Access-Control-Allow-Origin", allowed)
			if allowed != "*" {
				header.Add("Vary", "Origin")
			}
		}
		for name, value := range static {
			header.Set(name, value)
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// resolveAllowedOrigin 计算 Access-Control-Allow-Origin，携带凭证时通配符回显请求来源
func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	for _, allowed := range allowedOrigins {
		if allowed != "*" {
			continue
		}
		if allowCredentials && origin != "" {
			return origin
		}
		return "*"
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 透传或生成 X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

// RecoveryMiddleware 捕获 panic 并返回 500 统一结构
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}
			handlershared.RequestLog(c).Errorw("request_panic",
				"path", c.Request.URL.Path,
				"panic", recovered,
				"stack", string(debug.Stack()),
			)
			response.Error(c, response.CodeInternal, handlershared.Message("error.internal"))
			c.Abort()
		}()
		c.Next()
	}
}

// LoggerMiddleware 访问日志，按 HTTP 状态选择日志级别
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []interface{}{
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"route", route,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		switch status := c.Writer.Status(); {
		case len(c.Errors) > 0 || status >= http.StatusInternalServerError:
			sugar.Errorw("request", append(fields, "errors", c.Errors.String())...)
		case status >= http.StatusBadRequest:
			sugar.Warnw("request", fields...)
		default:
			sugar.Infow("request", fields...)
		}
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
