package router

import (
	"fmt"
	"strings"

	"github.com/shopcart-next/internal/cache"
	"github.com/shopcart-next/internal/config"
	publichandlers "github.com/shopcart-next/internal/http/handlers/public"
	handlershared "github.com/shopcart-next/internal/http/handlers/shared"
	"github.com/shopcart-next/internal/http/response"
	"github.com/shopcart-next/internal/logger"
	"github.com/shopcart-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "sc"
	}
	cartWriteRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:cart", redisPrefix),
		WindowSeconds: cfg.Security.CartRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.CartRateLimit.MaxRequests,
	}
	cartCreateLimit := RateLimitMiddleware(cache.Client(), cartWriteRule, KeyByIP)
	cartWriteLimit := RateLimitMiddleware(cache.Client(), cartWriteRule, KeyByIPAndParam("id"))

	// 中间件
	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 目录（只读）
		catalog := apiV1.Group("/catalog")
		{
			catalog.GET("", publicHandler.ListCatalog)
			catalog.GET("/:id", publicHandler.GetCatalogItem)
		}

		// 购物车
		carts := apiV1.Group("/carts")
		{
			carts.POST("", cartCreateLimit, publicHandler.CreateCart)
			carts.GET("/:id", publicHandler.GetCart)
			carts.PUT("/:id", cartWriteLimit, publicHandler.UpdateCart)
			carts.DELETE("/:id", cartWriteLimit, publicHandler.RemoveCart)
			carts.DELETE("/:id/items/:item_id", cartWriteLimit, publicHandler.RemoveCartItem)
			carts.POST("/:id/items/:item_id/increase", cartWriteLimit, publicHandler.IncreaseCartItem)
			carts.POST("/:id/items/:item_id/decrease", cartWriteLimit, publicHandler.DecreaseCartItem)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, handlershared.Message("error.route_not_found"))
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
