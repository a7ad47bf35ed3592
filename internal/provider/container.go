package provider

import (
	"github.com/shopcart-next/internal/cache"
	"github.com/shopcart-next/internal/config"
	"github.com/shopcart-next/internal/logger"
	"github.com/shopcart-next/internal/models"
	"github.com/shopcart-next/internal/queue"
	"github.com/shopcart-next/internal/repository"
	"github.com/shopcart-next/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	CartRepo    repository.CartRepository
	CatalogRepo repository.CatalogRepository

	// Services
	CatalogService *service.CatalogService
	CartService    *service.CartService
}

// NewContainer 初始化容器（使用全局数据库连接）
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 队列未启用时客户端为空操作，过期任务由 cart_sweeper 定期清理兜底
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}
	return NewContainerWithDB(cfg, models.DB, queueClient)
}

// NewContainerWithDB 使用指定数据库连接与队列客户端初始化容器
func NewContainerWithDB(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories(db)
	c.initServices()

	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.CartRepo = repository.NewCartRepository(db)
	c.CatalogRepo = repository.NewCatalogRepository(db)
}

func (c *Container) initServices() {
	c.CatalogService = service.NewCatalogService(c.CatalogRepo, c.Config.Catalog.ListCacheTTL())

	var scheduler service.CartExpiryScheduler
	if c.QueueClient.Enabled() {
		scheduler = c.QueueClient
	}
	c.CartService = service.NewCartService(c.CartRepo, c.CatalogService, scheduler, service.CartServiceOptions{
		StrictStock: c.Config.Cart.StrictStock,
		ExpireAfter: c.Config.Cart.ExpireAfter(),
	})
}
