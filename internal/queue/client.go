package queue

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/shopcart-next/internal/config"
	"github.com/shopcart-next/internal/constants"

	"github.com/hibiken/asynq"
)

// DefaultQueue 购物车任务投递的队列
const DefaultQueue = constants.QueueDefault

const (
	defaultConcurrency  = 10
	cartExpireMaxRetry  = 3
	cartExpireRetention = time.Hour
)

// Client asynq 客户端封装，未启用时所有投递为空操作
type Client struct {
	client *asynq.Client
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{}, nil
	}
	return &Client{client: asynq.NewClient(redisClientOpt(cfg))}, nil
}

// Enabled 是否已连接队列
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueCartExpire 在 delay 之后投递购物车过期检查
func (c *Client) EnqueueCartExpire(payload CartExpirePayload, delay time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewCartExpireTask(payload)
	if err != nil {
		return err
	}
	_, err = c.client.Enqueue(task,
		asynq.Queue(DefaultQueue),
		asynq.ProcessIn(max(delay, 0)),
		asynq.MaxRetry(cartExpireMaxRetry),
		asynq.Retention(cartExpireRetention),
	)
	return err
}

// BuildServerConfig 生成 worker 使用的 redis 连接与服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: defaultConcurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return redisClientOpt(cfg), serverCfg
}

func redisClientOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	if cfg == nil {
		return asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	return asynq.RedisClientOpt{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
