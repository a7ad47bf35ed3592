package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopcart-next/internal/config"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix   = "sc"
	scanBatchSize   = 200
	defaultRedisHost = "127.0.0.1"
)

// store 进程内共享的 Redis 连接与 key 前缀
type store struct {
	mu     sync.RWMutex
	client *redis.Client
	prefix string
}

var shared = &store{prefix: defaultPrefix}

func (s *store) snapshot() (*redis.Client, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.prefix
}

// InitRedis 按配置连接 Redis，未启用时缓存与限流均降级为空操作
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		UseClient(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = defaultRedisHost
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	UseClient(redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Prefix)
	return nil
}

// UseClient 替换共享客户端，nil 表示关闭缓存
func UseClient(client *redis.Client, prefix string) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = defaultPrefix
	}
	shared.mu.Lock()
	shared.client = client
	shared.prefix = prefix
	shared.mu.Unlock()
}

// Enabled 是否已配置 Redis
func Enabled() bool {
	client, _ := shared.snapshot()
	return client != nil
}

// Client 共享客户端，未启用时为 nil
func Client() *redis.Client {
	client, _ := shared.snapshot()
	return client
}

// Prefix 当前 key 前缀
func Prefix() string {
	_, prefix := shared.snapshot()
	return prefix
}

// Close 关闭并清空共享客户端
func Close() error {
	shared.mu.Lock()
	client := shared.client
	shared.client = nil
	shared.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close()
}

// BuildKey 拼接带前缀的 key
func BuildKey(key string) string {
	_, prefix := shared.snapshot()
	key = strings.TrimSpace(key)
	if key == "" {
		return prefix
	}
	return prefix + ":" + key
}

// GetJSON 读取 JSON 缓存，返回是否命中
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	client := Client()
	if client == nil {
		return false, nil
	}
	raw, err := client.Get(ctx, BuildKey(key)).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client := Client()
	if client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, BuildKey(key), raw, ttl).Err()
}

// Del 删除单个 key
func Del(ctx context.Context, key string) error {
	client := Client()
	if client == nil {
		return nil
	}
	return client.Del(ctx, BuildKey(key)).Err()
}

// DelByPrefix 删除以 prefix 开头的全部 key，返回删除数量
func DelByPrefix(ctx context.Context, prefix string) (int, error) {
	client := Client()
	if client == nil {
		return 0, nil
	}
	iter := client.Scan(ctx, 0, BuildKey(prefix)+"*", scanBatchSize).Iterator()
	keys := make([]string, 0, scanBatchSize)
	removed := 0
	flush := func() error {
		if len(keys) == 0 {
			return nil
		}
		n, err := client.Del(ctx, keys...).Result()
		removed += int(n)
		keys = keys[:0]
		return err
	}
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) >= scanBatchSize {
			if err := flush(); err != nil {
				return removed, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}
	return removed, flush()
}
