package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopcart-next/internal/logger"
	"github.com/shopcart-next/internal/provider"
	"github.com/shopcart-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCartExpire, c.handleCartExpire)
}

func (c *Consumer) handleCartExpire(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_cart_expire_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseCartExpirePayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_cart_expire_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	cartID := strings.TrimSpace(payload.CartID)
	if cartID == "" {
		logger.Debugw("worker_cart_expire_skip_invalid_payload")
		return nil
	}
	if c.CartService == nil || c.Config == nil {
		logger.Warnw("worker_cart_expire_skip_service_nil", "cart_id", cartID)
		return nil
	}
	removed, err := c.CartService.ExpireIfIdle(cartID, c.Config.Cart.ExpireAfter())
	if err != nil {
		logger.Warnw("worker_cart_expire_failed", "cart_id", cartID, "error", err)
		return err
	}
	if !removed {
		logger.Debugw("worker_cart_expire_skip_active", "cart_id", cartID)
	}
	return nil
}
