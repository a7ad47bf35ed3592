package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopcart-next/internal/config"
	"github.com/shopcart-next/internal/logger"
	"github.com/shopcart-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Service 运行 asynq 消费者与闲置购物车定期清理
type Service struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建 worker 服务，队列未启用时返回错误
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}

	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.Logger = logger.SW("component", "asynq")
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
		retried, _ := asynq.GetRetryCount(ctx)
		logger.Warnw("worker_task_failed", "type", task.Type(), "retried", retried, "error", err)
	})

	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		server:   asynq.NewServer(opt, serverCfg),
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	return "worker"
}

// Start 启动消费并阻塞，直到 Stop 被调用
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if sweeper := newIdleSweeper(s.consumer); sweeper != nil {
		go sweeper.run(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止消费
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	return nil
}

// SweepService 队列关闭时独立运行的闲置购物车清理
type SweepService struct {
	sweeper *idleSweeper
	stop    chan struct{}
	once    sync.Once
}

// NewSweepService 创建清理服务，过期或清理间隔未配置时返回 nil
func NewSweepService(consumer *Consumer) *SweepService {
	sweeper := newIdleSweeper(consumer)
	if sweeper == nil {
		return nil
	}
	return &SweepService{sweeper: sweeper, stop: make(chan struct{})}
}

// Name 服务名称
func (s *SweepService) Name() string {
	return "cart_sweeper"
}

// Start 按间隔清理，直到 ctx 结束或 Stop 被调用
func (s *SweepService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-ctx.Done():
		}
	}()
	s.sweeper.run(ctx)
	return nil
}

// Stop 停止清理
func (s *SweepService) Stop(_ context.Context) error {
	s.once.Do(func() { close(s.stop) })
	return nil
}

// idleSweeper 定期批量删除闲置购物车，覆盖队列不可用期间创建的购物车
type idleSweeper struct {
	consumer *Consumer
	interval time.Duration
	ttl      time.Duration
	batch    int
}

func newIdleSweeper(consumer *Consumer) *idleSweeper {
	if consumer == nil || consumer.Container == nil || consumer.CartService == nil || consumer.Config == nil {
		return nil
	}
	cartCfg := consumer.Config.Cart
	if cartCfg.SweepInterval() <= 0 || cartCfg.ExpireAfter() <= 0 {
		return nil
	}
	return &idleSweeper{
		consumer: consumer,
		interval: cartCfg.SweepInterval(),
		ttl:      cartCfg.ExpireAfter(),
		batch:    cartCfg.SweepBatchSize,
	}
}

func (w *idleSweeper) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		w.sweep()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *idleSweeper) sweep() {
	if _, err := w.consumer.CartService.SweepIdle(w.ttl, w.batch); err != nil {
		logger.Warnw("worker_cart_sweep_failed", "error", err)
	}
}
