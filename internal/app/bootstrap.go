package app

import (
	"errors"
	"fmt"

	"github.com/shopcart-next/internal/config"
	"github.com/shopcart-next/internal/logger"
	"github.com/shopcart-next/internal/models"
	"github.com/shopcart-next/internal/provider"
	"github.com/shopcart-next/internal/router"
	"github.com/shopcart-next/internal/worker"
)

// PrepareDatabase 打开数据库连接并迁移购物车相关表
func PrepareDatabase(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	pool := models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, pool); err != nil {
		return fmt.Errorf("数据库初始化失败: %w", err)
	}
	if err := models.AutoMigrate(); err != nil {
		return fmt.Errorf("数据库迁移失败: %w", err)
	}
	return nil
}

// BuildRunner 按启动模式组装 HTTP 与 Worker 服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !ValidMode(mode) {
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}

	container := provider.NewContainer(cfg)
	services := make([]Service, 0, 2)

	if servesAPI(mode) {
		services = append(services, NewHTTPService(cfg.Server, router.SetupRouter(cfg, container)))
	}

	switch {
	case mode == ModeWorker, mode == ModeAll && cfg.Queue.Enabled:
		workerService, err := worker.NewService(&cfg.Queue, worker.NewConsumer(container))
		if err != nil {
			return nil, err
		}
		services = append(services, workerService)
	case mode == ModeAll:
		logger.Warnw("app_worker_skipped", "reason", "queue_disabled")
		if sweeper := worker.NewSweepService(worker.NewConsumer(container)); sweeper != nil {
			services = append(services, sweeper)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = opts.withDefaults()
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	opts.Logger.Infow("app_start", "addr", listenAddr(opts.Config.Server), "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
