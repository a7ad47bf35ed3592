package app

import (
	"context"
	"errors"
	"os/signal"
	"time"

	"go.uber.org/zap"
)

// Service 可被 Runner 托管的长运行服务
type Service interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Runner 并行启动服务，任一服务退出即整体关闭
type Runner struct {
	services []Service
}

// NewRunner 创建服务运行器
func NewRunner(services ...Service) *Runner {
	return &Runner{services: services}
}

// RunWithOptions 按选项监听系统信号并运行
func RunWithOptions(runner *Runner, opts Options) error {
	if runner == nil {
		return errors.New("runner is nil")
	}
	opts = opts.withDefaults()

	ctx := context.Background()
	if len(opts.Signals) > 0 {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, opts.Signals...)
		defer stop()
	}
	return runner.Run(ctx, opts.ShutdownTimeout, opts.Logger)
}

// Run 阻塞运行所有服务，直到 ctx 结束或某个服务返回
func (r *Runner) Run(ctx context.Context, stopTimeout time.Duration, log *zap.SugaredLogger) error {
	if r == nil || len(r.services) == 0 {
		return errors.New("no services to run")
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	exited := make(chan error, len(r.services))
	for _, svc := range r.services {
		go r.startOne(runCtx, svc, exited, log)
	}

	var cause error
	select {
	case <-runCtx.Done():
		cause = runCtx.Err()
	case cause = <-exited:
	}
	cancel()

	r.stopAll(stopTimeout, log)
	if errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}

func (r *Runner) startOne(ctx context.Context, svc Service, exited chan<- error, log *zap.SugaredLogger) {
	if svc == nil {
		exited <- errors.New("service is nil")
		return
	}
	if log != nil {
		log.Infow("service_start", "service", svc.Name())
	}
	err := svc.Start(ctx)
	if log != nil {
		log.Infow("service_exit", "service", svc.Name(), "error", err)
	}
	exited <- err
}

func (r *Runner) stopAll(timeout time.Duration, log *zap.SugaredLogger) {
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for _, svc := range r.services {
		if svc == nil {
			continue
		}
		if err := svc.Stop(ctx); err != nil && log != nil {
			log.Errorw("service_stop_failed", "service", svc.Name(), "error", err)
		}
	}
}
