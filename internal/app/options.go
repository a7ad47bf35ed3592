package app

import (
	"os"
	"time"

	"github.com/shopcart-next/internal/config"
	"github.com/shopcart-next/internal/logger"

	"go.uber.org/zap"
)

// 启动模式
const (
	ModeAll    = "all"
	ModeAPI    = "api"
	ModeWorker = "worker"
)

const defaultShutdownTimeout = 10 * time.Second

// ValidMode 判断启动模式是否合法
func ValidMode(mode string) bool {
	return mode == ModeAll || mode == ModeAPI || mode == ModeWorker
}

func servesAPI(mode string) bool {
	return mode == ModeAll || mode == ModeAPI
}

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = logger.S()
	}
	if o.ShutdownTimeout <= 0 {
		o.ShutdownTimeout = defaultShutdownTimeout
	}
	if o.Mode == "" {
		o.Mode = ModeAll
	}
	return o
}
