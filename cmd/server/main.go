package main

import (
	"flag"
	"fmt"
	"os"
	"syscall"

	"github.com/shopcart-next/internal/app"
	"github.com/shopcart-next/internal/config"
	"github.com/shopcart-next/internal/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	mode := flag.String("mode", app.ModeAll, "启动模式: all, api, worker")
	migrateOnly := flag.Bool("migrate", false, "仅执行数据库迁移后退出")
	flag.Parse()

	if !app.ValidMode(*mode) {
		fmt.Fprintf(os.Stderr, "unknown mode %q, expected all|api|worker\n", *mode)
		os.Exit(2)
	}
	fmt.Printf("\033[1;36mShopCart API\033[0m \033[2m(mode: %s)\033[0m\n", *mode)

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer logger.Sync()
	stdLog := logger.StdLogger()

	if err := app.PrepareDatabase(cfg); err != nil {
		stdLog.Fatalf("%v", err)
	}
	if *migrateOnly {
		logger.Infow("database_migrated", "driver", cfg.Database.Driver)
		return
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    *mode,
	})
	if err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}
