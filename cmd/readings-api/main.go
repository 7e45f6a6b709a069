package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/dayanaadylkhanova/device-readings/internal/app"
	"github.com/dayanaadylkhanova/device-readings/pkg/config"
	"github.com/dayanaadylkhanova/device-readings/pkg/logger"
	"go.uber.org/zap"
)

var (
	AppName      = "readings-api"
	AppBuildTime = "dev"
	AppCommit    = "dev"
	AppRelease   = "dev"
)

func main() {
	// 1) Конфиг
	cfg, err := config.Parse()
	if err != nil {
		log.Fatalf("can't parse app config: %v", err)
	}
	if cfg.MaxCPU > 0 {
		runtime.GOMAXPROCS(cfg.MaxCPU)
	}

	info := &app.AppInfo{
		Name:      AppName,
		BuildTime: AppBuildTime,
		Commit:    AppCommit,
		Release:   AppRelease,
	}

	// 2) Логгер
	zl := logger.WithService(logger.NewJSON(cfg.LogLevel), AppName, AppRelease)
	defer func() {
		if r := recover(); r != nil {
			zl.Error("panic error", zap.Error(fmt.Errorf("%v", r)))
		}
		_ = zl.Sync()
	}()
	zap.ReplaceGlobals(zl)
	zl.Info("application started",
		zap.String("build_time", info.BuildTime),
		zap.String("commit", info.Commit),
		zap.Int("shards", cfg.Shards),
	)

	// 3) Сигналы
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, *cfg, info, zl)
	if err != nil {
		zl.Error("can't build app", zap.Error(err))
		return
	}
	if err := application.Run(ctx); err != nil {
		switch {
		case errors.Is(err, app.ErrAppStartup):
			zl.Error("can't run application", zap.Error(err))
		case errors.Is(err, app.ErrAppShutdownWithError):
			zl.Error("application is shutdown with error", zap.Error(err))
		default:
			zl.Warn("application is shutdown")
		}
	}
}
