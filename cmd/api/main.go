// @title           Bookshop API
// @version         1.0
// @description     线上书店后端：图书目录、购物车、订单取货、书签、评价与公告推送
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	_ "github.com/xiebiao/bookshop/docs"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/pkg/logger"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zlog, err := logger.New(logger.Config{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	response.SetLogger(zlog)

	// 业务代码直接上报指标，无论是否暴露/metrics都需要注册
	metrics.InitMetrics()

	shutdownTracer, err := tracing.InitTracer(cfg.Tracing.Enabled, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint)
	if err != nil {
		zlog.Fatal("init tracer failed", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			zlog.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	app, cleanup, err := InitializeApp(cfg, zlog)
	if err != nil {
		zlog.Fatal("init app failed", zap.Error(err))
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		zlog.Error("server exited with error", zap.Error(err))
		return
	}
	zlog.Info("server exited")
}
