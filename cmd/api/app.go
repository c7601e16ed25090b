package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	appannouncement "github.com/xiebiao/bookshop/internal/application/announcement"
	"github.com/xiebiao/bookshop/internal/application/port"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/eventbus"
	"github.com/xiebiao/bookshop/internal/infrastructure/notification"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// App 进程级组件：HTTP服务与后台任务
type App struct {
	cfg       *config.Config
	logger    *zap.Logger
	server    *http.Server
	seedAdmin *appuser.SeedAdminUseCase
	scheduler *appannouncement.Scheduler
	hub       *notification.Hub
	bridge    *notification.RedisBridge // 未启用Redis桥接时为nil
	consumer  *mq.Consumer              // 未启用MQ时为nil
	onEvent   port.EventHandler
}

func newApp(
	cfg *config.Config,
	logger *zap.Logger,
	server *http.Server,
	seedAdmin *appuser.SeedAdminUseCase,
	scheduler *appannouncement.Scheduler,
	hub *notification.Hub,
	bridge *notification.RedisBridge,
	consumer *mq.Consumer,
	onEvent port.EventHandler,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		server:    server,
		seedAdmin: seedAdmin,
		scheduler: scheduler,
		hub:       hub,
		bridge:    bridge,
		consumer:  consumer,
		onEvent:   onEvent,
	}
}

// Run 启动后台任务并阻塞监听HTTP，ctx取消后优雅关闭
// 1. 创建初始管理员（已存在则跳过）
// 2. 启动公告调度、Redis桥接订阅、MQ消费
// 3. ctx取消 → 停止接收请求 → 等待后台任务退出 → 断开全部WebSocket
func (a *App) Run(ctx context.Context) error {
	admin := a.cfg.Admin
	if admin.Email != "" {
		if err := a.seedAdmin.Execute(ctx, admin.Email, admin.Password, admin.Nickname); err != nil {
			return fmt.Errorf("创建管理员失败: %w", err)
		}
	}

	bgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.scheduler.Run(bgCtx)
	}()

	if a.bridge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.bridge.Run(bgCtx); err != nil {
				a.logger.Error("notification bridge stopped", zap.Error(err))
			}
		}()
	}

	if a.consumer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := eventbus.Consume(bgCtx, a.consumer, a.onEvent); err != nil {
				a.logger.Error("order event consumer stopped", zap.Error(err))
			}
		}()
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("HTTP服务异常退出: %w", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownWait)
	defer cancelShutdown()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("http server shutdown incomplete", zap.Error(err))
	}

	cancel()
	wg.Wait()
	a.hub.Close()
	return runErr
}
