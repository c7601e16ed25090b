package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	appannouncement "github.com/xiebiao/bookshop/internal/application/announcement"
	appbook "github.com/xiebiao/bookshop/internal/application/book"
	appbookmark "github.com/xiebiao/bookshop/internal/application/bookmark"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/application/port"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/announcement"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/review"
	"github.com/xiebiao/bookshop/internal/domain/shared"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/eventbus"
	"github.com/xiebiao/bookshop/internal/infrastructure/notification"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/mq"
)

// 以下Provider负责从Config中取出标量参数，或为需要释放的资源附带cleanup

func provideDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

func provideRedisClient(cfg *config.Config, logger *zap.Logger) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpire, cfg.JWT.RefreshTokenExpire)
}

func provideFileStorage(cfg *config.Config, logger *zap.Logger) (*storage.LocalStorage, error) {
	return storage.NewLocalStorage(cfg.Server.UploadDir, cfg.Server.UploadPath, logger)
}

// provideLoginUseCase 会话有效期与Access Token一致
func provideLoginUseCase(
	cfg *config.Config,
	userService user.Service,
	jwtManager *jwt.Manager,
	sessions port.SessionStore,
	logger *zap.Logger,
) *appuser.LoginUseCase {
	return appuser.NewLoginUseCase(userService, jwtManager, sessions, cfg.JWT.AccessTokenExpire, logger)
}

func provideGetBookUseCase(
	cfg *config.Config,
	bookRepo book.Repository,
	reviewRepo review.Repository,
	cache port.Cache,
	logger *zap.Logger,
) *appbook.GetBookUseCase {
	return appbook.NewGetBookUseCase(bookRepo, reviewRepo, cache, cfg.Cache.BookDetailTTL, logger)
}

func provideGetFeaturedUseCase(
	cfg *config.Config,
	bookRepo book.Repository,
	cache port.Cache,
	logger *zap.Logger,
) *appbook.GetFeaturedUseCase {
	return appbook.NewGetFeaturedUseCase(bookRepo, cache, cfg.Cache.FeaturedTTL, logger)
}

func provideCheckoutUseCase(
	cfg *config.Config,
	txManager shared.TxManager,
	cartRepo cart.Repository,
	bookRepo book.Repository,
	orderRepo order.Repository,
	events port.EventPublisher,
	invalidator apporder.BookCacheInvalidator,
	logger *zap.Logger,
) *apporder.CheckoutUseCase {
	return apporder.NewCheckoutUseCase(txManager, cartRepo, bookRepo, orderRepo, events, invalidator, cfg.Order.ReserveStock, logger)
}

func provideCancelOrderUseCase(
	cfg *config.Config,
	txManager shared.TxManager,
	orderRepo order.Repository,
	bookRepo book.Repository,
	events port.EventPublisher,
	invalidator apporder.BookCacheInvalidator,
	logger *zap.Logger,
) *apporder.CancelOrderUseCase {
	return apporder.NewCancelOrderUseCase(txManager, orderRepo, bookRepo, events, invalidator, cfg.Order.ReserveStock, logger)
}

func provideScheduler(
	cfg *config.Config,
	repo announcement.Repository,
	publisher *appannouncement.Publisher,
	locker port.Locker,
	logger *zap.Logger,
) *appannouncement.Scheduler {
	return appannouncement.NewScheduler(repo, publisher, locker, cfg.Notification.PollInterval, cfg.Notification.LockTTL, logger)
}

func provideBookHandler(
	cfg *config.Config,
	addBook *appbook.AddBookUseCase,
	updateBook *appbook.UpdateBookUseCase,
	setDiscount *appbook.SetDiscountUseCase,
	deleteBook *appbook.DeleteBookUseCase,
	listBooks *appbook.ListBooksUseCase,
	getBook *appbook.GetBookUseCase,
	getFilters *appbook.GetFiltersUseCase,
	getFeatured *appbook.GetFeaturedUseCase,
	bookmarks *appbookmark.StatusUseCase,
) *handler.BookHandler {
	return handler.NewBookHandler(addBook, updateBook, setDiscount, deleteBook, listBooks, getBook, getFilters, getFeatured, bookmarks, cfg.Server.MaxUploadMB)
}

// provideHub WebSocket握手的Origin白名单与CORS保持一致
func provideHub(cfg *config.Config, logger *zap.Logger) *notification.Hub {
	return notification.NewHub(cfg.CORS.AllowOrigins, logger)
}

// provideRedisBridge 多实例部署时经Redis Pub/Sub转发推送，未启用返回nil
func provideRedisBridge(cfg *config.Config, client *goredis.Client, hub *notification.Hub, logger *zap.Logger) *notification.RedisBridge {
	if !cfg.Notification.UseRedisBridge {
		return nil
	}
	return notification.NewRedisBridge(client, cfg.Notification.RedisChannel, hub, logger)
}

func provideNotifier(hub *notification.Hub, bridge *notification.RedisBridge) port.Notifier {
	if bridge != nil {
		return bridge
	}
	return hub
}

func provideLocalBus(logger *zap.Logger, onEvent port.EventHandler) *eventbus.LocalBus {
	return eventbus.NewLocalBus(logger, onEvent)
}

// provideMQPublisher 未启用MQ时返回nil
func provideMQPublisher(cfg *config.Config, logger *zap.Logger) (*mq.Publisher, func(), error) {
	if !cfg.MQ.Enabled {
		return nil, func() {}, nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化MQ发布者失败: %w", err)
	}
	return publisher, func() { _ = publisher.Close() }, nil
}

// provideMQConsumer 订阅全部订单事件，未启用MQ时返回nil
func provideMQConsumer(cfg *config.Config, logger *zap.Logger) (*mq.Consumer, func(), error) {
	if !cfg.MQ.Enabled {
		return nil, func() {}, nil
	}
	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, cfg.MQ.Queue, []string{"order.*"}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("初始化MQ消费者失败: %w", err)
	}
	return consumer, func() { _ = consumer.Close() }, nil
}

func provideEventPublisher(local *eventbus.LocalBus, publisher *mq.Publisher, logger *zap.Logger) port.EventPublisher {
	if publisher == nil {
		return local
	}
	return eventbus.NewRabbitBus(publisher, local, logger)
}

func provideHTTPServer(cfg *config.Config, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
