//go:build wireinject
// +build wireinject

// Wire依赖注入配置，修改后执行 `wire gen ./cmd/api` 重新生成wire_gen.go
//
// 依赖链：Config → DB/Redis → Repository → Domain Service → UseCase → Handler → Router → App

package main

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	appannouncement "github.com/xiebiao/bookshop/internal/application/announcement"
	appbook "github.com/xiebiao/bookshop/internal/application/book"
	appbookmark "github.com/xiebiao/bookshop/internal/application/bookmark"
	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/application/port"
	appreview "github.com/xiebiao/bookshop/internal/application/review"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/shared"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bookshop/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/internal/interface/http/router"
)

// infrastructureSet 数据库、Redis、文件存储
var infrastructureSet = wire.NewSet(
	provideDB,
	provideRedisClient,
	redis.NewSessionStore,
	redis.NewCacheStore,
	redis.NewLocker,
	provideFileStorage,
	wire.Bind(new(port.SessionStore), new(*redis.SessionStore)),
	wire.Bind(new(port.Cache), new(*redis.CacheStore)),
	wire.Bind(new(port.Locker), new(*redis.Locker)),
	wire.Bind(new(port.FileStorage), new(*storage.LocalStorage)),
)

// repositorySet 仓储与事务管理器
var repositorySet = wire.NewSet(
	mysql.NewUserRepository,
	mysql.NewBookRepository,
	mysql.NewCartRepository,
	mysql.NewOrderRepository,
	mysql.NewBookmarkRepository,
	mysql.NewReviewRepository,
	mysql.NewAnnouncementRepository,
	mysql.NewTxManager,
	wire.Bind(new(shared.TxManager), new(*mysql.TxManager)),
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	user.NewService,
	book.NewService,
	order.NewPlainClaimCodeVerifier,
)

// messagingSet 实时推送与订单事件
var messagingSet = wire.NewSet(
	provideHub,
	provideRedisBridge,
	provideNotifier,
	apporder.NewEventHandler,
	provideLocalBus,
	provideMQPublisher,
	provideMQConsumer,
	provideEventPublisher,
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appuser.NewRegisterUseCase,
	provideLoginUseCase,
	appuser.NewLogoutUseCase,
	appuser.NewRefreshUseCase,
	appuser.NewQueryUseCase,
	appuser.NewSeedAdminUseCase,

	appbook.NewInvalidator,
	appbook.NewAddBookUseCase,
	appbook.NewUpdateBookUseCase,
	appbook.NewSetDiscountUseCase,
	appbook.NewDeleteBookUseCase,
	appbook.NewListBooksUseCase,
	provideGetBookUseCase,
	appbook.NewGetFiltersUseCase,
	provideGetFeaturedUseCase,
	wire.Bind(new(apporder.BookCacheInvalidator), new(*appbook.Invalidator)),

	appcart.NewAddToCartUseCase,
	appcart.NewManageCartUseCase,

	provideCheckoutUseCase,
	apporder.NewConfirmOrderUseCase,
	apporder.NewCompleteOrderUseCase,
	provideCancelOrderUseCase,
	apporder.NewQueryUseCase,

	appbookmark.NewToggleUseCase,
	appbookmark.NewListUseCase,
	appbookmark.NewStatusUseCase,

	appreview.NewAddReviewUseCase,
	appreview.NewListUseCase,

	appannouncement.NewPublisher,
	appannouncement.NewAddAnnouncementUseCase,
	appannouncement.NewUpdateAnnouncementUseCase,
	appannouncement.NewDeleteAnnouncementUseCase,
	appannouncement.NewQueryUseCase,
	provideScheduler,
)

// interfaceSet 认证、处理器、路由与HTTP服务
var interfaceSet = wire.NewSet(
	provideJWTManager,
	middleware.NewAuthMiddleware,
	handler.NewUserHandler,
	provideBookHandler,
	handler.NewCartHandler,
	handler.NewOrderHandler,
	handler.NewBookmarkHandler,
	handler.NewReviewHandler,
	handler.NewAnnouncementHandler,
	handler.NewNotificationHandler,
	wire.Struct(new(router.Handlers), "*"),
	router.New,
	provideHTTPServer,
)

// InitializeApp 组装整个应用，cleanup按创建的逆序释放MQ、Redis与数据库连接
func InitializeApp(cfg *config.Config, logger *zap.Logger) (*App, func(), error) {
	wire.Build(
		infrastructureSet,
		repositorySet,
		domainSet,
		messagingSet,
		applicationSet,
		interfaceSet,
		newApp,
	)
	return nil, nil, nil
}
