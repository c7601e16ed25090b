// Package router 注册HTTP路由
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
	"github.com/xiebiao/bookshop/pkg/validator"
)

// Handlers 全部HTTP处理器
type Handlers struct {
	User         *handler.UserHandler
	Book         *handler.BookHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Bookmark     *handler.BookmarkHandler
	Review       *handler.ReviewHandler
	Announcement *handler.AnnouncementHandler
	Notification *handler.NotificationHandler
}

// New 创建Gin引擎并注册全部路由
func New(cfg *config.Config, logger *zap.Logger, h *Handlers, auth *middleware.AuthMiddleware) *gin.Engine {
	switch cfg.Server.Mode {
	case gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	if err := validator.Register(); err != nil {
		logger.Warn("register binding rules failed", zap.Error(err))
	}

	r := gin.New()
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	r.Use(
		middleware.Recovery(logger),
		middleware.Tracing(),
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics())
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong", "status": "healthy"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.Static(cfg.Server.UploadPath, cfg.Server.UploadDir)
	r.GET("/hubs/notifications", h.Notification.Connect)

	api := r.Group("/api")
	requireAuth := auth.RequireAuth()
	admin := middleware.RequireRole(user.RoleAdmin)
	staff := middleware.RequireRole(user.RoleStaff)
	backOffice := middleware.RequireRole(user.RoleAdmin, user.RoleStaff)
	customer := middleware.RequireRole(user.RoleRegular)

	users := api.Group("/User")
	{
		users.POST("/register", h.User.Register)
		users.POST("/login", h.User.Login)
		users.POST("/refresh", h.User.Refresh)
		users.POST("/logout", requireAuth, h.User.Logout)
		users.GET("/me", requireAuth, h.User.Me)

		users.GET("/admin/users", requireAuth, admin, h.User.ListUsers)
		users.GET("/admin/staff", requireAuth, admin, h.User.ListStaff)
		users.POST("/admin/staff", requireAuth, admin, h.User.CreateStaff)
	}

	books := api.Group("/Book")
	{
		books.GET("", h.Book.ListBooks)
		books.GET("/filters", h.Book.GetFilters)
		books.GET("/featured", h.Book.GetFeatured)
		books.GET("/:id", auth.OptionalAuth(), h.Book.GetBook)

		books.POST("/addBook", requireAuth, admin, h.Book.AddBook)
		books.PUT("/:id", requireAuth, admin, h.Book.UpdateBook)
		books.PUT("/:id/discount", requireAuth, admin, h.Book.SetDiscount)
		books.DELETE("/:id", requireAuth, admin, h.Book.DeleteBook)
	}

	carts := api.Group("/Cart", requireAuth, customer)
	{
		carts.GET("", h.Cart.Get)
		carts.POST("/add-to-cart/:bookId", h.Cart.Add)
		carts.PUT("/update/:bookId", h.Cart.UpdateQuantity)
		carts.DELETE("/remove/:bookId", h.Cart.Remove)
		carts.DELETE("/clear", h.Cart.Clear)
	}

	orders := api.Group("/Order", requireAuth)
	{
		orders.POST("/checkout", customer, h.Order.Checkout)
		orders.POST("/confirm-order/:id", customer, h.Order.Confirm)
		orders.POST("/cancel-order/:id", customer, h.Order.Cancel)
		orders.POST("/complete-order/:id", staff, h.Order.Complete)

		orders.GET("/user-orders", h.Order.ListMine)
		orders.GET("/admin/all-orders", backOffice, h.Order.ListAll)
		orders.GET("/admin/orders-by-status/:status", backOffice, h.Order.ListByStatus)
		orders.GET("/:id", h.Order.Get)
	}

	bookmarks := api.Group("/Bookmark", requireAuth, customer)
	{
		bookmarks.GET("", h.Bookmark.List)
		bookmarks.POST("/toggle/:bookId", h.Bookmark.Toggle)
	}

	reviews := api.Group("/Review")
	{
		reviews.GET("/book/:bookId", h.Review.List)
		reviews.POST("/add/:bookId", requireAuth, customer, h.Review.Add)
	}

	announcements := api.Group("/Announcement")
	{
		announcements.GET("/active", h.Announcement.ListActive)

		announcements.GET("/admin/all", requireAuth, admin, h.Announcement.ListAll)
		announcements.POST("", requireAuth, admin, h.Announcement.Add)
		announcements.PUT("/:id", requireAuth, admin, h.Announcement.Update)
		announcements.DELETE("/:id", requireAuth, admin, h.Announcement.Delete)
	}

	return r
}
