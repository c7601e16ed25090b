package router

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appannouncement "github.com/xiebiao/bookshop/internal/application/announcement"
	"github.com/xiebiao/bookshop/internal/application/apptest"
	appbook "github.com/xiebiao/bookshop/internal/application/book"
	appbookmark "github.com/xiebiao/bookshop/internal/application/bookmark"
	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	apporder "github.com/xiebiao/bookshop/internal/application/order"
	appreview "github.com/xiebiao/bookshop/internal/application/review"
	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/book"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/infrastructure/config"
	"github.com/xiebiao/bookshop/internal/infrastructure/notification"
	"github.com/xiebiao/bookshop/internal/infrastructure/storage"
	"github.com/xiebiao/bookshop/internal/interface/http/handler"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

type server struct {
	engine *gin.Engine
	users  *apptest.UserRepo
	orders *apptest.OrderRepo
}

func newServer(t *testing.T) *server {
	t.Helper()
	metrics.InitMetrics()
	logger := zap.NewNop()

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.Server.UploadDir = filepath.Join(t.TempDir(), "UploadedFiles")
	cfg.Server.UploadPath = "/UploadedFiles"
	cfg.Server.MaxUploadMB = 1
	cfg.Metrics.Enabled = true
	cfg.Metrics.Path = "/metrics"

	tx := &apptest.TxManager{}
	userRepo := apptest.NewUserRepo()
	bookRepo := apptest.NewBookRepo()
	cartRepo := apptest.NewCartRepo()
	orderRepo := apptest.NewOrderRepo()
	bookmarkRepo := apptest.NewBookmarkRepo()
	reviewRepo := apptest.NewReviewRepo()
	announcementRepo := apptest.NewAnnouncementRepo()
	sessions := apptest.NewSessions()
	cache := apptest.NewCache()
	events := &apptest.Events{}

	files, err := storage.NewLocalStorage(cfg.Server.UploadDir, cfg.Server.UploadPath, logger)
	require.NoError(t, err)

	hub := notification.NewHub(nil, logger)
	jm := jwt.NewManager("router-test", time.Hour, 24*time.Hour)
	auth := middleware.NewAuthMiddleware(jm, sessions)

	userService := user.NewServiceWithCost(userRepo, bcrypt.MinCost)
	bookService := book.NewService(bookRepo)
	invalidator := appbook.NewInvalidator(cache, logger)
	publisher := appannouncement.NewPublisher(announcementRepo, hub, logger)
	register := appuser.NewRegisterUseCase(userService)

	h := &Handlers{
		User: handler.NewUserHandler(
			register,
			appuser.NewLoginUseCase(userService, jm, sessions, time.Hour, logger),
			appuser.NewLogoutUseCase(jm, sessions),
			appuser.NewRefreshUseCase(userRepo, jm, sessions, logger),
			appuser.NewQueryUseCase(userRepo),
		),
		Book: handler.NewBookHandler(
			appbook.NewAddBookUseCase(bookService, files, invalidator),
			appbook.NewUpdateBookUseCase(bookService, bookRepo, files, invalidator),
			appbook.NewSetDiscountUseCase(bookService, invalidator),
			appbook.NewDeleteBookUseCase(bookService, invalidator),
			appbook.NewListBooksUseCase(bookRepo),
			appbook.NewGetBookUseCase(bookRepo, reviewRepo, cache, time.Minute, logger),
			appbook.NewGetFiltersUseCase(bookRepo),
			appbook.NewGetFeaturedUseCase(bookRepo, cache, time.Minute, logger),
			appbookmark.NewStatusUseCase(bookmarkRepo),
			cfg.Server.MaxUploadMB,
		),
		Cart: handler.NewCartHandler(
			appcart.NewAddToCartUseCase(tx, cartRepo, bookRepo),
			appcart.NewManageCartUseCase(tx, cartRepo, bookRepo),
		),
		Order: handler.NewOrderHandler(
			apporder.NewCheckoutUseCase(tx, cartRepo, bookRepo, orderRepo, events, invalidator, false, logger),
			apporder.NewConfirmOrderUseCase(orderRepo, events, logger),
			apporder.NewCompleteOrderUseCase(tx, orderRepo, bookRepo, order.NewPlainClaimCodeVerifier(), hub, events, logger),
			apporder.NewCancelOrderUseCase(tx, orderRepo, bookRepo, events, invalidator, false, logger),
			apporder.NewQueryUseCase(orderRepo),
		),
		Bookmark: handler.NewBookmarkHandler(
			appbookmark.NewToggleUseCase(tx, bookmarkRepo, bookRepo),
			appbookmark.NewListUseCase(bookmarkRepo, bookRepo),
		),
		Review: handler.NewReviewHandler(
			appreview.NewAddReviewUseCase(tx, reviewRepo, orderRepo, bookRepo, invalidator),
			appreview.NewListUseCase(reviewRepo, bookRepo),
		),
		Announcement: handler.NewAnnouncementHandler(
			appannouncement.NewAddAnnouncementUseCase(announcementRepo, publisher, logger),
			appannouncement.NewUpdateAnnouncementUseCase(announcementRepo, publisher, logger),
			appannouncement.NewDeleteAnnouncementUseCase(announcementRepo),
			appannouncement.NewQueryUseCase(announcementRepo),
		),
		Notification: handler.NewNotificationHandler(hub, auth, logger),
	}

	ctx := context.Background()
	_, err = userService.Register(ctx, "admin@test.com", "Admin12345", "管理员", user.RoleAdmin)
	require.NoError(t, err)
	_, err = register.CreateStaff(ctx, appuser.RegisterRequest{Email: "clerk@test.com", Password: "Clerk12345", Nickname: "店员"})
	require.NoError(t, err)

	return &server{engine: New(cfg, logger, h, auth), users: userRepo, orders: orderRepo}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (int, string) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w.Code, w.Body.String()
}

func (s *server) login(t *testing.T, email, password string) string {
	t.Helper()
	access, _ := s.loginPair(t, email, password)
	return access
}

func (s *server) loginPair(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/User/login", "", map[string]string{"email": email, "password": password})
	require.Equal(t, http.StatusOK, status, body)
	return gjson.Get(body, "data.accessToken").String(), gjson.Get(body, "data.refreshToken").String()
}

func (s *server) customer(t *testing.T, email string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/User/register", "", map[string]string{
		"email": email, "password": "Passw0rd1", "nickname": "读者",
	})
	require.Equal(t, http.StatusCreated, status, body)
	return s.login(t, email, "Passw0rd1")
}

func (s *server) addBook(t *testing.T, token string, stock string) uint {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := map[string]string{
		"isbn": "9787115428028", "title": "Go语言实战", "author": "威廉·肯尼迪",
		"publisher": "人民邮电出版社", "genre": "计算机", "language": "中文", "format": "平装",
		"price": "5900", "stock": stock, "publicationDate": "2020-01-15",
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("image", "cover.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/Book/addBook", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.True(t, strings.HasPrefix(gjson.Get(w.Body.String(), "data.coverUrl").String(), "/UploadedFiles/"))
	return uint(gjson.Get(w.Body.String(), "data.id").Uint())
}

func TestPingAndMetrics(t *testing.T) {
	s := newServer(t)

	status, body := s.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", gjson.Get(body, "data.message").String())

	status, body = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "http_requests_total")
}

func TestUser_RegisterLoginLogout(t *testing.T) {
	s := newServer(t)

	status, body := s.do(t, http.MethodPost, "/api/User/register", "", map[string]string{
		"email": "not-an-email", "password": "Passw0rd1", "nickname": "读者",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, int64(40011), gjson.Get(body, "code").Int())

	token := s.customer(t, "reader@test.com")

	status, body = s.do(t, http.MethodGet, "/api/User/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Regular", gjson.Get(body, "data.role").String())

	status, _ = s.do(t, http.MethodPost, "/api/User/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodGet, "/api/User/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUser_RefreshTokenCannotAuthenticate(t *testing.T) {
	s := newServer(t)
	s.customer(t, "reader@test.com")
	access, refresh := s.loginPair(t, "reader@test.com", "Passw0rd1")
	require.NotEmpty(t, refresh)

	status, body := s.do(t, http.MethodGet, "/api/User/me", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, int64(40101), gjson.Get(body, "code").Int())

	// 登出后Access Token失效，Refresh Token同样不能替代
	status, _ = s.do(t, http.MethodPost, "/api/User/logout", access, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/User/me", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestUser_RefreshRotatesTokens(t *testing.T) {
	s := newServer(t)
	s.customer(t, "reader@test.com")
	_, refresh := s.loginPair(t, "reader@test.com", "Passw0rd1")

	status, _ := s.do(t, http.MethodPost, "/api/User/refresh", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(t, http.MethodPost, "/api/User/refresh", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, status, body)
	access := gjson.Get(body, "data.accessToken").String()
	rotated := gjson.Get(body, "data.refreshToken").String()
	assert.NotEqual(t, refresh, rotated)

	status, body = s.do(t, http.MethodGet, "/api/User/me", access, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "reader@test.com", gjson.Get(body, "data.email").String())

	status, _ = s.do(t, http.MethodPost, "/api/User/refresh", "", map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, status, "已换发的Refresh Token不能再用")

	status, _ = s.do(t, http.MethodPost, "/api/User/refresh", "", map[string]string{"refreshToken": access})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/User/logout", access, map[string]string{"refreshToken": rotated})
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodPost, "/api/User/refresh", "", map[string]string{"refreshToken": rotated})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	reader := s.customer(t, "reader@test.com")

	status, _ := s.do(t, http.MethodGet, "/api/User/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodGet, "/api/User/admin/users", reader, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/api/Order/complete-order/1", reader, map[string]string{"claimCode": "x"})
	assert.Equal(t, http.StatusForbidden, status)

	admin := s.login(t, "admin@test.com", "Admin12345")
	status, body := s.do(t, http.MethodGet, "/api/User/admin/users?role=Staff", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "data.totalCount").Int())

	status, _ = s.do(t, http.MethodGet, "/api/User/admin/users?role=Root", admin, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// 管理员不是顾客，不能使用购物车
	status, _ = s.do(t, http.MethodGet, "/api/Cart", admin, nil)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestBook_CatalogEndpoints(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@test.com", "Admin12345")
	id := s.addBook(t, admin, "10")

	status, _ := s.do(t, http.MethodGet, "/api/Book/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(t, http.MethodGet, "/api/Book?search=Go&pageSize=5", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "data.totalCount").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "data.totalPages").Int())

	today := time.Now().Format("2006-01-02")
	status, body = s.do(t, http.MethodPut, "/api/Book/1/discount", admin, map[string]interface{}{
		"discount": 0.1, "startDate": today, "endDate": time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusOK, status, body)
	assert.True(t, gjson.Get(body, "data.isOnSale").Bool())
	assert.Equal(t, int64(5310), gjson.Get(body, "data.finalPrice").Int())

	status, _ = s.do(t, http.MethodPut, "/api/Book/1/discount", admin, map[string]interface{}{"discount": 1.5})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/api/Book/filters", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "威廉·肯尼迪", gjson.Get(body, "data.authors.0").String())

	status, _ = s.do(t, http.MethodGet, "/api/Book/featured", "", nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(t, http.MethodDelete, "/api/Book/1", admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodGet, "/api/Book/1", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, uint(1), id)
}

func TestOrder_PurchaseFlow(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@test.com", "Admin12345")
	clerk := s.login(t, "clerk@test.com", "Clerk12345")
	reader := s.customer(t, "reader@test.com")
	other := s.customer(t, "other@test.com")
	s.addBook(t, admin, "3")

	status, _ := s.do(t, http.MethodPost, "/api/Order/checkout", reader, nil)
	assert.Equal(t, http.StatusBadRequest, status, "空购物车不能下单")

	status, _ = s.do(t, http.MethodPost, "/api/Cart/add-to-cart/1", reader, nil)
	require.Equal(t, http.StatusOK, status)
	status, body := s.do(t, http.MethodPost, "/api/Cart/add-to-cart/1", reader, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "data.totalQuantity").Int())

	status, body = s.do(t, http.MethodPut, "/api/Cart/update/1", reader, map[string]int{"quantity": 2})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(11800), gjson.Get(body, "data.totalPrice").Int())

	status, body = s.do(t, http.MethodPost, "/api/Order/checkout", reader, nil)
	require.Equal(t, http.StatusCreated, status, body)
	code := gjson.Get(body, "data.claimCode").String()
	require.NotEmpty(t, code)
	assert.Equal(t, "Pending", gjson.Get(body, "data.status").String())

	status, _ = s.do(t, http.MethodPost, "/api/Order/confirm-order/1", other, nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodGet, "/api/Order/1", other, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPost, "/api/Order/complete-order/1", clerk, map[string]string{"claimCode": code})
	assert.Equal(t, http.StatusBadRequest, status, "Pending订单不能直接完成")

	status, body = s.do(t, http.MethodPost, "/api/Order/confirm-order/1", reader, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ongoing", gjson.Get(body, "data.status").String())

	status, _ = s.do(t, http.MethodPost, "/api/Order/complete-order/1", clerk, map[string]string{"claimCode": "WRONG00000"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodPost, "/api/Order/complete-order/1", clerk, map[string]string{"claimCode": code})
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "Completed", gjson.Get(body, "data.status").String())

	status, _ = s.do(t, http.MethodPost, "/api/Order/cancel-order/1", reader, nil)
	assert.Equal(t, http.StatusBadRequest, status, "已完成订单不能取消")

	status, body = s.do(t, http.MethodGet, "/api/Order/admin/orders-by-status/Completed", clerk, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "data.totalCount").Int())
	assert.False(t, gjson.Get(body, "data.items.0.claimCode").Exists())

	status, _ = s.do(t, http.MethodGet, "/api/Order/admin/orders-by-status/Lost", clerk, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	// 已购买的顾客可以评价一次
	status, _ = s.do(t, http.MethodPost, "/api/Review/add/1", other, map[string]interface{}{"content": "好", "rating": 5})
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodPost, "/api/Review/add/1", reader, map[string]interface{}{"content": "好", "rating": 6})
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = s.do(t, http.MethodPost, "/api/Review/add/1", reader, map[string]interface{}{"content": "好书", "rating": 5})
	require.Equal(t, http.StatusCreated, status)
	status, _ = s.do(t, http.MethodPost, "/api/Review/add/1", reader, map[string]interface{}{"content": "再评", "rating": 4})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(t, http.MethodGet, "/api/Review/book/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "data.totalCount").Int())
}

func TestBookmark_Toggle(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@test.com", "Admin12345")
	reader := s.customer(t, "reader@test.com")
	s.addBook(t, admin, "1")

	status, body := s.do(t, http.MethodPost, "/api/Bookmark/toggle/1", reader, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, gjson.Get(body, "data.isBookmarked").Bool())

	status, body = s.do(t, http.MethodGet, "/api/Bookmark", reader, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "data.#").Int())

	status, body = s.do(t, http.MethodPost, "/api/Bookmark/toggle/1", reader, nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, gjson.Get(body, "data.isBookmarked").Bool())

	status, _ = s.do(t, http.MethodPost, "/api/Bookmark/toggle/99", reader, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBook_DetailShowsBookmarkStateWhenLoggedIn(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@test.com", "Admin12345")
	reader := s.customer(t, "reader@test.com")
	s.addBook(t, admin, "1")

	status, body := s.do(t, http.MethodGet, "/api/Book/1", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, gjson.Get(body, "data.isBookmarked").Exists())

	status, body = s.do(t, http.MethodGet, "/api/Book/1", reader, nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, gjson.Get(body, "data.isBookmarked").Exists())
	assert.False(t, gjson.Get(body, "data.isBookmarked").Bool())

	status, _ = s.do(t, http.MethodPost, "/api/Bookmark/toggle/1", reader, nil)
	require.Equal(t, http.StatusOK, status)
	status, body = s.do(t, http.MethodGet, "/api/Book/1", reader, nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, gjson.Get(body, "data.isBookmarked").Bool())

	// 无效Token按匿名访问
	status, body = s.do(t, http.MethodGet, "/api/Book/1", "not-a-token", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, gjson.Get(body, "data.isBookmarked").Exists())

	status, body = s.do(t, http.MethodGet, "/api/Book/1", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, gjson.Get(body, "data.isBookmarked").Exists())
}

func TestAnnouncement_Endpoints(t *testing.T) {
	s := newServer(t)
	admin := s.login(t, "admin@test.com", "Admin12345")
	now := time.Now()

	status, body := s.do(t, http.MethodPost, "/api/Announcement", admin, map[string]string{
		"description": "全场九折",
		"postedAt":    now.Add(-time.Second).Format(time.RFC3339),
		"expiryDate":  now.Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, status, body)
	assert.True(t, gjson.Get(body, "data.isPublished").Bool())

	status, _ = s.do(t, http.MethodPost, "/api/Announcement", admin, map[string]string{
		"description": "过期早于发布",
		"postedAt":    now.Format(time.RFC3339),
		"expiryDate":  now.Add(-time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(t, http.MethodGet, "/api/Announcement/active", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "全场九折", gjson.Get(body, "data.0.description").String())

	status, body = s.do(t, http.MethodGet, "/api/Announcement/admin/all", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, int64(1), gjson.Get(body, "data.totalCount").Int())

	status, _ = s.do(t, http.MethodDelete, "/api/Announcement/1", admin, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(t, http.MethodDelete, "/api/Announcement/1", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNotificationHub_RejectsBadToken(t *testing.T) {
	s := newServer(t)

	status, _ := s.do(t, http.MethodGet, "/hubs/notifications?access_token=garbage", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}
