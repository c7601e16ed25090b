package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/infrastructure/notification"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// NotificationHandler WebSocket推送入口
type NotificationHandler struct {
	hub    *notification.Hub
	auth   *middleware.AuthMiddleware
	logger *zap.Logger
}

// NewNotificationHandler 创建推送处理器
func NewNotificationHandler(hub *notification.Hub, auth *middleware.AuthMiddleware, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{hub: hub, auth: auth, logger: logger}
}

// Connect 建立WebSocket连接
// 浏览器无法为WebSocket设置请求头，Token可放在access_token查询参数中；
// 未携带Token的连接只接收广播，携带了但无效时拒绝握手
// @Summary      实时推送
// @Tags         推送
// @Param        access_token query string false "Access Token"
// @Success      101
// @Failure      401 {object} response.Response "Token无效"
// @Router       /hubs/notifications [get]
func (h *NotificationHandler) Connect(c *gin.Context) {
	token := c.Query("access_token")
	if token == "" {
		token, _ = middleware.BearerToken(c)
	}

	var userID uint
	if token != "" {
		claims, err := h.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}
		userID = claims.UserID
	}

	if err := h.hub.Serve(c.Writer, c.Request, userID); err != nil {
		// 握手失败时Upgrader已写入错误响应
		h.logger.Debug("websocket handshake failed", zap.Error(err))
	}
}
