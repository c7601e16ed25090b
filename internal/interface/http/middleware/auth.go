package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
	"github.com/xiebiao/bookshop/pkg/response"
)

// Context中的键
const (
	ctxUserID       = "user_id"
	ctxEmail        = "email"
	ctxRole         = "role"
	ctxTokenID      = "token_id"
	ctxTokenExpires = "token_expires"
)

// AuthMiddleware JWT认证中间件
// 角色只取自签名校验通过的Claims，登出的Token按jti进黑名单
type AuthMiddleware struct {
	jwtManager   *jwt.Manager
	sessionStore port.SessionStore
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, sessionStore port.SessionStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
	}
}

// Authenticate 校验Token并检查黑名单（WebSocket握手也复用）
func (m *AuthMiddleware) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	claims, err := m.jwtManager.ParseAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := m.sessionStore.IsInBlacklist(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.Wrap(err, "验证Token失败")
	}
	if revoked {
		return nil, apperrors.ErrTokenExpired
	}
	return claims, nil
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := m.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth 有合法Token时注入用户信息，否则按匿名继续
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := BearerToken(c); ok {
			if claims, err := m.Authenticate(c.Request.Context(), token); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// RequireRole 要求任一角色，必须放在RequireAuth之后
func RequireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Error(c, apperrors.ErrForbidden)
		c.Abort()
	}
}

// BearerToken 提取Authorization: Bearer <token>
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxRole, user.Role(claims.Role))
	c.Set(ctxTokenID, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(ctxTokenExpires, claims.ExpiresAt.Time)
	}
}

// GetUserID 当前登录用户ID，未登录返回0
func GetUserID(c *gin.Context) uint {
	return c.GetUint(ctxUserID)
}

// GetRole 当前登录用户角色
func GetRole(c *gin.Context) user.Role {
	if v, ok := c.Get(ctxRole); ok {
		if r, ok := v.(user.Role); ok {
			return r
		}
	}
	return ""
}

// IsPrivileged 管理员或店员
func IsPrivileged(c *gin.Context) bool {
	role := GetRole(c)
	return role == user.RoleAdmin || role == user.RoleStaff
}

// GetToken 当前Access Token的jti和过期时间（登出时加入黑名单）
func GetToken(c *gin.Context) (string, time.Time) {
	return c.GetString(ctxTokenID), c.GetTime(ctxTokenExpires)
}
