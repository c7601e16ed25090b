package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 1. 验证邮箱密码
// 2. 生成带角色的JWT Token对
// 3. 保存会话到Redis
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore port.SessionStore
	sessionTTL   time.Duration
	logger       *zap.Logger
}

// NewLoginUseCase 创建登录用例，会话有效期与Refresh Token一致
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore port.SessionStore,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		sessionTTL:   sessionTTL,
		logger:       logger,
	}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	Roles        []string `json:"roles"`
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int64    `json:"expiresIn"` // Access Token有效期（秒）
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	tokens, err := uc.jwtManager.GenerateToken(jwt.Identity{
		UserID:   u.ID,
		Email:    u.Email,
		Nickname: u.Nickname,
		Role:     u.Role.String(),
	})
	if err != nil {
		return nil, err
	}

	session := map[string]interface{}{
		"user_id":  u.ID,
		"email":    u.Email,
		"role":     u.Role.String(),
		"login_at": time.Now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := uc.sessionStore.SaveSession(ctx, u.ID, session, uc.sessionTTL); err != nil {
		// 会话保存失败不影响登录
		uc.logger.Warn("save session failed", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	return &LoginResponse{
		User:         toUserInfo(u),
		Roles:        u.Roles(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}

// LogoutUseCase 用户登出用例
type LogoutUseCase struct {
	jwtManager   *jwt.Manager
	sessionStore port.SessionStore
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(jwtManager *jwt.Manager, sessionStore port.SessionStore) *LogoutUseCase {
	return &LogoutUseCase{jwtManager: jwtManager, sessionStore: sessionStore}
}

// LogoutRequest 登出请求
type LogoutRequest struct {
	UserID       uint
	TokenID      string    // 当前Access Token的jti
	ExpiresAt    time.Time // 当前Access Token的过期时间
	RefreshToken string    // 可选，一并作废
}

// Execute 删除会话，Access Token和Refresh Token的jti加入黑名单直到各自过期
func (uc *LogoutUseCase) Execute(ctx context.Context, req LogoutRequest) error {
	if err := uc.sessionStore.DeleteSession(ctx, req.UserID); err != nil {
		return err
	}

	if err := uc.revoke(ctx, req.TokenID, req.ExpiresAt); err != nil {
		return err
	}

	if req.RefreshToken == "" {
		return nil
	}
	// 过期或不属于当前用户的Refresh Token无需处理
	claims, err := uc.jwtManager.ParseRefreshToken(req.RefreshToken)
	if err != nil || claims.UserID != req.UserID {
		return nil
	}
	return uc.revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (uc *LogoutUseCase) revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	return uc.sessionStore.AddToBlacklist(ctx, tokenID, ttl)
}
