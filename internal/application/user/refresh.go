package user

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/application/port"
	"github.com/xiebiao/bookshop/internal/domain/user"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
	"github.com/xiebiao/bookshop/pkg/jwt"
)

// RefreshUseCase 刷新Token用例
// Refresh Token只能使用一次，换发后旧jti进入黑名单
type RefreshUseCase struct {
	userRepo     user.Repository
	jwtManager   *jwt.Manager
	sessionStore port.SessionStore
	logger       *zap.Logger
}

// NewRefreshUseCase 创建刷新Token用例
func NewRefreshUseCase(
	userRepo user.Repository,
	jwtManager *jwt.Manager,
	sessionStore port.SessionStore,
	logger *zap.Logger,
) *RefreshUseCase {
	return &RefreshUseCase{
		userRepo:     userRepo,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		logger:       logger,
	}
}

// Execute 校验Refresh Token并按用户当前角色签发新Token对
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	blocked, err := uc.sessionStore.IsInBlacklist(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, apperrors.ErrTokenExpired
	}

	u, err := uc.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}

	if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
		if err := uc.sessionStore.AddToBlacklist(ctx, claims.ID, ttl); err != nil {
			return nil, err
		}
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

	uc.logger.Info("token refreshed", zap.Uint("user_id", u.ID))
	return &LoginResponse{
		User:         toUserInfo(u),
		Roles:        u.Roles(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresIn:    tokens.ExpiresIn,
	}, nil
}
