package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// RegisterUseCase 注册用例
// 顾客自助注册得到Regular角色，管理员创建店员得到Staff角色
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Email    string
	Password string
	Nickname string
}

// Execute 顾客注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	return uc.register(ctx, req, user.RoleRegular)
}

// CreateStaff 管理员创建店员账号
func (uc *RegisterUseCase) CreateStaff(ctx context.Context, req RegisterRequest) (*UserInfo, error) {
	return uc.register(ctx, req, user.RoleStaff)
}

func (uc *RegisterUseCase) register(ctx context.Context, req RegisterRequest, role user.Role) (*UserInfo, error) {
	u, err := uc.userService.Register(ctx, req.Email, req.Password, req.Nickname, role)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}

// SeedAdminUseCase 启动时创建管理员账号
type SeedAdminUseCase struct {
	userService user.Service
	userRepo    user.Repository
	logger      *zap.Logger
}

// NewSeedAdminUseCase 创建管理员初始化用例
func NewSeedAdminUseCase(userService user.Service, userRepo user.Repository, logger *zap.Logger) *SeedAdminUseCase {
	return &SeedAdminUseCase{userService: userService, userRepo: userRepo, logger: logger}
}

// Execute email为空时跳过，账号已存在时不做任何修改
func (uc *SeedAdminUseCase) Execute(ctx context.Context, email, password, nickname string) error {
	if email == "" {
		return nil
	}

	_, err := uc.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return err
	}

	admin, err := uc.userService.Register(ctx, email, password, nickname, user.RoleAdmin)
	if errors.Is(err, user.ErrEmailDuplicate) {
		return nil
	}
	if err != nil {
		return err
	}
	uc.logger.Info("admin account created", zap.Uint("user_id", admin.ID), zap.String("email", admin.Email))
	return nil
}
