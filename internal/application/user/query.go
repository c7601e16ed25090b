package user

import (
	"context"

	"github.com/samber/lo"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// QueryUseCase 用户查询
type QueryUseCase struct {
	userRepo user.Repository
}

// NewQueryUseCase 创建用户查询用例
func NewQueryUseCase(userRepo user.Repository) *QueryUseCase {
	return &QueryUseCase{userRepo: userRepo}
}

// Me 当前登录用户
func (uc *QueryUseCase) Me(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	info := toUserInfo(u)
	return &info, nil
}

// ListUsersRequest 用户列表查询
type ListUsersRequest struct {
	Role     user.Role // 为空时不过滤
	Page     int
	PageSize int
}

// ListUsersResponse 用户列表
type ListUsersResponse struct {
	Items    []UserInfo
	Total    int64
	Page     int
	PageSize int
}

// List 分页查询用户
func (uc *QueryUseCase) List(ctx context.Context, req ListUsersRequest) (*ListUsersResponse, error) {
	if req.Role != "" && !req.Role.IsValid() {
		return nil, user.ErrInvalidRole
	}
	req.Page, req.PageSize = normalizePage(req.Page, req.PageSize)

	users, total, err := uc.userRepo.List(ctx, user.ListParams{
		Role:     req.Role,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, err
	}

	return &ListUsersResponse{
		Items:    lo.Map(users, func(u *user.User, _ int) UserInfo { return toUserInfo(u) }),
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

// ListStaff 店员列表
func (uc *QueryUseCase) ListStaff(ctx context.Context, page, pageSize int) (*ListUsersResponse, error) {
	return uc.List(ctx, ListUsersRequest{Role: user.RoleStaff, Page: page, PageSize: pageSize})
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
