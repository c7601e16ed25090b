package user

import (
	"context"
)

// Repository 用户仓储接口（实现在infrastructure/persistence/mysql）
type Repository interface {
	// Create 创建用户，邮箱已存在时返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在时返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByEmail 不存在时返回ErrUserNotFound
	FindByEmail(ctx context.Context, email string) (*User, error)

	// List 分页查询，Role为空时不过滤
	List(ctx context.Context, params ListParams) ([]*User, int64, error)
}

// ListParams 用户列表查询参数
type ListParams struct {
	Role     Role
	Page     int
	PageSize int
}
