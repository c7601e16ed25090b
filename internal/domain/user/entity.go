package user

import (
	"time"
)

// Role 用户角色，每个用户创建时确定一个角色，之后不再变更
type Role string

const (
	RoleAdmin   Role = "Admin"
	RoleStaff   Role = "Staff"
	RoleRegular Role = "Regular"
)

// IsValid 是否为已知角色
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleRegular:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// User 用户实体（聚合根）
// 密码只保存bcrypt哈希值，领域实体不依赖GORM tag
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Nickname  string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, nickname string, role Role) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Nickname:  nickname,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Roles 登录响应中的角色列表（当前每个用户只有一个角色）
func (u *User) Roles() []string {
	return []string{u.Role.String()}
}

// HasRole 是否拥有任一给定角色
func (u *User) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// UpdateNickname 更新昵称
func (u *User) UpdateNickname(nickname string) {
	u.Nickname = nickname
	u.UpdatedAt = time.Now()
}
