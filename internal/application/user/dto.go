package user

import (
	"time"

	"github.com/xiebiao/bookshop/internal/domain/user"
)

// UserInfo 用户信息（不含密码）
type UserInfo struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserInfo(u *user.User) UserInfo {
	return UserInfo{
		ID:        u.ID,
		Email:     u.Email,
		Nickname:  u.Nickname,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}
