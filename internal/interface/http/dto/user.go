package dto

// RegisterRequest 注册请求（顾客注册与管理员创建店员共用）
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required,min=8,max=20" example:"Passw0rd1"`
	Nickname string `json:"nickname" binding:"required,min=2,max=50" example:"读者"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required" example:"Passw0rd1"`
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LogoutRequest 登出请求，请求体可省略
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ListUsersQuery 用户列表查询参数
type ListUsersQuery struct {
	PageQuery
	Role string `form:"role" binding:"omitempty,role" example:"Staff"`
}
