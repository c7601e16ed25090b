package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/bookshop/internal/application/user"
	"github.com/xiebiao/bookshop/internal/domain/user"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// UserHandler 用户HTTP处理器
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
	loginUseCase    *appuser.LoginUseCase
	logoutUseCase   *appuser.LogoutUseCase
	refreshUseCase  *appuser.RefreshUseCase
	queryUseCase    *appuser.QueryUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	refreshUseCase *appuser.RefreshUseCase,
	queryUseCase *appuser.QueryUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
		refreshUseCase:  refreshUseCase,
		queryUseCase:    queryUseCase,
	}
}

// Register 顾客注册
// @Summary      用户注册
// @Description  创建Regular角色账号
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=appuser.UserInfo}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱已存在"
// @Router       /api/User/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	info, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}

// Login 登录
// @Summary      用户登录
// @Description  验证邮箱密码，返回带角色的JWT
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=appuser.LoginResponse}
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/User/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Refresh 刷新Token
// @Summary      刷新Token
// @Description  用Refresh Token换发新Token对，旧Refresh Token随即失效
// @Tags         用户
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=appuser.LoginResponse}
// @Failure      401 {object} response.Response "Token无效或已过期"
// @Router       /api/User/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.refreshUseCase.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 登出
// @Summary      用户登出
// @Description  删除会话，当前Access Token失效；请求体带refreshToken时一并失效
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.LogoutRequest false "Refresh Token"
// @Success      200 {object} response.Response
// @Router       /api/User/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
	}

	tokenID, expiresAt := middleware.GetToken(c)
	err := h.logoutUseCase.Execute(c.Request.Context(), appuser.LogoutRequest{
		UserID:       middleware.GetUserID(c),
		TokenID:      tokenID,
		ExpiresAt:    expiresAt,
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Me 当前用户
// @Summary      当前用户信息
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=appuser.UserInfo}
// @Router       /api/User/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	info, err := h.queryUseCase.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, info)
}

// ListUsers 用户列表（管理员）
// @Summary      用户列表
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        role query string false "角色" Enums(Admin, Staff, Regular)
// @Param        pageNumber query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/User/admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q dto.ListUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.queryUseCase.List(c.Request.Context(), appuser.ListUsersRequest{
		Role:     user.Role(q.Role),
		Page:     q.PageNumber,
		PageSize: q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListStaff 店员列表（管理员）
// @Summary      店员列表
// @Tags         用户
// @Produce      json
// @Security     BearerAuth
// @Param        pageNumber query int false "页码"
// @Param        pageSize query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/User/admin/staff [get]
func (h *UserHandler) ListStaff(c *gin.Context) {
	var q dto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.queryUseCase.ListStaff(c.Request.Context(), q.PageNumber, q.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, result.Total, result.Page, result.PageSize)
}

// CreateStaff 创建店员账号（管理员）
// @Summary      创建店员
// @Tags         用户
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.RegisterRequest true "店员信息"
// @Success      201 {object} response.Response{data=appuser.UserInfo}
// @Failure      409 {object} response.Response "邮箱已存在"
// @Router       /api/User/admin/staff [post]
func (h *UserHandler) CreateStaff(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	info, err := h.registerUseCase.CreateStaff(c.Request.Context(), appuser.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, info)
}
