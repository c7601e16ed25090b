package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，前三位与HTTP状态码对应（40403 → 404）
// 2. Message是用户友好的提示信息
// 3. Err是内部错误，仅记录到日志，不返回给客户端（防止泄露敏感信息）
type AppError struct {
	Code    int    `json:"code"`    // 业务错误码
	Message string `json:"message"` // 用户友好的错误提示
	Err     error  `json:"-"`       // 内部错误（不序列化）
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus 由业务错误码推导HTTP状态码
// 不在4xx/5xx范围内的错误码一律视为500
func (e *AppError) HTTPStatus() int {
	status := e.Code / 100
	if status < http.StatusBadRequest || status > 599 {
		return http.StatusInternalServerError
	}
	return status
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithMessage 复用错误码，替换提示信息（如"图书《xxx》库存不足"）
func WithMessage(base *AppError, message string) *AppError {
	return &AppError{
		Code:    base.Code,
		Message: message,
		Err:     base,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：前三位为HTTP状态码，后两位为业务细分
// - 400xx: 参数或业务规则校验失败
// - 401xx: 未认证
// - 403xx: 无权限（角色不符、非资源所有者）
// - 404xx: 资源不存在
// - 409xx: 冲突（重复记录、并发修改）
// - 500xx: 服务端错误

const (
	// 系统级错误码
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeMQError       = 50003 // 消息队列错误

	// 认证错误
	ErrCodeUnauthorized    = 40100 // 未登录
	ErrCodeInvalidToken    = 40101 // Token无效
	ErrCodeTokenExpired    = 40102 // Token过期
	ErrCodeInvalidPassword = 40103 // 密码错误

	// 授权错误
	ErrCodeForbidden = 40300 // 无权限
	ErrCodeNotOwner  = 40301 // 非资源所有者

	// 资源错误
	ErrCodeNotFound             = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound         = 40401 // 用户不存在
	ErrCodeBookNotFound         = 40402 // 图书不存在
	ErrCodeOrderNotFound        = 40403 // 订单不存在
	ErrCodeCartNotFound         = 40404 // 购物车不存在
	ErrCodeAnnouncementNotFound = 40405 // 公告不存在

	// 业务规则错误
	ErrCodeBusinessError      = 40000 // 业务错误(通用)
	ErrCodeInsufficientStock  = 40001 // 库存不足
	ErrCodeInvalidOrderStatus = 40002 // 订单状态非法
	ErrCodeWeakPassword       = 40005 // 密码强度不足
	ErrCodeEmptyCart          = 40006 // 购物车为空
	ErrCodeInvalidClaimCode   = 40007 // 取货码错误

	// 参数错误
	ErrCodeInvalidParams = 40010 // 参数错误
	ErrCodeBindError     = 40011 // 参数绑定失败

	// 冲突错误
	ErrCodeDuplicateEntry = 40900 // 重复记录(通用)
	ErrCodeEmailDuplicate = 40901 // 邮箱已存在
	ErrCodeISBNDuplicate  = 40902 // ISBN已存在
	ErrCodeConflict       = 40904 // 并发修改冲突
)

// =========================================
// 预定义错误（避免每次都New）
// =========================================

var (
	// 系统错误
	ErrInternal      = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError    = New(ErrCodeRedisError, "缓存服务错误")

	// 认证授权
	ErrUnauthorized    = New(ErrCodeUnauthorized, "请先登录")
	ErrInvalidToken    = New(ErrCodeInvalidToken, "无效的Token")
	ErrTokenExpired    = New(ErrCodeTokenExpired, "Token已过期")
	ErrInvalidPassword = New(ErrCodeInvalidPassword, "邮箱或密码错误")
	ErrForbidden       = New(ErrCodeForbidden, "无权限访问")

	// 资源不存在
	ErrUserNotFound = New(ErrCodeUserNotFound, "用户不存在")

	// 业务规则
	ErrEmailDuplicate = New(ErrCodeEmailDuplicate, "邮箱已被注册")
	ErrWeakPassword   = New(ErrCodeWeakPassword, "密码强度不足（需8-20位，包含字母和数字）")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}
