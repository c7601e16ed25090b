package user

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 用户领域错误（通用的认证错误复用pkg/errors中的预定义错误）
var (
	ErrUserNotFound   = apperrors.ErrUserNotFound
	ErrEmailDuplicate = apperrors.ErrEmailDuplicate
	ErrWeakPassword   = apperrors.ErrWeakPassword

	// ErrInvalidEmail 邮箱格式不正确
	ErrInvalidEmail = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")

	// ErrInvalidNickname 昵称长度不合法
	ErrInvalidNickname = apperrors.New(apperrors.ErrCodeInvalidParams, "昵称长度应为2-50个字符")

	// ErrInvalidRole 未知角色
	ErrInvalidRole = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的用户角色")
)
