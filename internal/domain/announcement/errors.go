package announcement

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

var (
	ErrAnnouncementNotFound = apperrors.New(apperrors.ErrCodeAnnouncementNotFound, "公告不存在")
	ErrEmptyDescription     = apperrors.New(apperrors.ErrCodeInvalidParams, "公告内容不能为空")
	ErrInvalidExpiry        = apperrors.New(apperrors.ErrCodeInvalidParams, "过期时间必须晚于发布时间")

	// ErrAlreadyPublished 条件更新未命中（已被其他实例发布）
	ErrAlreadyPublished = apperrors.New(apperrors.ErrCodeConflict, "公告已发布")
)
