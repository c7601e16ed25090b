package bookmark

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

var (
	ErrBookmarkNotFound = apperrors.New(apperrors.ErrCodeNotFound, "收藏夹不存在")
	ErrItemNotFound     = apperrors.New(apperrors.ErrCodeNotFound, "未收藏这本书")
)
