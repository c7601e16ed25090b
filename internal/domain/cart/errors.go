package cart

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

var (
	ErrCartNotFound    = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车不存在")
	ErrItemNotFound    = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车中没有这本书")
	ErrItemExists      = apperrors.New(apperrors.ErrCodeDuplicateEntry, "图书已在购物车中")
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须在1到库存之间")
)
