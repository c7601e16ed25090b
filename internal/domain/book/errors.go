package book

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 图书领域错误定义
var (
	ErrBookNotFound          = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")
	ErrISBNDuplicate         = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")
	ErrInvalidISBN           = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")
	ErrInvalidTitle          = apperrors.New(apperrors.ErrCodeInvalidParams, "书名和作者不能为空")
	ErrInvalidPrice          = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须在0.01-9999.99元之间")
	ErrInvalidStock          = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")
	ErrInvalidQuantity       = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrInvalidDiscount       = apperrors.New(apperrors.ErrCodeInvalidParams, "折扣必须在[0,1)之间")
	ErrInvalidDiscountWindow = apperrors.New(apperrors.ErrCodeInvalidParams, "折扣开始时间不能晚于结束时间")
	ErrInsufficientStock     = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
	ErrOutOfStock            = apperrors.New(apperrors.ErrCodeInsufficientStock, "图书已售罄")
)
