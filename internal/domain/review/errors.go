package review

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

var (
	ErrInvalidRating   = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须在1-5之间")
	ErrContentTooLong  = apperrors.New(apperrors.ErrCodeInvalidParams, "评价内容不能超过2000字")
	ErrNotEligible     = apperrors.New(apperrors.ErrCodeForbidden, "购买并取货后才能评价")
	ErrAlreadyReviewed = apperrors.New(apperrors.ErrCodeDuplicateEntry, "已经评价过这本书")
)
