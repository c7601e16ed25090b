// Package dto HTTP请求参数，带binding校验tag
package dto

import (
	"fmt"
	"time"
)

// PageQuery 分页参数，越界值由应用层归一化
type PageQuery struct {
	PageNumber int `form:"pageNumber" binding:"omitempty,min=1" example:"1"`
	PageSize   int `form:"pageSize" binding:"omitempty,min=1,max=100" example:"10"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

// ParseDate 支持RFC3339、不带时区的日期时间和纯日期
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("日期格式不正确: %q", s)
}

// ParseOptionalDate 空串返回nil
func ParseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
