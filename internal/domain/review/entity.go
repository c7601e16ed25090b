package review

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinRating        = 1
	MaxRating        = 5
	MaxContentLength = 2000
)

// Review 书评，每个用户对每本书最多一条
type Review struct {
	ID        uint
	UserID    uint
	BookID    uint
	Nickname  string // 查询时关联填充
	Content   string
	Rating    int
	CreatedAt time.Time
}

// NewReview 创建书评，评分必须在[1,5]之间
func NewReview(userID, bookID uint, content string, rating int) (*Review, error) {
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}
	content = strings.TrimSpace(content)
	if utf8.RuneCountInString(content) > MaxContentLength {
		return nil, ErrContentTooLong
	}
	return &Review{
		UserID:    userID,
		BookID:    bookID,
		Content:   content,
		Rating:    rating,
		CreatedAt: time.Now(),
	}, nil
}

// Summary 评分汇总
type Summary struct {
	BookID  uint
	Average float64 // 保留两位小数，无评价时为0
	Count   int64
}
