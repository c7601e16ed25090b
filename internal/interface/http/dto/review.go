package dto

// ReviewRequest 发表书评，评分范围由领域校验
type ReviewRequest struct {
	Content string `json:"content" binding:"max=2000" example:"值得一读"`
	Rating  int    `json:"rating" example:"5"`
}
