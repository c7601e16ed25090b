package dto

// AnnouncementRequest 新增或修改公告
type AnnouncementRequest struct {
	Description string `json:"description" binding:"required,max=1000" example:"国庆期间全场九折"`
	PostedAt    string `json:"postedAt" binding:"required" example:"2024-10-01T00:00:00+08:00"`
	ExpiryDate  string `json:"expiryDate" binding:"required" example:"2024-10-07T23:59:59+08:00"`
}
