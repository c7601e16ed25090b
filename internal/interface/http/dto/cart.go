package dto

// UpdateQuantityRequest 修改购物车数量
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1" example:"2"`
}
