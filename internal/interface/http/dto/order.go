package dto

// CompleteOrderRequest 店员核销取货码
type CompleteOrderRequest struct {
	ClaimCode string `json:"claimCode" binding:"required" example:"AB12CD34EF"`
}

// OrderStatusURI 按状态查询的路径参数（状态名不区分大小写）
type OrderStatusURI struct {
	Status string `uri:"status" binding:"required,orderstatus" example:"Ongoing"`
}
