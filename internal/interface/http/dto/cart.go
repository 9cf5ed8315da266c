package dto

// AddCartItemRequest 加购请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gte=1"`
}

// UpdateCartItemRequest 改量请求(0表示移除)
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"gte=0"`
}
