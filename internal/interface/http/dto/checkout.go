package dto

// StartCheckoutResponse 发起结账响应
// 买家需跳转ApprovalURL完成网关侧授权
type StartCheckoutResponse struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	Total       int64  `json:"total"`
	TotalPounds string `json:"total_pounds"`
	Currency    string `json:"currency"`
	IntentID    string `json:"intent_id"`
	ApprovalURL string `json:"approval_url"`
}

// CompleteCheckoutRequest 完成结账请求(买家授权回调)
type CompleteCheckoutRequest struct {
	IntentID string `json:"intent_id" binding:"required"`
}

// CompleteCheckoutResponse 完成结账响应
type CompleteCheckoutResponse struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	OrderStatus string `json:"order_status"`
}
