package dto

import (
	"time"

	"github.com/xiebiao/bookshop/internal/domain/order"
)

// OrderItemResponse 订单明细行
type OrderItemResponse struct {
	ProductID uint   `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
}

// OrderResponse 订单响应
type OrderResponse struct {
	ID           uint                `json:"id"`
	OrderNo      string              `json:"order_no"`
	Total        int64               `json:"total"`
	TotalPounds  string              `json:"total_pounds"`
	Currency     string              `json:"currency"`
	Status       string              `json:"status"`
	Items        []OrderItemResponse `json:"items"`
	CancelReason string              `json:"cancel_reason,omitempty"`
	CreatedAt    string              `json:"created_at"`
}

// NewOrderResponse 从领域实体构建订单响应
func NewOrderResponse(o *order.Order) *OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: int64(item.Quantity) * item.UnitPrice,
		}
	}
	return &OrderResponse{
		ID:           o.ID,
		OrderNo:      o.OrderNo,
		Total:        o.Total,
		TotalPounds:  FormatPounds(o.Total),
		Currency:     o.Currency,
		Status:       o.Status.String(),
		Items:        items,
		CancelReason: o.CancelReason,
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
	}
}

// CancelOrderRequest 取消订单请求
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=200"`
}
