package dto

import (
	"time"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/shipment"
)

// AdjustStockRequest 人工库存调整请求
// change_type: StockIn/Adjustment/Return/Damaged
// (StockOut只能由订单捕获触发,不开放人工操作)
type AdjustStockRequest struct {
	ProductID  uint   `json:"product_id" binding:"required"`
	ChangeType string `json:"change_type" binding:"required,oneof=StockIn Adjustment Return Damaged"`
	Quantity   int    `json:"quantity" binding:"gte=0"`
	Reason     string `json:"reason" binding:"required,min=1,max=200"`
}

// AdjustStockResponse 调整结果
type AdjustStockResponse struct {
	ProductID     uint `json:"product_id"`
	PreviousStock int  `json:"previous_stock"`
	NewStock      int  `json:"new_stock"`
}

// LedgerEntryResponse 库存流水响应
type LedgerEntryResponse struct {
	ID            uint   `json:"id"`
	ProductID     uint   `json:"product_id"`
	ChangeType    string `json:"change_type"`
	Quantity      int    `json:"quantity"`
	SignedDelta   int    `json:"signed_delta"`
	PreviousStock int    `json:"previous_stock"`
	NewStock      int    `json:"new_stock"`
	Reason        string `json:"reason"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   uint   `json:"reference_id"`
	CreatedAt     string `json:"created_at"`
}

// NewLedgerEntryResponse 从领域实体构建流水响应
func NewLedgerEntryResponse(e *inventory.LedgerEntry) *LedgerEntryResponse {
	return &LedgerEntryResponse{
		ID:            e.ID,
		ProductID:     e.ProductID,
		ChangeType:    string(e.ChangeType),
		Quantity:      e.Quantity,
		SignedDelta:   e.SignedDelta(),
		PreviousStock: e.PreviousStock,
		NewStock:      e.NewStock,
		Reason:        e.Reason,
		ReferenceType: e.ReferenceType,
		ReferenceID:   e.ReferenceID,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

// ShipOrderRequest 发货请求
type ShipOrderRequest struct {
	Carrier    string `json:"carrier" binding:"required,min=1,max=50"`
	TrackingNo string `json:"tracking_no" binding:"required,min=1,max=100"`
}

// ShipmentResponse 物流单响应
type ShipmentResponse struct {
	ID          uint   `json:"id"`
	OrderID     uint   `json:"order_id"`
	Status      string `json:"status"`
	Carrier     string `json:"carrier,omitempty"`
	TrackingNo  string `json:"tracking_no,omitempty"`
	PackedAt    string `json:"packed_at,omitempty"`
	ShippedAt   string `json:"shipped_at,omitempty"`
	DeliveredAt string `json:"delivered_at,omitempty"`
}

// NewShipmentResponse 从领域实体构建物流单响应
func NewShipmentResponse(sh *shipment.Shipment) *ShipmentResponse {
	resp := &ShipmentResponse{
		ID:         sh.ID,
		OrderID:    sh.OrderID,
		Status:     sh.Status.String(),
		Carrier:    sh.Carrier,
		TrackingNo: sh.TrackingNo,
	}
	resp.PackedAt = sh.PackedAt.Format(time.RFC3339)
	if sh.ShippedAt != nil {
		resp.ShippedAt = sh.ShippedAt.Format(time.RFC3339)
	}
	if sh.DeliveredAt != nil {
		resp.DeliveredAt = sh.DeliveredAt.Format(time.RFC3339)
	}
	return resp
}
