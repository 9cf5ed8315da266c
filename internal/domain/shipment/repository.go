package shipment

import (
	"context"
)

// Repository 物流仓储接口
type Repository interface {
	// Create 创建物流单
	Create(ctx context.Context, shipment *Shipment) error

	// FindByID 根据ID查找
	FindByID(ctx context.Context, id uint) (*Shipment, error)

	// FindByOrderID 根据订单ID查找
	// 不存在时返回ErrShipmentNotFound
	FindByOrderID(ctx context.Context, orderID uint) (*Shipment, error)

	// Update 更新物流单
	Update(ctx context.Context, shipment *Shipment) error

	// ListByStatus 查询指定状态的物流单(配送看板用)
	ListByStatus(ctx context.Context, status ShipmentStatus, page, pageSize int) ([]*Shipment, int64, error)
}
