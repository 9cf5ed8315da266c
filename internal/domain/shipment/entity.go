package shipment

import "time"

// ShipmentStatus 物流单状态
type ShipmentStatus int

const (
	ShipmentStatusPacked    ShipmentStatus = 1 // 已打包
	ShipmentStatusShipped   ShipmentStatus = 2 // 已发货
	ShipmentStatusDelivered ShipmentStatus = 3 // 已送达(终态)
)

func (s ShipmentStatus) String() string {
	switch s {
	case ShipmentStatusPacked:
		return "已打包"
	case ShipmentStatusShipped:
		return "已发货"
	case ShipmentStatusDelivered:
		return "已送达"
	default:
		return "未知状态"
	}
}

// Shipment 物流单实体
// 设计说明:
// 1. 与Order一对一,打包时创建
// 2. 物流状态只前进不回退,各节点时间戳单独记录
// 3. 承运商和运单号在发货时才确定
type Shipment struct {
	ID          uint
	OrderID     uint // 关联订单ID(唯一)
	Status      ShipmentStatus
	Carrier     string     // 承运商(royal-mail/dpd/evri)
	TrackingNo  string     // 承运商运单号
	PackedAt    time.Time  // 打包时间
	ShippedAt   *time.Time // 发货时间
	DeliveredAt *time.Time // 送达时间
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewShipment 创建物流单(打包完成时)
func NewShipment(orderID uint) *Shipment {
	now := time.Now()
	return &Shipment{
		OrderID:   orderID,
		Status:    ShipmentStatusPacked,
		PackedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Ship 发货
// 业务规则:必须提供承运商和运单号
func (s *Shipment) Ship(carrier, trackingNo string) error {
	if s.Status != ShipmentStatusPacked {
		return ErrInvalidShipmentStatus
	}
	if carrier == "" || trackingNo == "" {
		return ErrMissingTrackingInfo
	}
	now := time.Now()
	s.Status = ShipmentStatusShipped
	s.Carrier = carrier
	s.TrackingNo = trackingNo
	s.ShippedAt = &now
	s.UpdatedAt = now
	return nil
}

// Deliver 确认送达
func (s *Shipment) Deliver() error {
	if s.Status != ShipmentStatusShipped {
		return ErrInvalidShipmentStatus
	}
	now := time.Now()
	s.Status = ShipmentStatusDelivered
	s.DeliveredAt = &now
	s.UpdatedAt = now
	return nil
}
