package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/shipment"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// shipmentRepository 物流仓储实现(MySQL)
type shipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建物流仓储
func NewShipmentRepository(db *gorm.DB) shipment.Repository {
	return &shipmentRepository{db: db}
}

// Create 创建物流单
func (r *shipmentRepository) Create(ctx context.Context, s *shipment.Shipment) error {
	model := toShipmentModel(s)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "创建物流单失败")
	}

	s.ID = model.ID
	s.CreatedAt = model.CreatedAt
	s.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找物流单
func (r *shipmentRepository) FindByID(ctx context.Context, id uint) (*shipment.Shipment, error) {
	var model ShipmentModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipment.ErrShipmentNotFound
		}
		return nil, apperrors.Wrap(err, "查询物流单失败")
	}

	return toShipmentEntity(&model), nil
}

// FindByOrderID 根据订单ID查找物流单
func (r *shipmentRepository) FindByOrderID(ctx context.Context, orderID uint) (*shipment.Shipment, error) {
	var model ShipmentModel
	err := getDB(ctx, r.db).Where("order_id = ?", orderID).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipment.ErrShipmentNotFound
		}
		return nil, apperrors.Wrap(err, "查询物流单失败")
	}

	return toShipmentEntity(&model), nil
}

// Update 更新物流单
func (r *shipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	result := getDB(ctx, r.db).Model(&ShipmentModel{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"status":       int(s.Status),
		"carrier":      s.Carrier,
		"tracking_no":  s.TrackingNo,
		"shipped_at":   s.ShippedAt,
		"delivered_at": s.DeliveredAt,
		"updated_at":   s.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新物流单失败")
	}

	if result.RowsAffected == 0 {
		return shipment.ErrShipmentNotFound
	}

	return nil
}

// ListByStatus 查询指定状态的物流单
func (r *shipmentRepository) ListByStatus(ctx context.Context, status shipment.ShipmentStatus, page, pageSize int) ([]*shipment.Shipment, int64, error) {
	var models []ShipmentModel
	var total int64

	query := getDB(ctx, r.db).Model(&ShipmentModel{}).Where("status = ?", int(status))

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询物流单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询物流单列表失败")
	}

	shipments := make([]*shipment.Shipment, len(models))
	for i := range models {
		shipments[i] = toShipmentEntity(&models[i])
	}

	return shipments, total, nil
}

// toShipmentModel 领域实体 → GORM模型
func toShipmentModel(s *shipment.Shipment) *ShipmentModel {
	return &ShipmentModel{
		ID:          s.ID,
		OrderID:     s.OrderID,
		Status:      int(s.Status),
		Carrier:     s.Carrier,
		TrackingNo:  s.TrackingNo,
		PackedAt:    s.PackedAt,
		ShippedAt:   s.ShippedAt,
		DeliveredAt: s.DeliveredAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// toShipmentEntity GORM模型 → 领域实体
func toShipmentEntity(model *ShipmentModel) *shipment.Shipment {
	return &shipment.Shipment{
		ID:          model.ID,
		OrderID:     model.OrderID,
		Status:      shipment.ShipmentStatus(model.Status),
		Carrier:     model.Carrier,
		TrackingNo:  model.TrackingNo,
		PackedAt:    model.PackedAt,
		ShippedAt:   model.ShippedAt,
		DeliveredAt: model.DeliveredAt,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}
