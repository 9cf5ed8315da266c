package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/order"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// orderRepository 订单仓储实现(MySQL)
// 设计说明:
// 1. Order和OrderItem是聚合关系,必须一起保存
// 2. 查询时使用Preload预加载明细,避免N+1问题
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
// GORM会自动保存关联的Items(通过foreignKey);
// 订单号唯一冲突转换为ErrOrderNoGenerate供调用方重试
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return order.ErrOrderNoGenerate
		}
		return apperrors.Wrap(err, "创建订单失败")
	}

	o.ID = model.ID
	for i := range o.Items {
		o.Items[i].ID = model.Items[i].ID
		o.Items[i].OrderID = model.ID
	}

	return nil
}

// FindByID 根据ID查找订单(含明细)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).Preload("Items").First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// FindByOrderNo 根据订单号查找订单
func (r *orderRepository) FindByOrderNo(ctx context.Context, orderNo string) (*order.Order, error) {
	var model OrderModel
	err := getDB(ctx, r.db).Preload("Items").Where("order_no = ?", orderNo).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrOrderNotFound
		}
		return nil, apperrors.Wrap(err, "查询订单失败")
	}

	return toOrderEntity(&model), nil
}

// Update 更新订单
// 只更新状态相关字段,明细在Paid后不可变
func (r *orderRepository) Update(ctx context.Context, o *order.Order) error {
	result := getDB(ctx, r.db).Model(&OrderModel{}).Where("id = ?", o.ID).Updates(map[string]interface{}{
		"status":        int(o.Status),
		"cancel_reason": o.CancelReason,
		"cancelled_at":  o.CancelledAt,
		"updated_at":    o.UpdatedAt,
	})

	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新订单失败")
	}

	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}

	return nil
}

// ListByUserID 查询用户的订单列表
func (r *orderRepository) ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	query := getDB(ctx, r.db).Model(&OrderModel{}).Where("user_id = ?", userID)
	return r.list(query, page, pageSize)
}

// ListByStatus 查询指定状态的订单(仓库/配送看板用)
func (r *orderRepository) ListByStatus(ctx context.Context, status order.OrderStatus, page, pageSize int) ([]*order.Order, int64, error) {
	query := getDB(ctx, r.db).Model(&OrderModel{}).Where("status = ?", int(status))
	return r.list(query, page, pageSize)
}

func (r *orderRepository) list(query *gorm.DB, page, pageSize int) ([]*order.Order, int64, error) {
	var models []OrderModel
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Items").
		Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrderEntity(&models[i])
	}

	return orders, total, nil
}

// toOrderModel 领域实体 → GORM模型
func toOrderModel(o *order.Order) *OrderModel {
	items := make([]OrderItemModel, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemModel{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	return &OrderModel{
		ID:           o.ID,
		OrderNo:      o.OrderNo,
		UserID:       o.UserID,
		GuestToken:   o.GuestToken,
		Total:        o.Total,
		Currency:     o.Currency,
		Status:       int(o.Status),
		CancelReason: o.CancelReason,
		CancelledAt:  o.CancelledAt,
		Items:        items,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(model *OrderModel) *order.Order {
	items := make([]order.OrderItem, len(model.Items))
	for i, item := range model.Items {
		items[i] = order.OrderItem{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	return &order.Order{
		ID:           model.ID,
		OrderNo:      model.OrderNo,
		UserID:       model.UserID,
		GuestToken:   model.GuestToken,
		Total:        model.Total,
		Currency:     model.Currency,
		Status:       order.OrderStatus(model.Status),
		CancelReason: model.CancelReason,
		CancelledAt:  model.CancelledAt,
		Items:        items,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}
