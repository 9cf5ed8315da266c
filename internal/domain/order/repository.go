package order

import (
	"context"
)

// Repository 订单仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建订单(包含订单明细)
	// 订单和明细必须在同一事务中创建;
	// 订单号唯一冲突时返回ErrOrderNoGenerate供调用方重试
	Create(ctx context.Context, order *Order) error

	// FindByID 根据ID查找订单(包含订单明细)
	FindByID(ctx context.Context, id uint) (*Order, error)

	// FindByOrderNo 根据订单号查找订单
	FindByOrderNo(ctx context.Context, orderNo string) (*Order, error)

	// Update 更新订单(主要用于状态更新)
	Update(ctx context.Context, order *Order) error

	// ListByUserID 查询用户的订单列表(分页)
	ListByUserID(ctx context.Context, userID uint, page, pageSize int) ([]*Order, int64, error)

	// ListByStatus 查询指定状态的订单(仓库/配送看板用)
	ListByStatus(ctx context.Context, status OrderStatus, page, pageSize int) ([]*Order, int64, error)
}
