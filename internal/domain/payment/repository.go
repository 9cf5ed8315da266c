package payment

import (
	"context"
)

// Repository 支付仓储接口
// 设计说明:
// 1. IntentID和OrderID都有唯一约束场景:
//    IntentID全局唯一;同一OrderID最多一条非终态记录
// 2. 支持事务操作(通过context传递事务)
type Repository interface {
	// Create 创建支付意向记录
	Create(ctx context.Context, payment *Payment) error

	// FindByID 根据ID查找
	FindByID(ctx context.Context, id uint) (*Payment, error)

	// FindByIntentID 根据网关意向ID查找
	// 不存在时返回ErrPaymentNotFound
	FindByIntentID(ctx context.Context, intentID string) (*Payment, error)

	// FindByOrderID 查找订单的全部支付记录(新的在前)
	FindByOrderID(ctx context.Context, orderID uint) ([]*Payment, error)

	// FindActiveByOrderID 查找订单的有效支付记录
	// (Pending或Completed,用于重复支付检查)
	FindActiveByOrderID(ctx context.Context, orderID uint) (*Payment, error)

	// Update 更新支付记录(主要是状态流转)
	Update(ctx context.Context, payment *Payment) error
}
