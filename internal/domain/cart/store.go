package cart

import "context"

// Store 购物车存储接口
// 设计说明:
// 1. 固定的静态方法集,不做运行时能力探测
// 2. 购物车是暂存区:Get/Save/Clear即可,无事务要求
type Store interface {
	// Get 获取购物车(不存在时返回ErrCartNotFound)
	Get(ctx context.Context, owner Owner) (*Cart, error)

	// Save 保存购物车(不存在则创建)
	Save(ctx context.Context, c *Cart) error

	// Clear 清空购物车
	// 仅在下游订单支付成功后调用
	Clear(ctx context.Context, owner Owner) error
}
