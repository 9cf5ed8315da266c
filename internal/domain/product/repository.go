package product

import (
	"context"
)

// Repository 商品仓储接口(依赖倒置原则)
// 设计说明:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 便于Mock测试,不依赖具体数据库实现
type Repository interface {
	// Create 创建商品
	Create(ctx context.Context, product *Product) error

	// FindByID 根据ID查找商品
	FindByID(ctx context.Context, id uint) (*Product, error)

	// FindBySKU 根据SKU查找商品
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// Update 更新商品信息
	Update(ctx context.Context, product *Product) error

	// List 分页查询商品列表
	List(ctx context.Context, params ListParams) ([]*Product, int64, error)

	// ListLowStock 查询低于告警阈值的商品(仓库看板用)
	ListLowStock(ctx context.Context) ([]*Product, error)

	// LockByID 悲观锁查询商品(用于库存调整时锁定行)
	// 使用SELECT FOR UPDATE锁定行,防止并发超卖:
	// 同一商品的检查-扣减序列必须串行化
	LockByID(ctx context.Context, id uint) (*Product, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page       int    // 页码(从1开始)
	PageSize   int    // 每页数量
	Keyword    string // 搜索关键词(搜索标题、作者)
	OnlyActive bool   // 只查询上架商品
}
