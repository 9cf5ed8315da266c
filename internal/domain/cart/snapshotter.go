package cart

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/product"
)

// Snapshotter 购物车快照领域服务
// 跨聚合逻辑:读取购物车+商品当前价,冻结成快照
type Snapshotter interface {
	// Snapshot 生成购物车快照
	// 业务规则:
	// - 购物车为空(或不存在)时返回ErrEmptyCart
	// - 单价取快照时刻的商品当前价(加购时不锁价)
	// - 已下架商品导致快照失败(不允许结算下架商品)
	// - 不修改购物车本身
	Snapshot(ctx context.Context, owner Owner) (*Snapshot, error)
}

type snapshotter struct {
	carts    Store
	products product.Repository
}

// NewSnapshotter 创建快照服务
func NewSnapshotter(carts Store, products product.Repository) Snapshotter {
	return &snapshotter{
		carts:    carts,
		products: products,
	}
}

// Snapshot 生成购物车快照
func (s *snapshotter) Snapshot(ctx context.Context, owner Owner) (*Snapshot, error) {
	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		if err == ErrCartNotFound {
			return nil, ErrEmptyCart
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	lines := make([]SnapshotLine, 0, len(c.Items))
	for _, item := range c.Items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, product.ErrProductInactive
		}

		lines = append(lines, SnapshotLine{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
		})
	}

	return &Snapshot{
		Owner: owner,
		Lines: lines,
	}, nil
}
