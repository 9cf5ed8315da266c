package inventory

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/product"
)

// AdjustResult 一次库存调整的前后快照
type AdjustResult struct {
	ProductID     uint
	PreviousStock int
	NewStock      int
	LowStock      bool // 调整后库存已到达预警阈值
}

// Adjuster 库存调整领域服务
// 设计说明:
// 1. 这是唯一允许修改Product.Stock的路径,
//    每次调整都在同一事务内写入一条流水
// 2. 必须在调用方的事务内执行(事务通过context传递,
//    见mysql.TxManager):事务回滚时商品库存和流水一起回滚
// 3. 并发契约:通过LockByID(SELECT FOR UPDATE)串行化
//    同一商品的检查-扣减序列,两个并发订单不能同时
//    通过库存检查后超卖
type Adjuster interface {
	// Adjust 应用一次库存变更
	//
	// quantity语义随changeType变化:
	// - StockIn/Return: 增加quantity
	// - StockOut/Damaged: 减少quantity(不足时返回ErrInsufficientStock,
	//   调用方必须把它当作整个订单事务的硬中止,不允许部分扣减)
	// - Adjustment: 把库存设置为quantity(绝对值),流水记录|差值|
	Adjust(ctx context.Context, productID uint, changeType ChangeType, quantity int, reason, referenceType string, referenceID uint) (*AdjustResult, error)
}

type adjuster struct {
	products product.Repository
	ledger   LedgerRepository
}

// NewAdjuster 创建库存调整服务
func NewAdjuster(products product.Repository, ledger LedgerRepository) Adjuster {
	return &adjuster{
		products: products,
		ledger:   ledger,
	}
}

// Adjust 应用一次库存变更
func (a *adjuster) Adjust(ctx context.Context, productID uint, changeType ChangeType, quantity int, reason, referenceType string, referenceID uint) (*AdjustResult, error) {
	if !changeType.IsValid() {
		return nil, ErrInvalidChangeType
	}
	if quantity < 0 || (quantity == 0 && changeType != ChangeTypeAdjustment) {
		return nil, ErrInvalidLedgerQuantity
	}

	// 1. 悲观锁查询商品(FOR UPDATE,同一商品的调整串行化)
	p, err := a.products.LockByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	previous := p.Stock

	// 2. 按变更类型计算新库存
	switch {
	case changeType.IsIncrease():
		if err := p.IncrStock(quantity); err != nil {
			return nil, err
		}
	case changeType.IsDecrease():
		if err := p.DecrStock(quantity); err != nil {
			if err == product.ErrInsufficientStock {
				return nil, ErrInsufficientStock
			}
			return nil, err
		}
	default: // Adjustment:设置绝对值
		if err := p.SetStock(quantity); err != nil {
			return nil, err
		}
	}

	// 3. 持久化商品库存
	if err := a.products.Update(ctx, p); err != nil {
		return nil, err
	}

	// 4. 在同一事务内追加流水
	// Adjustment的流水数量为|新-旧|,方向由快照表达
	ledgerQty := quantity
	if changeType == ChangeTypeAdjustment {
		ledgerQty = abs(p.Stock - previous)
	}

	entry := &LedgerEntry{
		ProductID:     productID,
		ChangeType:    changeType,
		Quantity:      ledgerQty,
		PreviousStock: previous,
		NewStock:      p.Stock,
		Reason:        reason,
		ReferenceType: referenceType,
		ReferenceID:   referenceID,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}
	if err := a.ledger.Append(ctx, entry); err != nil {
		return nil, err
	}

	return &AdjustResult{
		ProductID:     productID,
		PreviousStock: previous,
		NewStock:      p.Stock,
		LowStock:      p.IsLowStock(),
	}, nil
}
