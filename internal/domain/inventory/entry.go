package inventory

import "time"

// ChangeType 库存变更类型
type ChangeType string

const (
	ChangeTypeStockIn    ChangeType = "StockIn"    // 入库(采购到货)
	ChangeTypeStockOut   ChangeType = "StockOut"   // 出库(订单扣减)
	ChangeTypeAdjustment ChangeType = "Adjustment" // 盘点调整(设置绝对值)
	ChangeTypeReturn     ChangeType = "Return"     // 退货回补(订单取消/退款)
	ChangeTypeDamaged    ChangeType = "Damaged"    // 损耗报废
)

// IsIncrease 变更是否为增加方向
func (t ChangeType) IsIncrease() bool {
	return t == ChangeTypeStockIn || t == ChangeTypeReturn
}

// IsDecrease 变更是否为减少方向
func (t ChangeType) IsDecrease() bool {
	return t == ChangeTypeStockOut || t == ChangeTypeDamaged
}

// IsValid 是否为已定义的变更类型
func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeTypeStockIn, ChangeTypeStockOut, ChangeTypeAdjustment,
		ChangeTypeReturn, ChangeTypeDamaged:
		return true
	}
	return false
}

// LedgerEntry 库存流水(领域实体)
// 设计说明:
// 1. 只增不改(Append-Only):审计需求,所有库存变更必须可追溯
// 2. 记录变更前后快照(PreviousStock/NewStock),便于对账
// 3. Quantity恒为变更幅度的绝对值,方向由ChangeType表达;
//    Adjustment的幅度为|NewStock-PreviousStock|
// 4. ReferenceType+ReferenceID关联触发变更的业务对象
//    (如"Order"+订单ID、"Manual"+操作人ID)
type LedgerEntry struct {
	ID            uint
	ProductID     uint       // 商品ID
	ChangeType    ChangeType // 变更类型
	Quantity      int        // 变更数量(绝对值)
	PreviousStock int        // 变更前库存
	NewStock      int        // 变更后库存
	Reason        string     // 变更原因
	ReferenceType string     // 关联业务类型(Order/Manual/...)
	ReferenceID   uint       // 关联业务ID
	CreatedAt     time.Time
}

// SignedDelta 返回带符号的库存变化量(NewStock - PreviousStock)
func (e *LedgerEntry) SignedDelta() int {
	return e.NewStock - e.PreviousStock
}

// Validate 校验流水内部一致性
// 业务规则:PreviousStock/NewStock必须与ChangeType的方向一致
func (e *LedgerEntry) Validate() error {
	if e.ProductID == 0 {
		return ErrInvalidProductID
	}
	if !e.ChangeType.IsValid() {
		return ErrInvalidChangeType
	}
	if e.Quantity <= 0 && e.ChangeType != ChangeTypeAdjustment {
		return ErrInvalidLedgerQuantity
	}
	if e.PreviousStock < 0 || e.NewStock < 0 {
		return ErrNegativeStock
	}

	delta := e.SignedDelta()
	switch {
	case e.ChangeType.IsIncrease():
		if delta != e.Quantity {
			return ErrInconsistentLedger
		}
	case e.ChangeType.IsDecrease():
		if delta != -e.Quantity {
			return ErrInconsistentLedger
		}
	default: // Adjustment
		if e.Quantity != abs(delta) {
			return ErrInconsistentLedger
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
