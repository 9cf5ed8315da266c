package inventory

import "context"

// LedgerRepository 库存流水仓储接口
// 设计说明:
// 1. 只暴露Append和查询,不提供Update/Delete(流水只增不改)
// 2. Append必须在调用方的事务内执行:
//    与对应的商品库存写入同生共死,事务回滚则流水不落库
type LedgerRepository interface {
	// Append 追加一条流水
	Append(ctx context.Context, entry *LedgerEntry) error

	// ListByProduct 查询指定商品的流水(按时间倒序,分页)
	ListByProduct(ctx context.Context, productID uint, page, pageSize int) ([]*LedgerEntry, int64, error)

	// ListByReference 查询关联业务对象的流水(如一个订单的所有扣减记录)
	ListByReference(ctx context.Context, referenceType string, referenceID uint) ([]*LedgerEntry, error)

	// ListRecent 查询最近的流水(仓库看板用)
	ListRecent(ctx context.Context, limit int) ([]*LedgerEntry, error)
}
