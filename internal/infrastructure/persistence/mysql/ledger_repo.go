package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// ledgerRepository 库存台账仓储实现(MySQL)
// 台账只有Append和查询,没有Update/Delete(审计追溯)
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建库存台账仓储
func NewLedgerRepository(db *gorm.DB) inventory.LedgerRepository {
	return &ledgerRepository{db: db}
}

// Append 追加台账记录
// 必须与库存变更在同一事务内调用
func (r *ledgerRepository) Append(ctx context.Context, entry *inventory.LedgerEntry) error {
	model := &LedgerEntryModel{
		ProductID:     entry.ProductID,
		ChangeType:    string(entry.ChangeType),
		Quantity:      entry.Quantity,
		PreviousStock: entry.PreviousStock,
		NewStock:      entry.NewStock,
		Reason:        entry.Reason,
		ReferenceType: entry.ReferenceType,
		ReferenceID:   entry.ReferenceID,
	}

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		return apperrors.Wrap(err, "写入库存台账失败")
	}

	entry.ID = model.ID
	entry.CreatedAt = model.CreatedAt

	return nil
}

// ListByProduct 查询商品的台账记录(新的在前)
func (r *ledgerRepository) ListByProduct(ctx context.Context, productID uint, page, pageSize int) ([]*inventory.LedgerEntry, int64, error) {
	query := getDB(ctx, r.db).Model(&LedgerEntryModel{}).Where("product_id = ?", productID)
	return r.list(query, page, pageSize)
}

// ListByReference 查询关联业务对象的台账记录
// 用于核对"一次扣减恰好一条流水"
func (r *ledgerRepository) ListByReference(ctx context.Context, referenceType string, referenceID uint) ([]*inventory.LedgerEntry, error) {
	var models []LedgerEntryModel
	err := getDB(ctx, r.db).
		Where("reference_type = ? AND reference_id = ?", referenceType, referenceID).
		Order("created_at ASC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询库存台账失败")
	}

	entries := make([]*inventory.LedgerEntry, len(models))
	for i := range models {
		entries[i] = toLedgerEntity(&models[i])
	}

	return entries, nil
}

// ListRecent 查询最近的台账记录(仓库看板用)
func (r *ledgerRepository) ListRecent(ctx context.Context, limit int) ([]*inventory.LedgerEntry, error) {
	var models []LedgerEntryModel
	err := getDB(ctx, r.db).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询库存台账失败")
	}

	entries := make([]*inventory.LedgerEntry, len(models))
	for i := range models {
		entries[i] = toLedgerEntity(&models[i])
	}

	return entries, nil
}

func (r *ledgerRepository) list(query *gorm.DB, page, pageSize int) ([]*inventory.LedgerEntry, int64, error) {
	var models []LedgerEntryModel
	var total int64

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询台账总数失败")
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").
		Limit(pageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询库存台账失败")
	}

	entries := make([]*inventory.LedgerEntry, len(models))
	for i := range models {
		entries[i] = toLedgerEntity(&models[i])
	}

	return entries, total, nil
}

// toLedgerEntity GORM模型 → 领域实体
func toLedgerEntity(model *LedgerEntryModel) *inventory.LedgerEntry {
	return &inventory.LedgerEntry{
		ID:            model.ID,
		ProductID:     model.ProductID,
		ChangeType:    inventory.ChangeType(model.ChangeType),
		Quantity:      model.Quantity,
		PreviousStock: model.PreviousStock,
		NewStock:      model.NewStock,
		Reason:        model.Reason,
		ReferenceType: model.ReferenceType,
		ReferenceID:   model.ReferenceID,
		CreatedAt:     model.CreatedAt,
	}
}
