package inventory

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrInvalidProductID 商品ID不合法
	ErrInvalidProductID = apperrors.New(apperrors.ErrCodeInvalidParams, "商品ID不合法")

	// ErrInvalidChangeType 未定义的变更类型
	ErrInvalidChangeType = apperrors.New(apperrors.ErrCodeInvalidParams, "库存变更类型不合法")

	// ErrInvalidLedgerQuantity 变更数量不合法
	ErrInvalidLedgerQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "库存变更数量必须大于0")

	// ErrNegativeStock 库存不能为负数
	ErrNegativeStock = apperrors.New(apperrors.ErrCodeBusinessError, "库存不能为负数")

	// ErrInconsistentLedger 流水前后快照与变更类型不一致
	ErrInconsistentLedger = apperrors.New(apperrors.ErrCodeInternal, "库存流水数据不一致")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
)
