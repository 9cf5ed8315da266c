package product

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")

	// ErrSKUDuplicate SKU已存在
	ErrSKUDuplicate = apperrors.New(apperrors.ErrCodeSKUDuplicate, "SKU已存在")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")

	// ErrProductInactive 商品已下架
	ErrProductInactive = apperrors.New(apperrors.ErrCodeBusinessError, "商品已下架")
)
