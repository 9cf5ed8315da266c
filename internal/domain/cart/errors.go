package cart

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 购物车领域错误定义
var (
	// ErrEmptyCart 购物车为空(无法结算)
	ErrEmptyCart = apperrors.New(apperrors.ErrCodeEmptyCart, "购物车为空")

	// ErrCartNotFound 购物车不存在
	ErrCartNotFound = apperrors.New(apperrors.ErrCodeCartNotFound, "购物车不存在")

	// ErrInvalidQuantity 数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "商品数量必须大于0")

	// ErrItemNotInCart 商品不在购物车中
	ErrItemNotInCart = apperrors.New(apperrors.ErrCodeInvalidParams, "商品不在购物车中")
)
