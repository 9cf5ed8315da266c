package shipment

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 物流领域错误定义
var (
	// ErrShipmentNotFound 物流单不存在
	ErrShipmentNotFound = apperrors.New(apperrors.ErrCodeShipmentNotFound, "物流单不存在")

	// ErrInvalidShipmentStatus 物流状态不允许此操作
	ErrInvalidShipmentStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "物流状态不允许此操作")

	// ErrMissingTrackingInfo 缺少承运商或运单号
	ErrMissingTrackingInfo = apperrors.New(apperrors.ErrCodeInvalidParams, "发货必须提供承运商和运单号")
)
