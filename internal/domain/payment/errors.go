package payment

import (
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// 支付领域错误定义
// 网关错误(50100段)与业务错误(40xxx段)分开:
// 前者对调用方意味着"可重试或需对账",后者是确定性拒绝
var (
	// ErrPaymentNotFound 支付意向不存在
	ErrPaymentNotFound = apperrors.New(apperrors.ErrCodePaymentNotFound, "支付意向不存在")

	// ErrDuplicatePayment 订单已存在有效支付
	ErrDuplicatePayment = apperrors.New(apperrors.ErrCodeDuplicatePayment, "订单已存在有效支付")

	// ErrInvalidPaymentStatus 支付状态不允许此操作
	ErrInvalidPaymentStatus = apperrors.New(apperrors.ErrCodeInvalidParams, "支付状态不允许此操作")

	// ErrInvalidAmount 支付金额异常
	ErrInvalidAmount = apperrors.New(apperrors.ErrCodeInvalidParams, "支付金额必须大于0")

	// ErrGatewayTimeout 网关请求超时(结果未知,不可当作失败)
	ErrGatewayTimeout = apperrors.New(apperrors.ErrCodeGatewayTimeout, "支付网关请求超时")

	// ErrGatewayRejected 网关拒绝(确定性失败)
	ErrGatewayRejected = apperrors.New(apperrors.ErrCodeGatewayRejected, "支付网关拒绝了此次请求")

	// ErrGatewayUnavailable 网关不可用(熔断器打开)
	ErrGatewayUnavailable = apperrors.New(apperrors.ErrCodeGatewayUnavailable, "支付网关暂时不可用")

	// ErrReconciliationRequired 需要人工对账
	// 钱已在网关侧扣款,但本地落库失败,不能自动重试
	ErrReconciliationRequired = apperrors.New(apperrors.ErrCodeReconciliationNeeded, "支付已扣款但本地状态未更新,需要对账")
)
