package payment

import (
	"context"
)

// IntentStatus 网关侧意向状态(网关返回的原始状态归一化)
type IntentStatus string

const (
	IntentStatusCreated   IntentStatus = "CREATED"   // 已创建,待买家授权
	IntentStatusApproved  IntentStatus = "APPROVED"  // 买家已授权,可捕获
	IntentStatusCompleted IntentStatus = "COMPLETED" // 已捕获
	IntentStatusVoided    IntentStatus = "VOIDED"    // 已作废
)

// CreateIntentRequest 创建支付意向请求
type CreateIntentRequest struct {
	OrderNo   string // 商户侧订单号(对账用)
	Amount    int64  // 金额(便士)
	Currency  string
	ReturnURL string // 买家授权成功后的跳转地址
	CancelURL string // 买家放弃支付后的跳转地址
}

// Intent 网关侧支付意向
// 已捕获的意向会带回捕获明细(对账时补齐本地记录用)
type Intent struct {
	IntentID      string // 网关意向ID
	Status        IntentStatus
	ApprovalURL   string // 买家授权跳转地址
	TransactionID string // 已捕获时的网关交易号
	PayerEmail    string
	PayerName     string
}

// CaptureResult 捕获结果
type CaptureResult struct {
	IntentID      string
	Status        IntentStatus
	TransactionID string // 网关交易号
	PayerEmail    string
	PayerName     string
}

// Gateway 支付网关端口(依赖倒置)
// 设计说明:
// 1. domain层定义接口,infrastructure层实现(PayPal REST客户端)
// 2. 错误契约:实现必须把超时映射为ErrGatewayTimeout,
//    把确定性拒绝映射为ErrGatewayRejected,
//    熔断打开映射为ErrGatewayUnavailable;
//    调用方据此区分"结果未知"和"确定失败"
type Gateway interface {
	// CreateIntent 在网关创建支付意向
	CreateIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error)

	// Capture 捕获支付(实际扣款动作)
	Capture(ctx context.Context, intentID string) (*CaptureResult, error)

	// GetIntent 查询意向当前状态(对账用)
	GetIntent(ctx context.Context, intentID string) (*Intent, error)
}
