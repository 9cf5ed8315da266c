package payment

import "time"

// PaymentStatus 支付意向状态
type PaymentStatus int

const (
	PaymentStatusPending   PaymentStatus = 1 // 待捕获(意向已在网关创建)
	PaymentStatusCompleted PaymentStatus = 2 // 已完成(捕获成功,终态)
	PaymentStatusFailed    PaymentStatus = 3 // 失败(网关拒绝,终态)
	PaymentStatusCancelled PaymentStatus = 4 // 已作废(订单取消/超时,终态)
	PaymentStatusRefunded  PaymentStatus = 5 // 已退款(终态)
)

func (s PaymentStatus) String() string {
	switch s {
	case PaymentStatusPending:
		return "待捕获"
	case PaymentStatusCompleted:
		return "已完成"
	case PaymentStatusFailed:
		return "失败"
	case PaymentStatusCancelled:
		return "已作废"
	case PaymentStatusRefunded:
		return "已退款"
	default:
		return "未知状态"
	}
}

// IsTerminal 是否终态
// Refunded例外:从Completed转入,其余终态不再流转
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentStatusPending
}

// Payment 支付意向聚合根
// 设计说明:
// 1. 与Order解耦的独立聚合根,通过OrderID关联
// 2. IntentID是网关侧的意向标识(如PayPal的order id),
//    全局唯一,是捕获操作的入参
// 3. 同一订单最多一条非终态(Pending)支付意向;
//    已有Completed支付的订单再次创建意向返回ErrDuplicatePayment
// 4. TransactionID是捕获成功后网关返回的交易号
type Payment struct {
	ID            uint
	IntentID      string        // 网关支付意向ID(全局唯一)
	OrderID       uint          // 关联订单ID
	Amount        int64         // 支付金额(便士)
	Currency      string        // 货币代码
	Status        PaymentStatus // 支付状态
	TransactionID string        // 网关交易号(捕获成功后填充)
	PaymentMethod string        // 支付方式(paypal)
	PayerEmail    string        // 付款人邮箱(捕获成功后填充)
	PayerName     string        // 付款人姓名
	ApprovalURL   string        // 买家授权跳转地址
	ProcessedAt   *time.Time    // 终态到达时间
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MethodPayPal 支付方式标识
const MethodPayPal = "paypal"

// NewPayment 创建支付意向(工厂方法)
func NewPayment(intentID string, orderID uint, amount int64, currency, approvalURL string) (*Payment, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	now := time.Now()
	return &Payment{
		IntentID:      intentID,
		OrderID:       orderID,
		Amount:        amount,
		Currency:      currency,
		Status:        PaymentStatusPending,
		PaymentMethod: MethodPayPal,
		ApprovalURL:   approvalURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// CanTransitionTo 检查状态转换是否合法
func (p *Payment) CanTransitionTo(target PaymentStatus) bool {
	transitions := map[PaymentStatus][]PaymentStatus{
		PaymentStatusPending:   {PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusCancelled},
		PaymentStatusCompleted: {PaymentStatusRefunded},
		PaymentStatusFailed:    {},
		PaymentStatusCancelled: {},
		PaymentStatusRefunded:  {},
	}

	allowed, exists := transitions[p.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// TransitionTo 状态转换
func (p *Payment) TransitionTo(target PaymentStatus) error {
	if !p.CanTransitionTo(target) {
		return ErrInvalidPaymentStatus
	}
	now := time.Now()
	p.Status = target
	p.ProcessedAt = &now
	p.UpdatedAt = now
	return nil
}

// Complete 标记捕获成功
// 幂等:已是Completed时no-op,容忍重复捕获回调
func (p *Payment) Complete(transactionID, payerEmail, payerName string) error {
	if p.Status == PaymentStatusCompleted {
		return nil
	}
	if err := p.TransitionTo(PaymentStatusCompleted); err != nil {
		return err
	}
	p.TransactionID = transactionID
	p.PayerEmail = payerEmail
	p.PayerName = payerName
	return nil
}

// Fail 标记捕获失败(网关拒绝)
func (p *Payment) Fail() error {
	return p.TransitionTo(PaymentStatusFailed)
}

// Cancel 作废支付意向(订单取消时)
func (p *Payment) Cancel() error {
	return p.TransitionTo(PaymentStatusCancelled)
}

// Refund 标记已退款
func (p *Payment) Refund() error {
	return p.TransitionTo(PaymentStatusRefunded)
}

// CanRefund 是否可退款(只有已完成的支付可退)
func (p *Payment) CanRefund() bool {
	return p.Status == PaymentStatusCompleted
}
