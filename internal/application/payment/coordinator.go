package payment

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/payment"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// EventPublisher 领域事件发布接口(pkg/mq.Publisher满足此接口)
// 事件发布都是best-effort:发布失败记日志,不影响主流程
type EventPublisher interface {
	Publish(routingKey string, message interface{}) error
}

// TxManager 事务边界接口(mysql.TxManager满足此接口)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// 事件路由键
const (
	EventOrderPaid              = "order.paid"
	EventStockLow               = "stock.low"
	EventReconciliationRequired = "payment.reconciliation_required"
)

// Coordinator 支付协调器
// 设计说明:
// 1. 系统中唯一与支付网关交互的组件
// 2. 核心职责:意向创建、捕获(含库存扣减)、对账
// 3. 捕获成功后的本地落库(支付+订单+逐行扣库存+流水)
//    必须在一个事务内:任何一行库存不足则整体回滚,
//    网关侧已扣款的事实通过对账事件暴露给运营
type Coordinator struct {
	orders   order.Repository
	payments payment.Repository
	adjuster inventory.Adjuster
	gateway  payment.Gateway
	tx       TxManager
	events   EventPublisher
}

// NewCoordinator 创建支付协调器
func NewCoordinator(
	orders order.Repository,
	payments payment.Repository,
	adjuster inventory.Adjuster,
	gateway payment.Gateway,
	tx TxManager,
	events EventPublisher,
) *Coordinator {
	return &Coordinator{
		orders:   orders,
		payments: payments,
		adjuster: adjuster,
		gateway:  gateway,
		tx:       tx,
		events:   events,
	}
}

// CreateIntentResult 创建意向结果
type CreateIntentResult struct {
	IntentID    string
	ApprovalURL string
	Degraded    bool // 网关已创建意向但本地落库失败,待对账
}

// CreateIntent 为订单创建支付意向
// 业务规则:
// 1. 订单必须处于Created或Pending状态
// 2. 已有Completed支付 → ErrDuplicatePayment
// 3. 已有Pending支付 → 直接复用(避免重复向网关下单造成双扣)
// 4. 网关成功但本地落库失败时不丢弃交易:
//    返回降级结果并发布对账事件
func (c *Coordinator) CreateIntent(ctx context.Context, orderID uint) (*CreateIntentResult, error) {
	o, err := c.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.OrderStatusCreated && o.Status != order.OrderStatusPending {
		return nil, order.ErrInvalidStatusTransition
	}

	// 检查已有支付:不盲目重试createIntent,先查有效记录
	existing, err := c.payments.FindActiveByOrderID(ctx, orderID)
	if err == nil {
		if existing.Status == payment.PaymentStatusCompleted {
			return nil, payment.ErrDuplicatePayment
		}
		return &CreateIntentResult{
			IntentID:    existing.IntentID,
			ApprovalURL: existing.ApprovalURL,
		}, nil
	}
	if !errors.Is(err, payment.ErrPaymentNotFound) {
		return nil, err
	}

	// 调用网关创建意向
	// 超时或失败时订单停留在Created,可安全重试
	intent, err := c.gateway.CreateIntent(ctx, payment.CreateIntentRequest{
		OrderNo:  o.OrderNo,
		Amount:   o.Total,
		Currency: o.Currency,
	})
	if err != nil {
		return nil, err
	}

	p, err := payment.NewPayment(intent.IntentID, o.ID, o.Total, o.Currency, intent.ApprovalURL)
	if err != nil {
		return nil, err
	}

	// 先落库支付行再返回,让后续捕获回调总能找到匹配记录
	if err := c.payments.Create(ctx, p); err != nil {
		// 网关侧意向已存在,本地没有记录:降级返回,交给对账
		log.Printf("[payment] 支付意向落库失败 intent=%s order=%s: %v", intent.IntentID, o.OrderNo, err)
		c.publish(EventReconciliationRequired, map[string]interface{}{
			"intent_id": intent.IntentID,
			"order_no":  o.OrderNo,
			"reason":    "intent_not_persisted",
		})
		return &CreateIntentResult{
			IntentID:    intent.IntentID,
			ApprovalURL: intent.ApprovalURL,
			Degraded:    true,
		}, nil
	}

	if o.Status == order.OrderStatusCreated {
		if err := o.MarkPending(); err != nil {
			return nil, err
		}
		if err := c.orders.Update(ctx, o); err != nil {
			return nil, err
		}
	}

	return &CreateIntentResult{
		IntentID:    intent.IntentID,
		ApprovalURL: intent.ApprovalURL,
	}, nil
}

// CaptureResult 捕获结果
type CaptureResult struct {
	OrderID       uint
	OrderNo       string
	OrderStatus   order.OrderStatus
	PaymentStatus payment.PaymentStatus
	TransactionID string
}

// Capture 捕获支付并执行本地侧效应
// 流程:
// 1. 按intentID查支付记录,不存在 → ErrPaymentNotFound(不做任何变更)
// 2. 已Completed → 幂等返回当前终态(容忍重复webhook),不产生新流水
// 3. 调用网关捕获:超时 → ErrGatewayTimeout(结果未知,不得当作失败);
//    拒绝 → 支付标记Failed,返回ErrGatewayRejected
// 4. 网关成功后,在一个事务内:逐行StockOut扣减+流水、
//    支付Completed、订单Paid;任何一行库存不足则整体回滚,
//    返回ErrInsufficientStock并发布对账事件(网关已扣款,需人工退款)
func (c *Coordinator) Capture(ctx context.Context, intentID string) (*CaptureResult, error) {
	start := time.Now()

	p, err := c.payments.FindByIntentID(ctx, intentID)
	if err != nil {
		return nil, err
	}

	o, err := c.orders.FindByID(ctx, p.OrderID)
	if err != nil {
		return nil, err
	}

	// 幂等:重复捕获直接返回终态,不再走网关和库存
	if p.Status == payment.PaymentStatusCompleted {
		metrics.IncCounterVec(metrics.PaymentCapturesTotal, map[string]string{"result": "duplicate"})
		return c.result(o, p), nil
	}
	if p.Status != payment.PaymentStatusPending {
		return nil, payment.ErrInvalidPaymentStatus
	}

	captured, err := c.gateway.Capture(ctx, intentID)
	if err != nil {
		if errors.Is(err, payment.ErrGatewayRejected) {
			// 确定性拒绝:支付置为失败,订单停留在Pending可重新发起
			if ferr := p.Fail(); ferr == nil {
				if uerr := c.payments.Update(ctx, p); uerr != nil {
					log.Printf("[payment] 标记支付失败状态出错 intent=%s: %v", intentID, uerr)
				}
			}
			metrics.IncCounterVec(metrics.PaymentCapturesTotal, map[string]string{"result": "rejected"})
			return nil, err
		}
		// 超时/熔断等结果未知的错误原样返回,调用方展示"处理中"
		metrics.IncCounterVec(metrics.PaymentCapturesTotal, map[string]string{"result": "unknown"})
		return nil, err
	}

	if captured.Status != payment.IntentStatusCompleted {
		metrics.IncCounterVec(metrics.PaymentCapturesTotal, map[string]string{"result": "rejected"})
		return nil, payment.ErrGatewayRejected
	}

	if err := c.settle(ctx, o, p, captured); err != nil {
		return nil, err
	}

	metrics.ObserveHistogram(metrics.PaymentCaptureDuration, time.Since(start).Seconds())
	return c.result(o, p), nil
}

// settle 捕获成功后的本地侧效应
// 网关已扣款,所有本地变更必须原子提交:
// 逐行StockOut扣减+流水、支付Completed、订单Paid
func (c *Coordinator) settle(ctx context.Context, o *order.Order, p *payment.Payment, captured *payment.CaptureResult) error {
	var lowStock []*inventory.AdjustResult
	err := c.tx.Transaction(ctx, func(txCtx context.Context) error {
		for _, item := range o.Items {
			r, err := c.adjuster.Adjust(txCtx, item.ProductID, inventory.ChangeTypeStockOut,
				item.Quantity, "订单出库", "Order", o.ID)
			if err != nil {
				return err
			}
			if r.LowStock {
				lowStock = append(lowStock, r)
			}
		}

		if err := p.Complete(captured.TransactionID, captured.PayerEmail, captured.PayerName); err != nil {
			return err
		}
		if err := c.payments.Update(txCtx, p); err != nil {
			return err
		}

		if err := o.MarkPaid(); err != nil {
			return err
		}
		return c.orders.Update(txCtx, o)
	})

	if err != nil {
		// 钱已在网关侧扣走但本地事务回滚:必须进对账队列,不得静默
		log.Printf("[payment] 捕获后本地落库失败 intent=%s order=%s: %v", p.IntentID, o.OrderNo, err)
		c.publish(EventReconciliationRequired, map[string]interface{}{
			"intent_id":      p.IntentID,
			"order_no":       o.OrderNo,
			"transaction_id": captured.TransactionID,
			"reason":         "capture_side_effects_failed",
			"error":          err.Error(),
		})
		metrics.IncCounterVec(metrics.PaymentCapturesTotal, map[string]string{"result": "reconciliation"})

		if errors.Is(err, inventory.ErrInsufficientStock) {
			return err
		}
		return payment.ErrReconciliationRequired
	}

	metrics.IncCounterVec(metrics.PaymentCapturesTotal, map[string]string{"result": "success"})

	c.publish(EventOrderPaid, map[string]interface{}{
		"order_id":       o.ID,
		"order_no":       o.OrderNo,
		"total":          o.Total,
		"currency":       o.Currency,
		"transaction_id": captured.TransactionID,
	})

	// 出库后跌破预警阈值的商品逐个告警
	for _, r := range lowStock {
		c.publish(EventStockLow, map[string]interface{}{
			"product_id": r.ProductID,
			"stock":      r.NewStock,
			"order_no":   o.OrderNo,
		})
	}

	return nil
}

// ReconcileByOrder 按订单对账
// 用于主键关联不明确的场景:逐条核对本地Pending支付
// 与网关侧状态,网关已COMPLETED而本地未更新时补齐侧效应
func (c *Coordinator) ReconcileByOrder(ctx context.Context, orderID uint) (*CaptureResult, error) {
	payments, err := c.payments.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, payment.ErrPaymentNotFound
	}

	for _, p := range payments {
		if p.Status == payment.PaymentStatusCompleted {
			o, err := c.orders.FindByID(ctx, p.OrderID)
			if err != nil {
				return nil, err
			}
			return c.result(o, p), nil
		}
	}

	for _, p := range payments {
		if p.Status != payment.PaymentStatusPending {
			continue
		}
		intent, err := c.gateway.GetIntent(ctx, p.IntentID)
		if err != nil {
			return nil, err
		}
		if intent.Status == payment.IntentStatusCompleted {
			// 网关侧已扣款而本地仍Pending:补齐捕获侧效应
			// (不重复调用网关Capture,已捕获的意向会被网关拒绝)
			o, err := c.orders.FindByID(ctx, p.OrderID)
			if err != nil {
				return nil, err
			}
			// 交易参照优先取网关侧捕获明细,缺失时以意向ID兜底
			transactionID := intent.TransactionID
			if transactionID == "" {
				transactionID = p.IntentID
			}
			if err := c.settle(ctx, o, p, &payment.CaptureResult{
				IntentID:      p.IntentID,
				Status:        payment.IntentStatusCompleted,
				TransactionID: transactionID,
				PayerEmail:    intent.PayerEmail,
				PayerName:     intent.PayerName,
			}); err != nil {
				return nil, err
			}
			return c.result(o, p), nil
		}
	}

	return nil, payment.ErrPaymentNotFound
}

func (c *Coordinator) result(o *order.Order, p *payment.Payment) *CaptureResult {
	return &CaptureResult{
		OrderID:       o.ID,
		OrderNo:       o.OrderNo,
		OrderStatus:   o.Status,
		PaymentStatus: p.Status,
		TransactionID: p.TransactionID,
	}
}

// publish best-effort发布事件
func (c *Coordinator) publish(routingKey string, message interface{}) {
	if c.events == nil {
		return
	}
	if err := c.events.Publish(routingKey, message); err != nil {
		log.Printf("[payment] 发布事件失败 key=%s: %v", routingKey, err)
	}
}
