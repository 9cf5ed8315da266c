package checkout

import (
	"context"
	"errors"
	"log"
	"time"

	apppayment "github.com/xiebiao/bookshop/internal/application/payment"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/pkg/metrics"
	"github.com/xiebiao/bookshop/pkg/saga"
)

// PaymentCoordinator 支付协调器接口(application/payment.Coordinator满足)
type PaymentCoordinator interface {
	CreateIntent(ctx context.Context, orderID uint) (*apppayment.CreateIntentResult, error)
	Capture(ctx context.Context, intentID string) (*apppayment.CaptureResult, error)
}

// Orchestrator 结账编排器
// 设计说明:
// 1. 对外的唯一结账入口,串联:快照→建单→支付意向→捕获→清车
// 2. StartCheckout用Saga组织:支付意向创建失败时取消订单补偿,
//    不留下可被后续捕获命中的半成品订单
// 3. 库存在捕获时才扣减:下单不占库存,
//    捕获侧的事务保证"要么全部扣减要么订单不进Paid"
// 4. 结账失败时购物车刻意保留,用户可直接重试
type Orchestrator struct {
	snapshotter cart.Snapshotter
	carts       cart.Store
	orders      order.Repository
	coordinator PaymentCoordinator
}

// NewOrchestrator 创建结账编排器
func NewOrchestrator(
	snapshotter cart.Snapshotter,
	carts cart.Store,
	orders order.Repository,
	coordinator PaymentCoordinator,
) *Orchestrator {
	return &Orchestrator{
		snapshotter: snapshotter,
		carts:       carts,
		orders:      orders,
		coordinator: coordinator,
	}
}

// StartCheckoutResult 发起结账结果
type StartCheckoutResult struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	Total       int64  `json:"total"`
	Currency    string `json:"currency"`
	IntentID    string `json:"intent_id"`
	ApprovalURL string `json:"approval_url"`
}

// StartCheckout 发起结账
// 流程:购物车快照 → 创建订单 → 创建支付意向
// 此阶段不清空购物车,也不扣减库存
func (o *Orchestrator) StartCheckout(ctx context.Context, owner cart.Owner) (*StartCheckoutResult, error) {
	start := time.Now()
	metrics.IncCounter(metrics.CheckoutsStartedTotal)

	snap, err := o.snapshotter.Snapshot(ctx, owner)
	if err != nil {
		o.failed("empty_cart")
		return nil, err
	}

	items := make([]order.OrderItem, len(snap.Lines))
	for i, line := range snap.Lines {
		items[i] = order.OrderItem{
			ProductID: line.ProductID,
			Title:     line.Title,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}

	var createdOrder *order.Order
	var intent *apppayment.CreateIntentResult

	s := saga.NewSaga(30 * time.Second)
	s.AddStep("创建订单",
		func(ctx context.Context) error {
			newOrder, err := o.createOrder(ctx, owner, items)
			if err != nil {
				return err
			}
			createdOrder = newOrder
			return nil
		},
		func(ctx context.Context) error {
			// 补偿:取消刚创建的订单
			if createdOrder == nil {
				return nil
			}
			if err := createdOrder.Cancel("支付意向创建失败"); err != nil {
				return err
			}
			return o.orders.Update(ctx, createdOrder)
		},
	)
	s.AddStep("创建支付意向",
		func(ctx context.Context) error {
			result, err := o.coordinator.CreateIntent(ctx, createdOrder.ID)
			if err != nil {
				return err
			}
			intent = result
			return nil
		},
		nil, // 最后一步无需补偿
	)

	if err := s.Execute(ctx); err != nil {
		o.failed("intent_failed")
		return nil, err
	}

	metrics.ObserveHistogram(metrics.CheckoutDuration, time.Since(start).Seconds())
	metrics.ObserveHistogram(metrics.OrderAmountPence, float64(createdOrder.Total))

	return &StartCheckoutResult{
		OrderID:     createdOrder.ID,
		OrderNo:     createdOrder.OrderNo,
		Total:       createdOrder.Total,
		Currency:    createdOrder.Currency,
		IntentID:    intent.IntentID,
		ApprovalURL: intent.ApprovalURL,
	}, nil
}

// createOrder 创建订单,订单号唯一冲突时有界重试
func (o *Orchestrator) createOrder(ctx context.Context, owner cart.Owner, items []order.OrderItem) (*order.Order, error) {
	for attempt := 0; attempt < order.MaxOrderNoRetries; attempt++ {
		newOrder, err := order.NewOrder(order.GenerateOrderNo(), owner.UserID, owner.GuestToken, items)
		if err != nil {
			return nil, err
		}

		err = o.orders.Create(ctx, newOrder)
		if err == nil {
			return newOrder, nil
		}
		if !errors.Is(err, order.ErrOrderNoGenerate) {
			return nil, err
		}
		// 订单号碰撞,换一个再试
	}
	return nil, order.ErrOrderNoGenerate
}

// CompleteCheckoutResult 完成结账结果
type CompleteCheckoutResult struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	OrderStatus string `json:"order_status"`
}

// CompleteCheckout 完成结账(买家授权后回调)
// 捕获成功后清空购物车;任何失败都保留购物车供重试
func (o *Orchestrator) CompleteCheckout(ctx context.Context, intentID string) (*CompleteCheckoutResult, error) {
	captured, err := o.coordinator.Capture(ctx, intentID)
	if err != nil {
		o.failed("capture_failed")
		return nil, err
	}

	ord, err := o.orders.FindByID(ctx, captured.OrderID)
	if err != nil {
		return nil, err
	}

	// 清车失败不影响结账结果:下一次结账快照会覆盖
	owner := ownerOfOrder(ord)
	if err := o.carts.Clear(ctx, owner); err != nil {
		log.Printf("[checkout] 清空购物车失败 owner=%s: %v", owner.Key(), err)
	}

	metrics.IncCounter(metrics.CheckoutsCompletedTotal)

	return &CompleteCheckoutResult{
		OrderID:     captured.OrderID,
		OrderNo:     captured.OrderNo,
		OrderStatus: captured.OrderStatus.String(),
	}, nil
}

func (o *Orchestrator) failed(reason string) {
	metrics.IncCounterVec(metrics.CheckoutsFailedTotal, map[string]string{"reason": reason})
}

// ownerOfOrder 从订单还原购物车归属
func ownerOfOrder(ord *order.Order) cart.Owner {
	if ord.IsGuestOrder() {
		return cart.OwnerOfGuest(ord.GuestToken)
	}
	return cart.OwnerOfUser(ord.UserID)
}
