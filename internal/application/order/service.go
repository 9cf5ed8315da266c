package order

import (
	"context"
	"errors"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/payment"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// TxManager 事务边界接口(mysql.TxManager满足此接口)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 订单应用服务
// 买家侧的订单查询、取消;运营侧的退款
type Service struct {
	orders   order.Repository
	payments payment.Repository
	adjuster inventory.Adjuster
	tx       TxManager
}

// NewService 创建订单服务
func NewService(
	orders order.Repository,
	payments payment.Repository,
	adjuster inventory.Adjuster,
	tx TxManager,
) *Service {
	return &Service{
		orders:   orders,
		payments: payments,
		adjuster: adjuster,
		tx:       tx,
	}
}

// GetOrder 查询订单(含权限校验)
// userID为0表示管理端查询,跳过归属校验
func (s *Service) GetOrder(ctx context.Context, orderID, userID uint) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if userID != 0 && !o.IsOwnedBy(userID) {
		return nil, apperrors.ErrForbidden
	}

	return o, nil
}

// GetGuestOrder 游客按订单号+令牌查询订单
func (s *Service) GetGuestOrder(ctx context.Context, orderNo, guestToken string) (*order.Order, error) {
	o, err := s.orders.FindByOrderNo(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	if !o.IsGuestOrder() || o.GuestToken != guestToken {
		return nil, apperrors.ErrForbidden
	}

	return o, nil
}

// ListOrders 查询用户的订单列表
func (s *Service) ListOrders(ctx context.Context, userID uint, page, pageSize int) ([]*order.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.orders.ListByUserID(ctx, userID, page, pageSize)
}

// CancelOrder 取消订单
// 业务规则:
// 1. 已有Completed支付的订单不能直接取消,必须走退款路径
// 2. 存在Pending支付意向时一并作废
// 3. 取消发生在库存扣减之前(捕获前),无需回补库存
func (s *Service) CancelOrder(ctx context.Context, orderID, userID uint, reason string) error {
	return s.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}
		if userID != 0 && !o.IsOwnedBy(userID) {
			return apperrors.ErrForbidden
		}

		// 已支付的订单必须走退款
		active, err := s.payments.FindActiveByOrderID(txCtx, orderID)
		if err != nil && !errors.Is(err, payment.ErrPaymentNotFound) {
			return err
		}
		if active != nil && active.Status == payment.PaymentStatusCompleted {
			return order.ErrInvalidStatusTransition
		}

		if err := o.Cancel(reason); err != nil {
			return err
		}
		if err := s.orders.Update(txCtx, o); err != nil {
			return err
		}

		// 作废未捕获的支付意向
		if active != nil && active.Status == payment.PaymentStatusPending {
			if err := active.Cancel(); err != nil {
				return err
			}
			if err := s.payments.Update(txCtx, active); err != nil {
				return err
			}
		}

		return nil
	})
}

// RefundOrder 退款(运营操作)
// 业务规则:
// 1. 只有存在Completed支付的订单可退款
// 2. 逐行Return回补库存(每行一条流水)、
//    支付转Refunded、订单转Refunded,同一事务内完成
// 3. 网关侧实际退款动作在事务提交后由运营通过网关后台执行
func (s *Service) RefundOrder(ctx context.Context, orderID uint) error {
	return s.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		p, err := s.payments.FindActiveByOrderID(txCtx, orderID)
		if err != nil {
			return err
		}
		if !p.CanRefund() {
			return payment.ErrInvalidPaymentStatus
		}

		// 库存回补:只有已扣减过(Paid及之后)的订单才有回补
		for _, item := range o.Items {
			if _, err := s.adjuster.Adjust(txCtx, item.ProductID, inventory.ChangeTypeReturn,
				item.Quantity, "退款回补", "Order", o.ID); err != nil {
				return err
			}
		}

		if err := p.Refund(); err != nil {
			return err
		}
		if err := s.payments.Update(txCtx, p); err != nil {
			return err
		}

		if err := o.Refund(); err != nil {
			return err
		}
		return s.orders.Update(txCtx, o)
	})
}
