package delivery

import (
	"context"

	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/shipment"
)

// TxManager 事务边界接口(mysql.TxManager满足此接口)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 配送应用服务
// 发货和送达都要同时推进物流单和订单状态机,放在同一事务内
type Service struct {
	orders    order.Repository
	shipments shipment.Repository
	tx        TxManager
}

// NewService 创建配送服务
func NewService(orders order.Repository, shipments shipment.Repository, tx TxManager) *Service {
	return &Service{
		orders:    orders,
		shipments: shipments,
		tx:        tx,
	}
}

// ShipOrder 发货
// 前提:订单已打包,物流单存在
func (s *Service) ShipOrder(ctx context.Context, orderID uint, carrier, trackingNo string) (*shipment.Shipment, error) {
	var shipped *shipment.Shipment

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		sh, err := s.shipments.FindByOrderID(txCtx, orderID)
		if err != nil {
			return err
		}

		if err := sh.Ship(carrier, trackingNo); err != nil {
			return err
		}
		if err := s.shipments.Update(txCtx, sh); err != nil {
			return err
		}

		if err := o.Ship(); err != nil {
			return err
		}
		if err := s.orders.Update(txCtx, o); err != nil {
			return err
		}

		shipped = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	return shipped, nil
}

// DeliverOrder 确认送达
func (s *Service) DeliverOrder(ctx context.Context, orderID uint) (*shipment.Shipment, error) {
	var delivered *shipment.Shipment

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		sh, err := s.shipments.FindByOrderID(txCtx, orderID)
		if err != nil {
			return err
		}

		if err := sh.Deliver(); err != nil {
			return err
		}
		if err := s.shipments.Update(txCtx, sh); err != nil {
			return err
		}

		if err := o.Deliver(); err != nil {
			return err
		}
		if err := s.orders.Update(txCtx, o); err != nil {
			return err
		}

		delivered = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	return delivered, nil
}

// Track 查询订单的物流信息
func (s *Service) Track(ctx context.Context, orderID uint) (*shipment.Shipment, error) {
	return s.shipments.FindByOrderID(ctx, orderID)
}

// DispatchBoard 配送看板:待发货的物流单
func (s *Service) DispatchBoard(ctx context.Context, page, pageSize int) ([]*shipment.Shipment, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.shipments.ListByStatus(ctx, shipment.ShipmentStatusPacked, page, pageSize)
}
