package warehouse

import (
	"context"
	"log"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/order"
	"github.com/xiebiao/bookshop/internal/domain/product"
	"github.com/xiebiao/bookshop/internal/domain/shipment"
	"github.com/xiebiao/bookshop/pkg/metrics"
)

// TxManager 事务边界接口(mysql.TxManager满足此接口)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher 领域事件发布接口
type EventPublisher interface {
	Publish(routingKey string, message interface{}) error
}

// EventStockLow 低库存预警事件
const EventStockLow = "stock.low"

// Service 仓库操作应用服务
// 入库/盘点/报损、打包、库存流水查询都从这里走
type Service struct {
	products  product.Repository
	ledger    inventory.LedgerRepository
	adjuster  inventory.Adjuster
	orders    order.Repository
	shipments shipment.Repository
	tx        TxManager
	events    EventPublisher
}

// NewService 创建仓库服务
func NewService(
	products product.Repository,
	ledger inventory.LedgerRepository,
	adjuster inventory.Adjuster,
	orders order.Repository,
	shipments shipment.Repository,
	tx TxManager,
	events EventPublisher,
) *Service {
	return &Service{
		products:  products,
		ledger:    ledger,
		adjuster:  adjuster,
		orders:    orders,
		shipments: shipments,
		tx:        tx,
		events:    events,
	}
}

// AdjustStockRequest 人工库存调整请求
type AdjustStockRequest struct {
	ProductID  uint
	ChangeType inventory.ChangeType
	Quantity   int
	Reason     string
	OperatorID uint // 操作人(流水关联)
}

// AdjustStockResponse 调整结果
type AdjustStockResponse struct {
	ProductID     uint `json:"product_id"`
	PreviousStock int  `json:"previous_stock"`
	NewStock      int  `json:"new_stock"`
}

// AdjustStock 人工库存调整(入库/盘点/报损/退货回补)
// 调整和流水在同一事务内落库;
// 调整后低于预警阈值时发布stock.low事件
func (s *Service) AdjustStock(ctx context.Context, req AdjustStockRequest) (*AdjustStockResponse, error) {
	var result *inventory.AdjustResult

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		r, err := s.adjuster.Adjust(txCtx, req.ProductID, req.ChangeType,
			req.Quantity, req.Reason, "Manual", req.OperatorID)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCounterVec(metrics.StockAdjustmentsTotal, map[string]string{
		"change_type": string(req.ChangeType),
	})

	s.checkLowStock(ctx, req.ProductID)

	return &AdjustStockResponse{
		ProductID:     req.ProductID,
		PreviousStock: result.PreviousStock,
		NewStock:      result.NewStock,
	}, nil
}

// PackOrder 打包已支付订单
// 前提:订单Paid或Processing(库存在捕获时已扣减);
// 打包创建物流单并把订单推进到Packed,同一事务内完成
func (s *Service) PackOrder(ctx context.Context, orderID uint) (*shipment.Shipment, error) {
	var created *shipment.Shipment

	err := s.tx.Transaction(ctx, func(txCtx context.Context) error {
		o, err := s.orders.FindByID(txCtx, orderID)
		if err != nil {
			return err
		}

		if err := o.Pack(); err != nil {
			return err
		}
		if err := s.orders.Update(txCtx, o); err != nil {
			return err
		}

		sh := shipment.NewShipment(o.ID)
		if err := s.shipments.Create(txCtx, sh); err != nil {
			return err
		}
		created = sh
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// LedgerHistory 查询商品的库存流水
func (s *Service) LedgerHistory(ctx context.Context, productID uint, page, pageSize int) ([]*inventory.LedgerEntry, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.ledger.ListByProduct(ctx, productID, page, pageSize)
}

// RecentLedger 查询最近的库存流水(仓库看板)
func (s *Service) RecentLedger(ctx context.Context, limit int) ([]*inventory.LedgerEntry, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.ledger.ListRecent(ctx, limit)
}

// LowStockProducts 查询低库存在售商品,并刷新看板指标
func (s *Service) LowStockProducts(ctx context.Context) ([]*product.Product, error) {
	products, err := s.products.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}

	metrics.SetGauge(metrics.LowStockProducts, float64(len(products)))
	return products, nil
}

// PackableOrders 查询待打包的订单(Paid状态)
func (s *Service) PackableOrders(ctx context.Context, page, pageSize int) ([]*order.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.orders.ListByStatus(ctx, order.OrderStatusPaid, page, pageSize)
}

// checkLowStock 低库存检查,触发预警事件(best-effort)
func (s *Service) checkLowStock(ctx context.Context, productID uint) {
	if s.events == nil {
		return
	}

	p, err := s.products.FindByID(ctx, productID)
	if err != nil || !p.IsLowStock() {
		return
	}

	if err := s.events.Publish(EventStockLow, map[string]interface{}{
		"product_id": p.ID,
		"sku":        p.SKU,
		"title":      p.Title,
		"stock":      p.Stock,
		"threshold":  p.LowStockThreshold,
	}); err != nil {
		log.Printf("[warehouse] 发布低库存事件失败 product=%d: %v", productID, err)
	}
}
