package product

import (
	"context"
	"errors"

	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/domain/product"
)

// TxManager 事务边界接口(mysql.TxManager满足此接口)
type TxManager interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service 商品目录应用服务
// 设计说明:
// 上架时的初始库存不直接写Stock字段,
// 而是走库存调整服务入库:保证第一条流水也在账上
type Service struct {
	products product.Repository
	adjuster inventory.Adjuster
	tx       TxManager
}

// NewService 创建商品服务
func NewService(products product.Repository, adjuster inventory.Adjuster, tx TxManager) *Service {
	return &Service{
		products: products,
		adjuster: adjuster,
		tx:       tx,
	}
}

// PublishRequest 上架请求
type PublishRequest struct {
	SKU               string
	Title             string
	Author            string
	Price             int64
	InitialStock      int
	LowStockThreshold int
	CoverURL          string
	Description       string
	OperatorID        uint // 操作人(入库流水关联)
}

// Publish 上架商品
// 业务规则:
// - SKU全局唯一
// - 价格必须>0
// - 初始库存通过StockIn入账,商品创建与入库流水同一事务
func (s *Service) Publish(ctx context.Context, req PublishRequest) (*product.Product, error) {
	if req.Price <= 0 {
		return nil, product.ErrInvalidPrice
	}
	if req.InitialStock < 0 {
		return nil, product.ErrInvalidStock
	}

	_, err := s.products.FindBySKU(ctx, req.SKU)
	if err == nil {
		return nil, product.ErrSKUDuplicate
	}
	if !errors.Is(err, product.ErrProductNotFound) {
		return nil, err
	}

	p := product.NewProduct(req.SKU, req.Title, req.Author, req.Price,
		0, req.LowStockThreshold, req.CoverURL, req.Description)

	err = s.tx.Transaction(ctx, func(txCtx context.Context) error {
		if err := s.products.Create(txCtx, p); err != nil {
			return err
		}
		if req.InitialStock > 0 {
			_, err := s.adjuster.Adjust(txCtx, p.ID, inventory.ChangeTypeStockIn,
				req.InitialStock, "新品入库", "Manual", req.OperatorID)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.Stock = req.InitialStock
	return p, nil
}

// Get 查询商品详情
func (s *Service) Get(ctx context.Context, id uint) (*product.Product, error) {
	return s.products.FindByID(ctx, id)
}

// List 分页查询商品列表
func (s *Service) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = 20
	}
	if params.PageSize > 100 {
		params.PageSize = 100
	}
	return s.products.List(ctx, params)
}

// UpdatePrice 调价
// 历史订单不受影响(订单行保存快照价)
func (s *Service) UpdatePrice(ctx context.Context, id uint, newPrice int64) (*product.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := p.UpdatePrice(newPrice); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateInfo 更新商品基本信息
func (s *Service) UpdateInfo(ctx context.Context, id uint, title, author, description string) (*product.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p.UpdateInfo(title, author, description)
	if err := s.products.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Deactivate 下架商品(软删除)
// 已下架商品不可再结算,但历史订单、流水保留
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	p.Deactivate()
	return s.products.Update(ctx, p)
}
