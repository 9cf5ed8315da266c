package cart

import (
	"context"
	"errors"

	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/domain/product"
)

// Service 购物车应用服务
// 购物车是暂存区:加购/改量/查看,结算走checkout.Orchestrator
type Service struct {
	carts    cart.Store
	products product.Repository
}

// NewService 创建购物车服务
func NewService(carts cart.Store, products product.Repository) *Service {
	return &Service{
		carts:    carts,
		products: products,
	}
}

// AddItem 加入商品
// 业务规则:
// - 商品必须存在且在售
// - 加购不锁价也不占库存(价格和库存都在结算时确定)
func (s *Service) AddItem(ctx context.Context, owner cart.Owner, productID uint, quantity int) (*cart.Cart, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, product.ErrProductInactive
	}

	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		if !errors.Is(err, cart.ErrCartNotFound) {
			return nil, err
		}
		c = &cart.Cart{Owner: owner}
	}

	if err := c.AddItem(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateQuantity 修改商品数量(0表示移除)
func (s *Service) UpdateQuantity(ctx context.Context, owner cart.Owner, productID uint, quantity int) (*cart.Cart, error) {
	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := c.UpdateQuantity(productID, quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CartLine 购物车展示行(按当前价计算)
type CartLine struct {
	ProductID uint   `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
	LineTotal int64  `json:"line_total"`
	IsActive  bool   `json:"is_active"`
}

// CartView 购物车展示视图
type CartView struct {
	Lines []CartLine `json:"lines"`
	Total int64      `json:"total"`
}

// View 查看购物车
// 展示价取商品当前价;已下架商品保留在视图中提示用户移除
func (s *Service) View(ctx context.Context, owner cart.Owner) (*CartView, error) {
	c, err := s.carts.Get(ctx, owner)
	if err != nil {
		if errors.Is(err, cart.ErrCartNotFound) {
			return &CartView{Lines: []CartLine{}}, nil
		}
		return nil, err
	}

	view := &CartView{Lines: make([]CartLine, 0, len(c.Items))}
	for _, item := range c.Items {
		p, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		lineTotal := int64(item.Quantity) * p.Price
		view.Lines = append(view.Lines, CartLine{
			ProductID: p.ID,
			Title:     p.Title,
			Quantity:  item.Quantity,
			UnitPrice: p.Price,
			LineTotal: lineTotal,
			IsActive:  p.IsActive,
		})
		if p.IsActive {
			view.Total += lineTotal
		}
	}
	return view, nil
}

// Clear 清空购物车
func (s *Service) Clear(ctx context.Context, owner cart.Owner) error {
	return s.carts.Clear(ctx, owner)
}
