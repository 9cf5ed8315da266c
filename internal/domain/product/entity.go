package product

import (
	"time"
)

// Product 商品实体(聚合根)
// 设计说明:
// 1. 价格使用int64存储"便士"为单位(避免浮点数精度问题,货币为GBP)
// 2. SKU作为业务唯一标识(数据库层保证唯一性)
// 3. Stock只能通过库存调整服务(inventory.Adjuster)修改,
//    保证每次变更都有流水记录
// 4. 商品不做物理删除,下架通过IsActive=false实现
type Product struct {
	ID                uint
	SKU               string // 商品编码(业务唯一标识)
	Title             string // 书名
	Author            string // 作者
	Price             int64  // 单价(单位:便士,1英镑=100便士)
	Stock             int    // 库存数量
	LowStockThreshold int    // 低库存告警阈值
	IsActive          bool   // 上架状态(软删除)
	CoverURL          string // 封面图片URL
	Description       string // 商品描述
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewProduct 创建新商品(工厂方法)
func NewProduct(sku, title, author string, price int64, stock, lowStockThreshold int, coverURL, description string) *Product {
	now := time.Now()
	return &Product{
		SKU:               sku,
		Title:             title,
		Author:            author,
		Price:             price,
		Stock:             stock,
		LowStockThreshold: lowStockThreshold,
		IsActive:          true,
		CoverURL:          coverURL,
		Description:       description,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpdatePrice 更新价格(领域行为)
// 业务规则:价格必须>0
func (p *Product) UpdatePrice(newPrice int64) error {
	if newPrice <= 0 {
		return ErrInvalidPrice
	}
	p.Price = newPrice
	p.UpdatedAt = time.Now()
	return nil
}

// DecrStock 扣减库存
// 业务规则:扣减后库存不能为负数
// 注意:只允许inventory.Adjuster调用,保证有流水记录
func (p *Product) DecrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock < quantity {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now()
	return nil
}

// IncrStock 增加库存(用于退货回补、入库)
func (p *Product) IncrStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now()
	return nil
}

// SetStock 设置绝对库存值(用于盘点调整)
func (p *Product) SetStock(newStock int) error {
	if newStock < 0 {
		return ErrInvalidStock
	}
	p.Stock = newStock
	p.UpdatedAt = time.Now()
	return nil
}

// IsLowStock 是否低于告警阈值
func (p *Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}

// Deactivate 下架(软删除)
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}

// UpdateInfo 更新商品基本信息
func (p *Product) UpdateInfo(title, author, description string) {
	if title != "" {
		p.Title = title
	}
	if author != "" {
		p.Author = author
	}
	if description != "" {
		p.Description = description
	}
	p.UpdatedAt = time.Now()
}
