package dto

import (
	"fmt"
	"time"

	"github.com/xiebiao/bookshop/internal/domain/product"
)

// PublishProductRequest 商品上架请求
type PublishProductRequest struct {
	SKU               string `json:"sku" binding:"required,min=3,max=64"`
	Title             string `json:"title" binding:"required,min=1,max=200"`
	Author            string `json:"author" binding:"required,min=1,max=100"`
	Price             int64  `json:"price" binding:"required,gt=0"` // 单位:便士
	InitialStock      int    `json:"initial_stock" binding:"gte=0"`
	LowStockThreshold int    `json:"low_stock_threshold" binding:"gte=0"`
	CoverURL          string `json:"cover_url"`
	Description       string `json:"description"`
}

// UpdatePriceRequest 调价请求
type UpdatePriceRequest struct {
	Price int64 `json:"price" binding:"required,gt=0"`
}

// UpdateProductRequest 商品信息更新请求
type UpdateProductRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
}

// ProductResponse 商品响应
type ProductResponse struct {
	ID          uint   `json:"id"`
	SKU         string `json:"sku"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Price       int64  `json:"price"`        // 单位:便士
	PricePounds string `json:"price_pounds"` // 如"12.99"
	Stock       int    `json:"stock"`
	IsActive    bool   `json:"is_active"`
	CoverURL    string `json:"cover_url"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

// NewProductResponse 从领域实体构建商品响应
func NewProductResponse(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Title:       p.Title,
		Author:      p.Author,
		Price:       p.Price,
		PricePounds: FormatPounds(p.Price),
		Stock:       p.Stock,
		IsActive:    p.IsActive,
		CoverURL:    p.CoverURL,
		Description: p.Description,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

// FormatPounds 便士金额格式化为英镑字符串(3497 → "34.97")
func FormatPounds(pence int64) string {
	return fmt.Sprintf("%d.%02d", pence/100, pence%100)
}
