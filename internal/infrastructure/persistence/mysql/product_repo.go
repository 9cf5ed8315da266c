package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookshop/internal/domain/product"
	apperrors "github.com/xiebiao/bookshop/pkg/errors"
)

// productRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/product/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误(如SKU重复),转换为业务错误
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// Create 创建商品
func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	model := toProductModel(p)

	if err := getDB(ctx, r.db).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return product.ErrSKUDuplicate
		}
		return apperrors.Wrap(err, "创建商品失败")
	}

	p.ID = model.ID
	p.CreatedAt = model.CreatedAt
	p.UpdatedAt = model.UpdatedAt

	return nil
}

// FindByID 根据ID查找商品
func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	err := getDB(ctx, r.db).First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// FindBySKU 根据SKU查找商品
func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	var model ProductModel
	err := getDB(ctx, r.db).Where("sku = ?", sku).First(&model).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "查询商品失败")
	}

	return toProductEntity(&model), nil
}

// Update 更新商品
func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	model := toProductModel(p)
	model.ID = p.ID

	// Save更新所有字段(含IsActive=false这类零值)
	if err := getDB(ctx, r.db).Save(model).Error; err != nil {
		return apperrors.Wrap(err, "更新商品失败")
	}

	p.UpdatedAt = model.UpdatedAt
	return nil
}

// List 分页查询商品列表
func (r *productRepository) List(ctx context.Context, params product.ListParams) ([]*product.Product, int64, error) {
	var models []ProductModel
	var total int64

	query := getDB(ctx, r.db).Model(&ProductModel{})

	if params.Keyword != "" {
		keyword := "%" + params.Keyword + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", keyword, keyword)
	}

	if params.OnlyActive {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品总数失败")
	}

	offset := (params.Page - 1) * params.PageSize
	err := query.Order("created_at DESC").
		Limit(params.PageSize).
		Offset(offset).
		Find(&models).Error

	if err != nil {
		return nil, 0, apperrors.Wrap(err, "查询商品列表失败")
	}

	products := make([]*product.Product, len(models))
	for i := range models {
		products[i] = toProductEntity(&models[i])
	}

	return products, total, nil
}

// ListLowStock 查询低于预警阈值的在售商品
func (r *productRepository) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	var models []ProductModel
	err := getDB(ctx, r.db).
		Where("is_active = ? AND stock <= low_stock_threshold", true).
		Order("stock ASC").
		Find(&models).Error

	if err != nil {
		return nil, apperrors.Wrap(err, "查询低库存商品失败")
	}

	products := make([]*product.Product, len(models))
	for i := range models {
		products[i] = toProductEntity(&models[i])
	}

	return products, nil
}

// LockByID 悲观锁查询商品(库存变更前必须调用)
// SELECT FOR UPDATE锁定行,必须在事务内使用
func (r *productRepository) LockByID(ctx context.Context, id uint) (*product.Product, error) {
	var model ProductModel
	err := getDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, id).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrProductNotFound
		}
		return nil, apperrors.Wrap(err, "锁定商品失败")
	}

	return toProductEntity(&model), nil
}

// toProductModel 领域实体 → GORM模型
func toProductModel(p *product.Product) *ProductModel {
	return &ProductModel{
		ID:                p.ID,
		SKU:               p.SKU,
		Title:             p.Title,
		Author:            p.Author,
		Price:             p.Price,
		Stock:             p.Stock,
		LowStockThreshold: p.LowStockThreshold,
		IsActive:          p.IsActive,
		CoverURL:          p.CoverURL,
		Description:       p.Description,
	}
}

// toProductEntity GORM模型 → 领域实体
func toProductEntity(model *ProductModel) *product.Product {
	return &product.Product{
		ID:                model.ID,
		SKU:               model.SKU,
		Title:             model.Title,
		Author:            model.Author,
		Price:             model.Price,
		Stock:             model.Stock,
		LowStockThreshold: model.LowStockThreshold,
		IsActive:          model.IsActive,
		CoverURL:          model.CoverURL,
		Description:       model.Description,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}
