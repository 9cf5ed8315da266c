package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appproduct "github.com/xiebiao/bookshop/internal/application/product"
	"github.com/xiebiao/bookshop/internal/domain/product"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// ProductHandler 商品HTTP处理器
type ProductHandler struct {
	products *appproduct.Service
}

// NewProductHandler 创建商品处理器
func NewProductHandler(products *appproduct.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

// List 商品列表
// @Summary      商品列表
// @Description  分页查询在售商品,支持关键词搜索
// @Tags         商品
// @Produce      json
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Param        keyword query string false "搜索关键词"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	products, total, err := h.products.List(c.Request.Context(), product.ListParams{
		Page:       page,
		PageSize:   pageSize,
		Keyword:    c.Query("keyword"),
		OnlyActive: true,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.ProductResponse, len(products))
	for i, p := range products {
		list[i] = dto.NewProductResponse(p)
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// Get 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewProductResponse(p))
}

// Publish 上架商品(管理员)
// @Summary      上架商品
// @Description  创建新商品,初始库存通过StockIn流水入账
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PublishProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Failure      409 {object} response.Response "SKU已存在"
// @Router       /api/v1/products [post]
func (h *ProductHandler) Publish(c *gin.Context) {
	var req dto.PublishProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	p, err := h.products.Publish(c.Request.Context(), appproduct.PublishRequest{
		SKU:               req.SKU,
		Title:             req.Title,
		Author:            req.Author,
		Price:             req.Price,
		InitialStock:      req.InitialStock,
		LowStockThreshold: req.LowStockThreshold,
		CoverURL:          req.CoverURL,
		Description:       req.Description,
		OperatorID:        middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewProductResponse(p))
}

// UpdatePrice 调价(管理员)
// @Summary      商品调价
// @Description  历史订单不受影响(订单行保存快照价)
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.UpdatePriceRequest true "新价格"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Router       /api/v1/products/{id}/price [put]
func (h *ProductHandler) UpdatePrice(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req dto.UpdatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	p, err := h.products.UpdatePrice(c.Request.Context(), id, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewProductResponse(p))
}

// Update 更新商品信息(管理员)
// @Summary      更新商品信息
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.UpdateProductRequest true "商品信息"
// @Success      200 {object} response.Response{data=dto.ProductResponse}
// @Router       /api/v1/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	p, err := h.products.UpdateInfo(c.Request.Context(), id, req.Title, req.Author, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewProductResponse(p))
}

// Deactivate 下架商品(管理员)
// @Summary      下架商品
// @Description  软删除,历史订单与流水保留
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response
// @Router       /api/v1/products/{id} [delete]
func (h *ProductHandler) Deactivate(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	if err := h.products.Deactivate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// parseUintParam 解析路径中的uint参数,失败时写入错误响应
func parseUintParam(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+name+"必须是正整数")
		return 0, err
	}
	return uint(value), nil
}
