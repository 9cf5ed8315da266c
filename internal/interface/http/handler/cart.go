package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	"github.com/xiebiao/bookshop/internal/domain/cart"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// GuestTokenHeader 游客购物车令牌Header
const GuestTokenHeader = "X-Guest-Token"

// CartHandler 购物车HTTP处理器
// 登录用户按UserID定位购物车,游客按X-Guest-Token定位
type CartHandler struct {
	carts *appcart.Service
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(carts *appcart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// ownerFromRequest 解析购物车归属
// 优先登录用户;匿名请求必须携带游客令牌
func ownerFromRequest(c *gin.Context) (cart.Owner, bool) {
	if userID := middleware.GetUserID(c); userID != 0 {
		return cart.OwnerOfUser(userID), true
	}
	if token := c.GetHeader(GuestTokenHeader); token != "" {
		return cart.OwnerOfGuest(token), true
	}
	response.ErrorWithCode(c, 40100, "请先登录或提供游客令牌")
	return cart.Owner{}, false
}

// Get 查看购物车
// @Summary      查看购物车
// @Description  按当前价展示购物车,已下架商品单独标记
// @Tags         购物车
// @Produce      json
// @Param        X-Guest-Token header string false "游客令牌(未登录时必填)"
// @Success      200 {object} response.Response{data=cart.CartView}
// @Router       /api/v1/cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	owner, ok := ownerFromRequest(c)
	if !ok {
		return
	}

	view, err := h.carts.View(c.Request.Context(), owner)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// AddItem 加入商品
// @Summary      加入购物车
// @Description  同商品累加数量;加购不锁价也不占库存
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Param        X-Guest-Token header string false "游客令牌(未登录时必填)"
// @Param        request body dto.AddCartItemRequest true "商品与数量"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	owner, ok := ownerFromRequest(c)
	if !ok {
		return
	}

	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if _, err := h.carts.AddItem(c.Request.Context(), owner, req.ProductID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// UpdateItem 修改商品数量
// @Summary      修改购物车商品数量
// @Description  数量为0表示移除该商品
// @Tags         购物车
// @Accept       json
// @Produce      json
// @Param        X-Guest-Token header string false "游客令牌(未登录时必填)"
// @Param        productId path int true "商品ID"
// @Param        request body dto.UpdateCartItemRequest true "数量"
// @Success      200 {object} response.Response
// @Router       /api/v1/cart/items/{productId} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	owner, ok := ownerFromRequest(c)
	if !ok {
		return
	}

	productID, err := parseUintParam(c, "productId")
	if err != nil {
		return
	}

	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if _, err := h.carts.UpdateQuantity(c.Request.Context(), owner, productID, req.Quantity); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Clear 清空购物车
// @Summary      清空购物车
// @Tags         购物车
// @Produce      json
// @Param        X-Guest-Token header string false "游客令牌(未登录时必填)"
// @Success      200 {object} response.Response
// @Router       /api/v1/cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	owner, ok := ownerFromRequest(c)
	if !ok {
		return
	}

	if err := h.carts.Clear(c.Request.Context(), owner); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
