package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookshop/internal/application/order"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	orders *apporder.Service
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(orders *apporder.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List 我的订单列表
// @Summary      我的订单列表
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.orders.ListOrders(c.Request.Context(), userID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.OrderResponse, len(orders))
	for i, o := range orders {
		list[i] = dto.NewOrderResponse(o)
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// Get 订单详情
// @Summary      订单详情
// @Description  只能查询本人的订单
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      403 {object} response.Response "无权查看"
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	o, err := h.orders.GetOrder(c.Request.Context(), id, middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// GuestLookup 游客订单查询
// @Summary      游客订单查询
// @Description  按订单号+游客令牌查询订单
// @Tags         订单
// @Produce      json
// @Param        orderNo path string true "订单号"
// @Param        X-Guest-Token header string true "游客令牌"
// @Success      200 {object} response.Response{data=dto.OrderResponse}
// @Failure      403 {object} response.Response "令牌不匹配"
// @Router       /api/v1/orders/guest/{orderNo} [get]
func (h *OrderHandler) GuestLookup(c *gin.Context) {
	orderNo := c.Param("orderNo")
	token := c.GetHeader(GuestTokenHeader)
	if token == "" {
		response.ErrorWithCode(c, 40100, "缺少游客令牌")
		return
	}

	o, err := h.orders.GetGuestOrder(c.Request.Context(), orderNo, token)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewOrderResponse(o))
}

// Cancel 取消订单
// @Summary      取消订单
// @Description  已支付的订单不能直接取消,需走退款
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.CancelOrderRequest true "取消原因"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "订单状态不允许取消"
// @Router       /api/v1/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	if err := h.orders.CancelOrder(c.Request.Context(), id, middleware.MustGetUserID(c), req.Reason); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Refund 订单退款(管理员)
// @Summary      订单退款
// @Description  回补库存并把支付和订单转入Refunded,同一事务内完成
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "支付状态不允许退款"
// @Router       /api/v1/orders/{id}/refund [post]
func (h *OrderHandler) Refund(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return
	}

	if err := h.orders.RefundOrder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
