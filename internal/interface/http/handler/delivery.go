package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appdelivery "github.com/xiebiao/bookshop/internal/application/delivery"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// DeliveryHandler 配送HTTP处理器(warehouse角色)
type DeliveryHandler struct {
	delivery *appdelivery.Service
}

// NewDeliveryHandler 创建配送处理器
func NewDeliveryHandler(delivery *appdelivery.Service) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery}
}

// Ship 发货
// @Summary      发货
// @Description  填写承运商和运单号,物流单与订单同时推进
// @Tags         配送
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orderId path int true "订单ID"
// @Param        request body dto.ShipOrderRequest true "承运信息"
// @Success      200 {object} response.Response{data=dto.ShipmentResponse}
// @Failure      400 {object} response.Response "物流单状态不允许发货"
// @Router       /api/v1/delivery/ship/{orderId} [post]
func (h *DeliveryHandler) Ship(c *gin.Context) {
	orderID, err := parseUintParam(c, "orderId")
	if err != nil {
		return
	}

	var req dto.ShipOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	sh, err := h.delivery.ShipOrder(c.Request.Context(), orderID, req.Carrier, req.TrackingNo)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewShipmentResponse(sh))
}

// Deliver 确认送达
// @Summary      确认送达
// @Tags         配送
// @Produce      json
// @Security     BearerAuth
// @Param        orderId path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.ShipmentResponse}
// @Router       /api/v1/delivery/deliver/{orderId} [post]
func (h *DeliveryHandler) Deliver(c *gin.Context) {
	orderID, err := parseUintParam(c, "orderId")
	if err != nil {
		return
	}

	sh, err := h.delivery.DeliverOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewShipmentResponse(sh))
}

// Track 物流查询
// @Summary      物流查询
// @Tags         配送
// @Produce      json
// @Security     BearerAuth
// @Param        orderId path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.ShipmentResponse}
// @Failure      404 {object} response.Response "物流单不存在"
// @Router       /api/v1/delivery/track/{orderId} [get]
func (h *DeliveryHandler) Track(c *gin.Context) {
	orderID, err := parseUintParam(c, "orderId")
	if err != nil {
		return
	}

	sh, err := h.delivery.Track(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewShipmentResponse(sh))
}

// Board 配送看板
// @Summary      待发货物流单
// @Tags         配送
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/delivery/board [get]
func (h *DeliveryHandler) Board(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	shipments, total, err := h.delivery.DispatchBoard(c.Request.Context(), page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.ShipmentResponse, len(shipments))
	for i, sh := range shipments {
		list[i] = dto.NewShipmentResponse(sh)
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}
