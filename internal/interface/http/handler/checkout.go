package handler

import (
	"github.com/gin-gonic/gin"

	appcheckout "github.com/xiebiao/bookshop/internal/application/checkout"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/pkg/response"
)

// CheckoutHandler 结账HTTP处理器
type CheckoutHandler struct {
	orchestrator *appcheckout.Orchestrator
}

// NewCheckoutHandler 创建结账处理器
func NewCheckoutHandler(orchestrator *appcheckout.Orchestrator) *CheckoutHandler {
	return &CheckoutHandler{orchestrator: orchestrator}
}

// Start 发起结账
// @Summary      发起结账
// @Description  快照购物车、创建订单和支付意向,返回网关授权跳转地址。此阶段不扣库存、不清购物车
// @Tags         结账
// @Produce      json
// @Param        X-Guest-Token header string false "游客令牌(未登录时必填)"
// @Success      200 {object} response.Response{data=dto.StartCheckoutResponse}
// @Failure      400 {object} response.Response "购物车为空"
// @Failure      503 {object} response.Response "支付网关不可用"
// @Router       /api/v1/checkout [post]
func (h *CheckoutHandler) Start(c *gin.Context) {
	owner, ok := ownerFromRequest(c)
	if !ok {
		return
	}

	result, err := h.orchestrator.StartCheckout(c.Request.Context(), owner)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.StartCheckoutResponse{
		OrderID:     result.OrderID,
		OrderNo:     result.OrderNo,
		Total:       result.Total,
		TotalPounds: dto.FormatPounds(result.Total),
		Currency:    result.Currency,
		IntentID:    result.IntentID,
		ApprovalURL: result.ApprovalURL,
	})
}

// Complete 完成结账
// @Summary      完成结账
// @Description  买家在网关侧授权后回调:捕获支付、扣减库存、清空购物车。超时返回"处理中",不视为失败
// @Tags         结账
// @Accept       json
// @Produce      json
// @Param        request body dto.CompleteCheckoutRequest true "支付意向ID"
// @Success      200 {object} response.Response{data=dto.CompleteCheckoutResponse}
// @Failure      404 {object} response.Response "支付意向不存在"
// @Failure      409 {object} response.Response "库存不足"
// @Router       /api/v1/checkout/complete [post]
func (h *CheckoutHandler) Complete(c *gin.Context) {
	var req dto.CompleteCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.orchestrator.CompleteCheckout(c.Request.Context(), req.IntentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.CompleteCheckoutResponse{
		OrderID:     result.OrderID,
		OrderNo:     result.OrderNo,
		OrderStatus: result.OrderStatus,
	})
}
