package handler

import (
	"github.com/gin-gonic/gin"

	apppayment "github.com/xiebiao/bookshop/internal/application/payment"
	"github.com/xiebiao/bookshop/pkg/response"
)

// PaymentHandler 支付HTTP处理器
// Webhook入口与运营对账入口
type PaymentHandler struct {
	coordinator *apppayment.Coordinator
}

// NewPaymentHandler 创建支付处理器
func NewPaymentHandler(coordinator *apppayment.Coordinator) *PaymentHandler {
	return &PaymentHandler{coordinator: coordinator}
}

// webhookEvent 网关Webhook通知体(只取需要的字段)
type webhookEvent struct {
	EventType string `json:"event_type" binding:"required"`
	Resource  struct {
		ID string `json:"id" binding:"required"` // 意向ID
	} `json:"resource" binding:"required"`
}

// Webhook 网关Webhook回调
// @Summary      支付网关Webhook
// @Description  接收网关的支付完成通知并触发捕获。重复通知幂等处理
// @Tags         支付
// @Accept       json
// @Produce      json
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "支付意向不存在"
// @Router       /api/v1/payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	var event webhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	// 只处理买家授权完成事件,其余通知确认收到即可
	if event.EventType != "CHECKOUT.ORDER.APPROVED" {
		response.Success(c, nil)
		return
	}

	result, err := h.coordinator.Capture(c.Request.Context(), event.Resource.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"order_no":       result.OrderNo,
		"order_status":   result.OrderStatus.String(),
		"payment_status": result.PaymentStatus.String(),
	})
}

// Reconcile 按订单对账(运营)
// @Summary      订单对账
// @Description  核对订单的本地支付记录与网关侧状态,补齐丢失的捕获侧效应
// @Tags         支付
// @Produce      json
// @Security     BearerAuth
// @Param        orderId path int true "订单ID"
// @Success      200 {object} response.Response
// @Failure      404 {object} response.Response "无可对账的支付记录"
// @Router       /api/v1/payments/reconcile/{orderId} [post]
func (h *PaymentHandler) Reconcile(c *gin.Context) {
	orderID, err := parseUintParam(c, "orderId")
	if err != nil {
		return
	}

	result, err := h.coordinator.ReconcileByOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"order_no":       result.OrderNo,
		"order_status":   result.OrderStatus.String(),
		"payment_status": result.PaymentStatus.String(),
		"transaction_id": result.TransactionID,
	})
}
