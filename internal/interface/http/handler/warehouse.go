package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	appwarehouse "github.com/xiebiao/bookshop/internal/application/warehouse"
	"github.com/xiebiao/bookshop/internal/domain/inventory"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// WarehouseHandler 仓库HTTP处理器
// 库存调整、流水查询、打包看板(warehouse角色)
type WarehouseHandler struct {
	warehouse *appwarehouse.Service
}

// NewWarehouseHandler 创建仓库处理器
func NewWarehouseHandler(warehouse *appwarehouse.Service) *WarehouseHandler {
	return &WarehouseHandler{warehouse: warehouse}
}

// AdjustStock 人工库存调整
// @Summary      人工库存调整
// @Description  入库/盘点/回补/报损。每次调整写一条流水,同一事务内落库
// @Tags         仓库
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AdjustStockRequest true "调整内容"
// @Success      200 {object} response.Response{data=dto.AdjustStockResponse}
// @Failure      409 {object} response.Response "库存不足"
// @Router       /api/v1/warehouse/stock/adjust [post]
func (h *WarehouseHandler) AdjustStock(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, 40900, "参数错误: "+err.Error())
		return
	}

	result, err := h.warehouse.AdjustStock(c.Request.Context(), appwarehouse.AdjustStockRequest{
		ProductID:  req.ProductID,
		ChangeType: inventory.ChangeType(req.ChangeType),
		Quantity:   req.Quantity,
		Reason:     req.Reason,
		OperatorID: middleware.MustGetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.AdjustStockResponse{
		ProductID:     result.ProductID,
		PreviousStock: result.PreviousStock,
		NewStock:      result.NewStock,
	})
}

// Ledger 商品库存流水
// @Summary      商品库存流水
// @Tags         仓库
// @Produce      json
// @Security     BearerAuth
// @Param        productId path int true "商品ID"
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/warehouse/ledger/{productId} [get]
func (h *WarehouseHandler) Ledger(c *gin.Context) {
	productID, err := parseUintParam(c, "productId")
	if err != nil {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	entries, total, err := h.warehouse.LedgerHistory(c.Request.Context(), productID, page, pageSize)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.LedgerEntryResponse, len(entries))
	for i, e := range entries {
		list[i] = dto.NewLedgerEntryResponse(e)
	}
	response.SuccessWithPage(c, list, total, page, pageSize)
}

// RecentLedger 最近流水(看板)
// @Summary      最近库存流水
// @Tags         仓库
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "条数(默认50)"
// @Success      200 {object} response.Response
// @Router       /api/v1/warehouse/ledger [get]
func (h *WarehouseHandler) RecentLedger(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.warehouse.RecentLedger(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.LedgerEntryResponse, len(entries))
	for i, e := range entries {
		list[i] = dto.NewLedgerEntryResponse(e)
	}
	response.Success(c, list)
}

// LowStock 低库存商品(看板)
// @Summary      低库存商品
// @Tags         仓库
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/v1/warehouse/low-stock [get]
func (h *WarehouseHandler) LowStock(c *gin.Context) {
	products, err := h.warehouse.LowStockProducts(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	list := make([]*dto.ProductResponse, len(products))
	for i, p := range products {
		list[i] = dto.NewProductResponse(p)
	}
	response.Success(c, list)
}

// PackableOrders 待打包订单(看板)
// @Summary      待打包订单
// @Tags         仓库
// @Produce      json
// @Security     BearerAuth
// @Param        page query int false "页码"
// @Param        page_size query int false "每页数量"
// @Success      200 {object} response.Response{data=response.PageData}
// @Router       /api/v1/warehouse/packable [get]
func (h *WarehouseHandler) PackableOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, total, err := h.warehouse.PackableOrders(c.Request.Context(), page, pageSize)
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

// Pack 打包订单
// @Summary      打包订单
// @Description  创建物流单并把订单推进到已打包
// @Tags         仓库
// @Produce      json
// @Security     BearerAuth
// @Param        orderId path int true "订单ID"
// @Success      200 {object} response.Response{data=dto.ShipmentResponse}
// @Failure      400 {object} response.Response "订单状态不允许打包"
// @Router       /api/v1/warehouse/pack/{orderId} [post]
func (h *WarehouseHandler) Pack(c *gin.Context) {
	orderID, err := parseUintParam(c, "orderId")
	if err != nil {
		return
	}

	sh, err := h.warehouse.PackOrder(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewShipmentResponse(sh))
}
