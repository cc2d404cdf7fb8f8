package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appproc "github.com/inventoryops/backend/internal/application/procurement"
)

// GoodsReceiptHandler handles goods received note endpoints
type GoodsReceiptHandler struct {
	BaseHandler
	service *appproc.GoodsReceiptService
}

// NewGoodsReceiptHandler creates a new GoodsReceiptHandler
func NewGoodsReceiptHandler(service *appproc.GoodsReceiptService) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{service: service}
}

type grnLineRequest struct {
	ItemID    uuid.UUID       `json:"item_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type createGrnRequest struct {
	PurchaseOrderID uuid.UUID        `json:"purchase_order_id" binding:"required"`
	Reference       string           `json:"reference" binding:"omitempty,max=50"`
	ReceivedDate    *time.Time       `json:"received_date"`
	Lines           []grnLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type updateGrnRequest struct {
	ReceivedDate *time.Time       `json:"received_date"`
	Lines        []grnLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func toGrnLineInputs(lines []grnLineRequest) []appproc.GrnLineInput {
	inputs := make([]appproc.GrnLineInput, len(lines))
	for i, line := range lines {
		inputs[i] = appproc.GrnLineInput{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return inputs
}

// Create handles POST /api/v1/goods-receipts
func (h *GoodsReceiptHandler) Create(c *gin.Context) {
	var req createGrnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	grn, err := h.service.Create(c.Request.Context(), appproc.CreateGrnRequest{
		PurchaseOrderID: req.PurchaseOrderID,
		Reference:       req.Reference,
		ReceivedDate:    req.ReceivedDate,
		Lines:           toGrnLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, grn)
}

// Get handles GET /api/v1/goods-receipts/:id
func (h *GoodsReceiptHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid goods receipt ID")
		return
	}

	grn, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grn)
}

// ListByOrder handles GET /api/v1/purchase-orders/:id/goods-receipts
func (h *GoodsReceiptHandler) ListByOrder(c *gin.Context) {
	orderID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	grns, err := h.service.ListByPurchaseOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grns)
}

// Update handles PUT /api/v1/goods-receipts/:id
func (h *GoodsReceiptHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid goods receipt ID")
		return
	}

	var req updateGrnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	grn, err := h.service.Update(c.Request.Context(), id, appproc.UpdateGrnRequest{
		ReceivedDate: req.ReceivedDate,
		Lines:        toGrnLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grn)
}

// Receive handles POST /api/v1/goods-receipts/:id/receive
func (h *GoodsReceiptHandler) Receive(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid goods receipt ID")
		return
	}

	result, err := h.service.Receive(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
