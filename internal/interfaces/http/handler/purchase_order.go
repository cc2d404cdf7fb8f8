package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appproc "github.com/inventoryops/backend/internal/application/procurement"
	"github.com/inventoryops/backend/internal/interfaces/http/dto"
)

// PurchaseOrderHandler handles purchase order endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	service *appproc.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service *appproc.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

type purchaseOrderLineRequest struct {
	ItemID          uuid.UUID       `json:"item_id" binding:"required"`
	QuantityOrdered decimal.Decimal `json:"quantity_ordered" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

type createPurchaseOrderRequest struct {
	VendorID    uuid.UUID                  `json:"vendor_id" binding:"required"`
	WarehouseID uuid.UUID                  `json:"warehouse_id" binding:"required"`
	Reference   string                     `json:"reference" binding:"omitempty,max=50"`
	OrderDate   *time.Time                 `json:"order_date"`
	Lines       []purchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type updatePurchaseOrderRequest struct {
	VendorID    uuid.UUID                  `json:"vendor_id"`
	WarehouseID uuid.UUID                  `json:"warehouse_id"`
	OrderDate   *time.Time                 `json:"order_date"`
	Lines       []purchaseOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func toLineInputs(lines []purchaseOrderLineRequest) []appproc.PurchaseOrderLineInput {
	inputs := make([]appproc.PurchaseOrderLineInput, len(lines))
	for i, line := range lines {
		inputs[i] = appproc.PurchaseOrderLineInput{
			ItemID:          line.ItemID,
			QuantityOrdered: line.QuantityOrdered,
			UnitPrice:       line.UnitPrice,
		}
	}
	return inputs
}

// Create handles POST /api/v1/purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req createPurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.service.Create(c.Request.Context(), appproc.CreatePurchaseOrderRequest{
		VendorID:    req.VendorID,
		WarehouseID: req.WarehouseID,
		Reference:   req.Reference,
		OrderDate:   req.OrderDate,
		Lines:       toLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// Get handles GET /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// List handles GET /api/v1/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BindError(c, err)
		return
	}
	if listReq.Page == 0 {
		listReq.Page = 1
	}
	if listReq.PageSize == 0 {
		listReq.PageSize = 20
	}

	filter := appproc.PurchaseOrderListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	}
	if v := c.Query("vendor_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid vendor ID")
			return
		}
		filter.VendorID = &id
	}
	if v := c.Query("warehouse_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse ID")
			return
		}
		filter.WarehouseID = &id
	}
	if v := c.Query("is_approved"); v != "" {
		approved := v == "true"
		filter.IsApproved = &approved
	}
	if v := c.Query("is_closed"); v != "" {
		closed := v == "true"
		filter.IsClosed = &closed
	}

	orders, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// Update handles PUT /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	var req updatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.service.Update(c.Request.Context(), id, appproc.UpdatePurchaseOrderRequest{
		VendorID:    req.VendorID,
		WarehouseID: req.WarehouseID,
		OrderDate:   req.OrderDate,
		Lines:       toLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Approve handles POST /api/v1/purchase-orders/:id/approve
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	order, err := h.service.Approve(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Close handles POST /api/v1/purchase-orders/:id/close
func (h *PurchaseOrderHandler) Close(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	closed, err := h.service.Close(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"closed": closed})
}

// Delete handles DELETE /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
