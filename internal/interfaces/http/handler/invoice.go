package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appbilling "github.com/inventoryops/backend/internal/application/billing"
	"github.com/inventoryops/backend/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice and payment endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices *appbilling.InvoiceService
	payments *appbilling.PaymentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoices *appbilling.InvoiceService, payments *appbilling.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, payments: payments}
}

type invoiceLineRequest struct {
	ItemID    uuid.UUID       `json:"item_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type createInvoiceRequest struct {
	CustomerID uuid.UUID            `json:"customer_id" binding:"required"`
	BranchID   uuid.UUID            `json:"branch_id" binding:"required"`
	Reference  string               `json:"reference" binding:"omitempty,max=50"`
	TaxRate    *decimal.Decimal     `json:"tax_rate"`
	Lines      []invoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type updateInvoiceRequest struct {
	TaxRate *decimal.Decimal     `json:"tax_rate"`
	Lines   []invoiceLineRequest `json:"lines" binding:"required,min=1,dive"`
}

type recordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required,max=30"`
}

func toInvoiceLineInputs(lines []invoiceLineRequest) []appbilling.InvoiceLineInput {
	inputs := make([]appbilling.InvoiceLineInput, len(lines))
	for i, line := range lines {
		inputs[i] = appbilling.InvoiceLineInput{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return inputs
}

// Create handles POST /api/v1/invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	inv, err := h.invoices.Create(c.Request.Context(), appbilling.CreateInvoiceRequest{
		CustomerID: req.CustomerID,
		BranchID:   req.BranchID,
		Reference:  req.Reference,
		TaxRate:    req.TaxRate,
		Lines:      toInvoiceLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, inv)
}

// Get handles GET /api/v1/invoices/:id
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoices.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(c *gin.Context) {
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

	filter := appbilling.InvoiceListFilter{
		Page:     listReq.Page,
		PageSize: listReq.PageSize,
	}
	if v := c.Query("customer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid customer ID")
			return
		}
		filter.CustomerID = &id
	}
	if v := c.Query("branch_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			h.BadRequest(c, "Invalid branch ID")
			return
		}
		filter.BranchID = &id
	}
	if v := c.Query("payment_status"); v != "" {
		filter.PaymentStatus = &v
	}

	invoices, err := h.invoices.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoices)
}

// Update handles PUT /api/v1/invoices/:id
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	inv, err := h.invoices.Update(c.Request.Context(), id, appbilling.UpdateInvoiceRequest{
		TaxRate: req.TaxRate,
		Lines:   toInvoiceLineInputs(req.Lines),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// MarkAsPaid handles POST /api/v1/invoices/:id/mark-paid
func (h *InvoiceHandler) MarkAsPaid(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	inv, err := h.invoices.MarkAsPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, inv)
}

// Delete handles DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RecordPayment handles POST /api/v1/invoices/:id/payments
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.payments.RecordPayment(c.Request.Context(), id, appbilling.RecordPaymentRequest{
		Amount: req.Amount,
		Method: req.Method,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// PaymentDetails handles GET /api/v1/invoices/:id/payments
func (h *InvoiceHandler) PaymentDetails(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	details, err := h.payments.GetPaymentDetails(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}
