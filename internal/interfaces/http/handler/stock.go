package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appstock "github.com/inventoryops/backend/internal/application/stock"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// StockHandler handles stock ledger endpoints
type StockHandler struct {
	BaseHandler
	ledger *appstock.StockLedgerService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(ledger *appstock.StockLedgerService) *StockHandler {
	return &StockHandler{ledger: ledger}
}

type movementRequest struct {
	ItemID      uuid.UUID       `json:"item_id" binding:"required"`
	WarehouseID uuid.UUID       `json:"warehouse_id" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity" binding:"required"`
	Movement    string          `json:"movement" binding:"required,oneof=IN OUT"`
	Reference   string          `json:"reference" binding:"omitempty,max=50"`
}

// ApplyMovement handles POST /api/v1/stock/movements, the manual adjustment
// entry point. Receipts and invoices record their movements internally.
func (h *StockHandler) ApplyMovement(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	balance, err := h.ledger.ApplyMovement(c.Request.Context(), appstock.MovementRequest{
		ItemID:      req.ItemID,
		WarehouseID: req.WarehouseID,
		Quantity:    req.Quantity,
		Movement:    stock.MovementType(req.Movement),
		Reference:   req.Reference,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, balance)
}

// itemAtWarehouse parses the item_id and warehouse_id query parameters
func (h *StockHandler) itemAtWarehouse(c *gin.Context) (itemID, warehouseID uuid.UUID, ok bool) {
	itemID, err := uuid.Parse(c.Query("item_id"))
	if err != nil {
		h.BadRequest(c, "Invalid item ID")
		return uuid.Nil, uuid.Nil, false
	}
	warehouseID, err = uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return uuid.Nil, uuid.Nil, false
	}
	return itemID, warehouseID, true
}

// Balance handles GET /api/v1/stock/balance?item_id=&warehouse_id=
func (h *StockHandler) Balance(c *gin.Context) {
	itemID, warehouseID, ok := h.itemAtWarehouse(c)
	if !ok {
		return
	}

	balance, err := h.ledger.Balance(c.Request.Context(), itemID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// WarehouseBalances handles GET /api/v1/stock/warehouses/:id/balances
func (h *StockHandler) WarehouseBalances(c *gin.Context) {
	warehouseID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	balances, err := h.ledger.BalancesForWarehouse(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balances)
}

// Movements handles GET /api/v1/stock/movements?item_id=&warehouse_id=
func (h *StockHandler) Movements(c *gin.Context) {
	itemID, warehouseID, ok := h.itemAtWarehouse(c)
	if !ok {
		return
	}

	movements, err := h.ledger.Movements(c.Request.Context(), itemID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

// Reconcile handles GET /api/v1/stock/reconcile?item_id=&warehouse_id=
func (h *StockHandler) Reconcile(c *gin.Context) {
	itemID, warehouseID, ok := h.itemAtWarehouse(c)
	if !ok {
		return
	}

	result, err := h.ledger.Reconcile(c.Request.Context(), itemID, warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ReconcileWarehouse handles GET /api/v1/stock/warehouses/:id/reconcile
func (h *StockHandler) ReconcileWarehouse(c *gin.Context) {
	warehouseID, err := parseID(c)
	if err != nil {
		h.BadRequest(c, "Invalid warehouse ID")
		return
	}

	results, err := h.ledger.ReconcileWarehouse(c.Request.Context(), warehouseID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}
