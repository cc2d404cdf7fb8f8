package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/procurement"
)

// PurchaseOrderLineInput is one requested order line
type PurchaseOrderLineInput struct {
	ItemID          uuid.UUID       `json:"item_id"`
	QuantityOrdered decimal.Decimal `json:"quantity_ordered"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest carries the data to create a purchase order.
// Reference is optional; when empty one is generated.
type CreatePurchaseOrderRequest struct {
	VendorID    uuid.UUID                `json:"vendor_id"`
	WarehouseID uuid.UUID                `json:"warehouse_id"`
	Reference   string                   `json:"reference"`
	OrderDate   *time.Time               `json:"order_date"`
	Lines       []PurchaseOrderLineInput `json:"lines"`
}

// UpdatePurchaseOrderRequest replaces header fields and the full line set
type UpdatePurchaseOrderRequest struct {
	VendorID    uuid.UUID                `json:"vendor_id"`
	WarehouseID uuid.UUID                `json:"warehouse_id"`
	OrderDate   *time.Time               `json:"order_date"`
	Lines       []PurchaseOrderLineInput `json:"lines"`
}

// PurchaseOrderListFilter narrows purchase order listings
type PurchaseOrderListFilter struct {
	VendorID    *uuid.UUID
	WarehouseID *uuid.UUID
	IsApproved  *bool
	IsClosed    *bool
	Page        int
	PageSize    int
}

// PurchaseOrderLineResponse is one order line in a response
type PurchaseOrderLineResponse struct {
	ID               uuid.UUID       `json:"id"`
	ItemID           uuid.UUID       `json:"item_id"`
	QuantityOrdered  decimal.Decimal `json:"quantity_ordered"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	ReceivedQuantity decimal.Decimal `json:"received_quantity"`
}

// PurchaseOrderResponse is the full order representation
type PurchaseOrderResponse struct {
	ID          uuid.UUID                   `json:"id"`
	VendorID    uuid.UUID                   `json:"vendor_id"`
	WarehouseID uuid.UUID                   `json:"warehouse_id"`
	Reference   string                      `json:"reference"`
	OrderDate   time.Time                   `json:"order_date"`
	IsApproved  bool                        `json:"is_approved"`
	IsClosed    bool                        `json:"is_closed"`
	TotalAmount decimal.Decimal             `json:"total_amount"`
	Lines       []PurchaseOrderLineResponse `json:"lines"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// ToPurchaseOrderResponse maps an order aggregate to its response
func ToPurchaseOrderResponse(order *procurement.PurchaseOrder) PurchaseOrderResponse {
	lines := make([]PurchaseOrderLineResponse, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = PurchaseOrderLineResponse{
			ID:               line.ID,
			ItemID:           line.ItemID,
			QuantityOrdered:  line.QuantityOrdered,
			UnitPrice:        line.UnitPrice,
			ReceivedQuantity: line.ReceivedQuantity,
		}
	}
	return PurchaseOrderResponse{
		ID:          order.ID,
		VendorID:    order.VendorID,
		WarehouseID: order.WarehouseID,
		Reference:   order.Reference,
		OrderDate:   order.OrderDate,
		IsApproved:  order.IsApproved,
		IsClosed:    order.IsClosed,
		TotalAmount: order.TotalAmount(),
		Lines:       lines,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}

// GrnLineInput is one requested goods receipt line
type GrnLineInput struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateGrnRequest carries the data to create a goods received note.
// Reference is optional; when empty one is generated.
type CreateGrnRequest struct {
	PurchaseOrderID uuid.UUID      `json:"purchase_order_id"`
	Reference       string         `json:"reference"`
	ReceivedDate    *time.Time     `json:"received_date"`
	Lines           []GrnLineInput `json:"lines"`
}

// UpdateGrnRequest replaces the full line set of a draft note
type UpdateGrnRequest struct {
	ReceivedDate *time.Time     `json:"received_date"`
	Lines        []GrnLineInput `json:"lines"`
}

// GrnLineResponse is one note line in a response
type GrnLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// GrnResponse is the full goods received note representation
type GrnResponse struct {
	ID              uuid.UUID         `json:"id"`
	PurchaseOrderID uuid.UUID         `json:"purchase_order_id"`
	Reference       string            `json:"reference"`
	ReceivedDate    time.Time         `json:"received_date"`
	IsReceived      bool              `json:"is_received"`
	Lines           []GrnLineResponse `json:"lines"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ToGrnResponse maps a note aggregate to its response
func ToGrnResponse(grn *procurement.GoodsReceivedNote) GrnResponse {
	lines := make([]GrnLineResponse, len(grn.Lines))
	for i, line := range grn.Lines {
		lines[i] = GrnLineResponse{
			ID:        line.ID,
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	return GrnResponse{
		ID:              grn.ID,
		PurchaseOrderID: grn.PurchaseOrderID,
		Reference:       grn.Reference,
		ReceivedDate:    grn.ReceivedDate,
		IsReceived:      grn.IsReceived,
		Lines:           lines,
		CreatedAt:       grn.CreatedAt,
		UpdatedAt:       grn.UpdatedAt,
	}
}

// ReceiveResultResponse reports the outcome of applying a goods receipt
type ReceiveResultResponse struct {
	Grn            GrnResponse           `json:"grn"`
	Order          PurchaseOrderResponse `json:"order"`
	OrderClosed    bool                  `json:"order_closed"`
	MovementsAdded int                   `json:"movements_added"`
}
