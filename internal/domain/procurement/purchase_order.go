package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// PurchaseOrderLine represents a line item in a purchase order.
// ReceivedQuantity only ever grows; there is intentionally no cap at the
// ordered quantity, matching the established receiving rules.
type PurchaseOrderLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID           uuid.UUID       `gorm:"type:uuid;not null"`
	QuantityOrdered  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ReceivedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// NewPurchaseOrderLine creates a new purchase order line
func NewPurchaseOrderLine(orderID, itemID uuid.UUID, quantityOrdered, unitPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Item ID cannot be empty")
	}
	if quantityOrdered.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Ordered quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}

	now := time.Now()
	return &PurchaseOrderLine{
		ID:               uuid.New(),
		OrderID:          orderID,
		ItemID:           itemID,
		QuantityOrdered:  quantityOrdered,
		UnitPrice:        unitPrice,
		ReceivedQuantity: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// AddReceivedQuantity adds to the received quantity. Receipts beyond the
// ordered quantity are accepted; the quantity is monotonically non-decreasing.
func (l *PurchaseOrderLine) AddReceivedQuantity(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Receive quantity must be positive")
	}

	l.ReceivedQuantity = l.ReceivedQuantity.Add(quantity)
	l.UpdatedAt = time.Now()

	return nil
}

// IsFullyReceived returns true if the received quantity covers the order
func (l *PurchaseOrderLine) IsFullyReceived() bool {
	return l.ReceivedQuantity.GreaterThanOrEqual(l.QuantityOrdered)
}

// RemainingQuantity returns the quantity still to be received (never negative)
func (l *PurchaseOrderLine) RemainingQuantity() decimal.Decimal {
	remaining := l.QuantityOrdered.Sub(l.ReceivedQuantity)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// Amount returns QuantityOrdered * UnitPrice
func (l *PurchaseOrderLine) Amount() decimal.Decimal {
	return l.QuantityOrdered.Mul(l.UnitPrice)
}

// PurchaseOrder is the aggregate root for a commitment to buy from a vendor.
// Lifecycle: created as draft, approved (lines become immutable), then
// incrementally fulfilled by goods receipts until closed. Closing happens
// automatically when every line is fully received, or manually as an
// administrative override that does not check receipt progress.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	VendorID    uuid.UUID           `gorm:"type:uuid;not null;index"`
	WarehouseID uuid.UUID           `gorm:"type:uuid;not null;index"`
	Reference   string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderDate   time.Time           `gorm:"not null"`
	IsApproved  bool                `gorm:"not null;default:false"`
	IsClosed    bool                `gorm:"not null;default:false"`
	Lines       []PurchaseOrderLine `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// NewPurchaseOrder creates a new draft purchase order
func NewPurchaseOrder(vendorID, warehouseID uuid.UUID, reference string, orderDate time.Time) (*PurchaseOrder, error) {
	if vendorID == uuid.Nil {
		return nil, shared.NewValidationError("Vendor ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("Warehouse ID cannot be empty")
	}
	if reference == "" {
		return nil, shared.NewValidationError("Reference cannot be empty")
	}
	if len(reference) > 50 {
		return nil, shared.NewValidationError("Reference cannot exceed 50 characters")
	}

	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		VendorID:          vendorID,
		WarehouseID:       warehouseID,
		Reference:         reference,
		OrderDate:         orderDate,
		Lines:             make([]PurchaseOrderLine, 0),
	}, nil
}

// AddLine adds a new line to the order. Only allowed while the order is a draft.
func (o *PurchaseOrder) AddLine(itemID uuid.UUID, quantityOrdered, unitPrice decimal.Decimal) (*PurchaseOrderLine, error) {
	if !o.CanModify() {
		return nil, shared.NewInvalidStateError("Cannot add lines to an approved or closed order")
	}

	line, err := NewPurchaseOrderLine(o.ID, itemID, quantityOrdered, unitPrice)
	if err != nil {
		return nil, err
	}

	o.Lines = append(o.Lines, *line)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return line, nil
}

// ReplaceLines swaps the full line set for a new one (delete and recreate).
// Only allowed while the order is a draft.
func (o *PurchaseOrder) ReplaceLines(lines []PurchaseOrderLine) error {
	if !o.CanModify() {
		return shared.NewInvalidStateError("Cannot replace lines on an approved or closed order")
	}

	o.Lines = lines
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// Approve marks the order approved, freezing its lines. Approving an already
// approved order is a no-op rather than an error; callers may retry safely.
func (o *PurchaseOrder) Approve() error {
	if o.IsClosed {
		return shared.NewInvalidStateError("Cannot approve a closed order")
	}
	if o.IsApproved {
		return nil
	}
	if len(o.Lines) == 0 {
		return shared.NewInvalidStateError("Cannot approve an order without lines")
	}

	o.IsApproved = true
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// Close unconditionally closes the order. This is the manual administrative
// override; it does not verify that every line has been fully received. The
// automatic closure path runs through CloseIfFullyReceived during receipt.
func (o *PurchaseOrder) Close() {
	o.IsClosed = true
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// CloseIfFullyReceived closes the order when every line's received quantity
// covers the ordered quantity. Returns true if the order was closed.
func (o *PurchaseOrder) CloseIfFullyReceived() bool {
	if o.IsClosed || !o.IsFullyReceived() {
		return false
	}
	o.Close()
	return true
}

// AddReceivedQuantity accumulates a received quantity on the line matching
// the item. It goes through the aggregate rather than the line directly so
// the version bump makes concurrent receipts against the same order visible
// to the optimistic lock.
func (o *PurchaseOrder) AddReceivedQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	line := o.GetLineByItem(itemID)
	if line == nil {
		return shared.NewNotFoundError("Item not found on purchase order")
	}
	if err := line.AddReceivedQuantity(quantity); err != nil {
		return err
	}

	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// IsFullyReceived returns true if every line has been fully received
func (o *PurchaseOrder) IsFullyReceived() bool {
	for _, line := range o.Lines {
		if !line.IsFullyReceived() {
			return false
		}
	}
	return len(o.Lines) > 0
}

// CanModify returns true while header and lines may still change
func (o *PurchaseOrder) CanModify() bool {
	return !o.IsApproved && !o.IsClosed
}

// GetLineByItem returns the line for an item, or nil when absent
func (o *PurchaseOrder) GetLineByItem(itemID uuid.UUID) *PurchaseOrderLine {
	for idx := range o.Lines {
		if o.Lines[idx].ItemID == itemID {
			return &o.Lines[idx]
		}
	}
	return nil
}

// TotalAmount returns the sum of all line amounts
func (o *PurchaseOrder) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Amount())
	}
	return total
}
