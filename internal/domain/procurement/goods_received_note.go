package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// GrnLine represents a line item on a goods received note
type GrnLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	GrnID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GrnLine) TableName() string {
	return "grn_lines"
}

// NewGrnLine creates a new goods received note line
func NewGrnLine(grnID, itemID uuid.UUID, quantity, unitPrice decimal.Decimal) (*GrnLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}

	now := time.Now()
	return &GrnLine{
		ID:        uuid.New(),
		GrnID:     grnID,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GoodsReceivedNote records goods physically received against a purchase
// order. Created as a draft snapshot with no stock effect; applying it to
// stock happens exactly once, tracked by the one-shot IsReceived flag.
type GoodsReceivedNote struct {
	shared.BaseAggregateRoot
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	Reference       string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	ReceivedDate    time.Time `gorm:"not null"`
	IsReceived      bool      `gorm:"not null;default:false"`
	Lines           []GrnLine `gorm:"foreignKey:GrnID;references:ID"`
}

// TableName returns the table name for GORM
func (GoodsReceivedNote) TableName() string {
	return "goods_received_notes"
}

// NewGoodsReceivedNote creates a new draft goods received note
func NewGoodsReceivedNote(purchaseOrderID uuid.UUID, reference string, receivedDate time.Time) (*GoodsReceivedNote, error) {
	if purchaseOrderID == uuid.Nil {
		return nil, shared.NewValidationError("Purchase order ID cannot be empty")
	}
	if reference == "" {
		return nil, shared.NewValidationError("Reference cannot be empty")
	}
	if len(reference) > 50 {
		return nil, shared.NewValidationError("Reference cannot exceed 50 characters")
	}

	return &GoodsReceivedNote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PurchaseOrderID:   purchaseOrderID,
		Reference:         reference,
		ReceivedDate:      receivedDate,
		Lines:             make([]GrnLine, 0),
	}, nil
}

// AddLine adds a new line to the note. Only allowed while it is a draft.
func (g *GoodsReceivedNote) AddLine(itemID uuid.UUID, quantity, unitPrice decimal.Decimal) (*GrnLine, error) {
	if g.IsReceived {
		return nil, shared.NewInvalidStateError("Cannot add lines to a received note")
	}

	line, err := NewGrnLine(g.ID, itemID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	g.Lines = append(g.Lines, *line)
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	return line, nil
}

// ReplaceLines swaps the full line set for a new one. Only allowed while draft.
func (g *GoodsReceivedNote) ReplaceLines(lines []GrnLine) error {
	if g.IsReceived {
		return shared.NewInvalidStateError("Cannot replace lines on a received note")
	}

	g.Lines = lines
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	return nil
}

// MarkReceived flips the one-shot received flag. A second call fails with
// INVALID_STATE so callers can distinguish a retry from a fresh receipt.
func (g *GoodsReceivedNote) MarkReceived() error {
	if g.IsReceived {
		return shared.NewInvalidStateError("Goods received note has already been received")
	}
	if len(g.Lines) == 0 {
		return shared.NewInvalidStateError("Cannot receive a note without lines")
	}

	g.IsReceived = true
	g.UpdatedAt = time.Now()
	g.IncrementVersion()

	return nil
}

// TotalQuantity returns the sum of line quantities
func (g *GoodsReceivedNote) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, line := range g.Lines {
		total = total.Add(line.Quantity)
	}
	return total
}
