package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// MovementType represents the direction of a stock movement
type MovementType string

const (
	// MovementIn represents stock entering a warehouse (goods receipt)
	MovementIn MovementType = "IN"
	// MovementOut represents stock leaving a warehouse (invoice issuance)
	MovementOut MovementType = "OUT"
)

// String returns the string representation of MovementType
func (t MovementType) String() string {
	return string(t)
}

// IsValid returns true if the movement type is valid
func (t MovementType) IsValid() bool {
	return t == MovementIn || t == MovementOut
}

// Signed returns the quantity with the sign implied by the direction
func (t MovementType) Signed(quantity decimal.Decimal) decimal.Decimal {
	if t == MovementOut {
		return quantity.Neg()
	}
	return quantity
}

// StockTransaction is an immutable record of a single stock movement.
// Rows are append-only: corrections are made with new movements, never by
// editing or deleting history. The stored quantity is an unsigned magnitude;
// direction comes from MovementType.
type StockTransaction struct {
	shared.BaseEntity
	ItemID       uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_item_warehouse,priority:1"`
	WarehouseID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_tx_item_warehouse,priority:2"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MovementType MovementType    `gorm:"type:varchar(10);not null"`
	Reference    string          `gorm:"type:varchar(100)"`
	OccurredAt   time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// NewStockTransaction creates a new movement record
func NewStockTransaction(itemID, warehouseID uuid.UUID, quantity decimal.Decimal, movement MovementType, reference string) (*StockTransaction, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Item ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("Warehouse ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Movement quantity must be positive")
	}
	if !movement.IsValid() {
		return nil, shared.NewValidationError("Invalid movement type")
	}

	return &StockTransaction{
		BaseEntity:   shared.NewBaseEntity(),
		ItemID:       itemID,
		WarehouseID:  warehouseID,
		Quantity:     quantity,
		MovementType: movement,
		Reference:    reference,
		OccurredAt:   time.Now(),
	}, nil
}

// SignedQuantity returns the quantity with sign based on direction
func (t *StockTransaction) SignedQuantity() decimal.Decimal {
	return t.MovementType.Signed(t.Quantity)
}
