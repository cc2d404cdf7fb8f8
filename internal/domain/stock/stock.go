package stock

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// Stock holds the running balance for one item at one warehouse.
// It is the aggregate root for stock operations; the composite business key
// is ItemID + WarehouseID. The balance is signed: negative balances are a
// deliberate business policy and are only rejected when the caller asks for
// strict accounting.
type Stock struct {
	shared.BaseAggregateRoot
	ItemID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_warehouse,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_warehouse,priority:2"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (Stock) TableName() string {
	return "stocks"
}

// NewStock creates an empty stock row for an item-warehouse combination
func NewStock(itemID, warehouseID uuid.UUID) (*Stock, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Item ID cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewValidationError("Warehouse ID cannot be empty")
	}

	return &Stock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		WarehouseID:       warehouseID,
		Quantity:          decimal.Zero,
	}, nil
}

// Apply adjusts the balance by the signed delta of the movement.
// allowNegative controls whether a resulting negative balance is accepted;
// the default business policy allows it.
func (s *Stock) Apply(quantity decimal.Decimal, movement MovementType, allowNegative bool) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Movement quantity must be positive")
	}
	if !movement.IsValid() {
		return shared.NewValidationError("Invalid movement type")
	}

	newQuantity := s.Quantity.Add(movement.Signed(quantity))
	if !allowNegative && newQuantity.IsNegative() {
		return shared.NewValidationError(fmt.Sprintf(
			"Movement would drive stock negative: balance %s, requested %s out",
			s.Quantity.String(), quantity.String()))
	}

	s.Quantity = newQuantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// IsNegative returns true if the running balance is below zero
func (s *Stock) IsNegative() bool {
	return s.Quantity.IsNegative()
}
