package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemBalance pairs an item with its running balance at a warehouse
type ItemBalance struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// StockRepository provides access to stock balance rows
type StockRepository interface {
	// FindByItemAndWarehouse returns the stock row for the combination, or
	// shared.ErrNotFound when no movement has ever touched it.
	FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (*Stock, error)
	// FindByWarehouse returns all stock rows at a warehouse
	FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]Stock, error)
	// Save creates or updates a stock row
	Save(ctx context.Context, s *Stock) error
	// SaveWithLock updates a stock row with an optimistic version check;
	// returns shared.ErrConcurrencyConflict when another writer got there
	// first. Balance updates go through this so concurrent movements cannot
	// lose a delta.
	SaveWithLock(ctx context.Context, s *Stock) error
}

// StockTransactionRepository provides append-only access to the movement log
type StockTransactionRepository interface {
	// Append inserts a movement record. There is deliberately no update or
	// delete: the log is immutable.
	Append(ctx context.Context, tx *StockTransaction) error
	// FindByItemAndWarehouse returns movements for the combination ordered by
	// occurrence time ascending.
	FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) ([]StockTransaction, error)
	// SumByItemAndWarehouse returns the signed sum of all movements for the
	// combination, used for reconciliation against the stored balance.
	SumByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (decimal.Decimal, error)
}
