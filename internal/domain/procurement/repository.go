package procurement

import (
	"context"

	"github.com/google/uuid"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// PurchaseOrderRepository provides access to purchase orders
type PurchaseOrderRepository interface {
	// FindByID loads an order with its lines, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindAll lists orders with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)
	// Count counts orders matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	// Save creates or updates an order and its lines; lines removed from the
	// aggregate are deleted (wholesale replacement).
	Save(ctx context.Context, order *PurchaseOrder) error
	// SaveWithLock saves with an optimistic version check; returns
	// shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, order *PurchaseOrder) error
	// Delete removes an order and its lines
	Delete(ctx context.Context, id uuid.UUID) error
	// NextReference generates the next order reference (PO-YYYYMM-NNNN)
	NextReference(ctx context.Context) (string, error)
}

// GoodsReceivedNoteRepository provides access to goods received notes
type GoodsReceivedNoteRepository interface {
	// FindByID loads a note with its lines, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceivedNote, error)
	// FindByPurchaseOrder lists notes recorded against an order
	FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]GoodsReceivedNote, error)
	// Save creates or updates a note and its lines (wholesale replacement)
	Save(ctx context.Context, grn *GoodsReceivedNote) error
	// SaveWithLock saves with an optimistic version check; returns
	// shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, grn *GoodsReceivedNote) error
	// NextReference generates the next note reference (GRN-YYYYMM-NNNN)
	NextReference(ctx context.Context) (string, error)
}
