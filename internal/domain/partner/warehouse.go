package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// Warehouse is a storage location attached to a branch. Branch and warehouse
// master data management is handled elsewhere; this aggregate exists so stock
// movements and invoice fulfillment can resolve a branch to a warehouse.
type Warehouse struct {
	shared.BaseAggregateRoot
	Name     string    `gorm:"type:varchar(100);not null"`
	BranchID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new warehouse
func NewWarehouse(name string, branchID uuid.UUID) (*Warehouse, error) {
	if name == "" {
		return nil, shared.NewValidationError("Warehouse name cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewValidationError("Branch ID cannot be empty")
	}

	return &Warehouse{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		BranchID:          branchID,
	}, nil
}

// WarehouseRepository provides access to warehouses
type WarehouseRepository interface {
	// FindByID returns a warehouse, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Warehouse, error)
	// FindFirstByBranch returns the oldest warehouse attached to a branch,
	// or shared.ErrNotFound when the branch has none. Branches with several
	// warehouses resolve to the first by creation time.
	FindFirstByBranch(ctx context.Context, branchID uuid.UUID) (*Warehouse, error)
	// Save creates or updates a warehouse
	Save(ctx context.Context, w *Warehouse) error
}
