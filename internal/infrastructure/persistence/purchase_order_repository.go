package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventoryops/backend/internal/domain/procurement"
	"github.com/inventoryops/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its lines
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	var order procurement.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll lists purchase orders with filtering and pagination
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	var orders []procurement.PurchaseOrder

	query := r.applyFilter(r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}), filter)
	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	query = query.Order("created_at DESC")

	if err := query.Preload("Lines").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Count counts purchase orders matching the filter
func (r *GormPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&procurement.PurchaseOrder{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an order and its lines wholesale
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(order).Error; err != nil {
			return err
		}
		return saveOrderLines(tx, order)
	})
}

// SaveWithLock saves with an optimistic version check. The version read at
// load time must still be current; otherwise another writer won the race and
// the caller gets shared.ErrConcurrencyConflict.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The aggregate incremented its version in memory, possibly more than
		// once; the row must still hold the version it was loaded with.
		loadedVersion := order.LoadedVersion()
		order.UpdatedAt = time.Now()

		result := tx.Model(&procurement.PurchaseOrder{}).
			Where("id = ? AND version = ?", order.ID, loadedVersion).
			Updates(map[string]interface{}{
				"vendor_id":    order.VendorID,
				"warehouse_id": order.WarehouseID,
				"reference":    order.Reference,
				"order_date":   order.OrderDate,
				"is_approved":  order.IsApproved,
				"is_closed":    order.IsClosed,
				"version":      order.Version,
				"updated_at":   order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		order.MarkLoaded()

		return saveOrderLines(tx, order)
	})
}

// Delete removes an order and its lines
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).
			Delete(&procurement.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&procurement.PurchaseOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextReference generates the next order reference (PO-YYYYMM-NNNN)
func (r *GormPurchaseOrderRepository) NextReference(ctx context.Context) (string, error) {
	return nextReference(ctx, r.db, "purchase_orders", "PO")
}

// saveOrderLines replaces the persisted line set with the aggregate's lines
func saveOrderLines(tx *gorm.DB, order *procurement.PurchaseOrder) error {
	lineIDs := make([]uuid.UUID, len(order.Lines))
	for i := range order.Lines {
		lineIDs[i] = order.Lines[i].ID
	}

	query := tx.Where("order_id = ?", order.ID)
	if len(lineIDs) > 0 {
		query = query.Where("id NOT IN ?", lineIDs)
	}
	if err := query.Delete(&procurement.PurchaseOrderLine{}).Error; err != nil {
		return err
	}

	for i := range order.Lines {
		order.Lines[i].OrderID = order.ID
		if err := tx.Save(&order.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// applyFilter applies the filter map to the query
func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case "vendor_id":
			query = query.Where("vendor_id = ?", value)
		case "warehouse_id":
			query = query.Where("warehouse_id = ?", value)
		case "is_approved":
			query = query.Where("is_approved = ?", value)
		case "is_closed":
			query = query.Where("is_closed = ?", value)
		}
	}
	return query
}

var _ procurement.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
