package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventoryops/backend/internal/domain/billing"
	"github.com/inventoryops/backend/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice with its lines
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var inv billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &inv, nil
}

// FindAll lists invoices with filtering and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	var invoices []billing.Invoice

	query := r.db.WithContext(ctx).Model(&billing.Invoice{})
	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		}
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	if err := query.Order("created_at DESC").Preload("Lines").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice and its lines wholesale
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(inv).Error; err != nil {
			return err
		}
		return saveInvoiceLines(tx, inv)
	})
}

// SaveWithLock saves with an optimistic version check; racing writers on the
// same invoice get shared.ErrConcurrencyConflict. Concurrent payment
// recording relies on this to keep PaidAmount within Total.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loadedVersion := inv.LoadedVersion()
		inv.UpdatedAt = time.Now()

		result := tx.Model(&billing.Invoice{}).
			Where("id = ? AND version = ?", inv.ID, loadedVersion).
			Updates(map[string]interface{}{
				"customer_id":    inv.CustomerID,
				"branch_id":      inv.BranchID,
				"reference":      inv.Reference,
				"sub_total":      inv.SubTotal,
				"tax_rate":       inv.TaxRate,
				"tax":            inv.Tax,
				"total":          inv.Total,
				"paid_amount":    inv.PaidAmount,
				"payment_status": inv.PaymentStatus,
				"is_paid":        inv.IsPaid,
				"version":        inv.Version,
				"updated_at":     inv.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		inv.MarkLoaded()

		return saveInvoiceLines(tx, inv)
	})
}

// Delete removes an invoice and its lines
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).
			Delete(&billing.InvoiceLine{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&billing.Invoice{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// NextReference generates the next invoice reference (INV-YYYYMM-NNNN)
func (r *GormInvoiceRepository) NextReference(ctx context.Context) (string, error) {
	return nextReference(ctx, r.db, "invoices", "INV")
}

// saveInvoiceLines replaces the persisted line set with the aggregate's lines
func saveInvoiceLines(tx *gorm.DB, inv *billing.Invoice) error {
	lineIDs := make([]uuid.UUID, len(inv.Lines))
	for i := range inv.Lines {
		lineIDs[i] = inv.Lines[i].ID
	}

	query := tx.Where("invoice_id = ?", inv.ID)
	if len(lineIDs) > 0 {
		query = query.Where("id NOT IN ?", lineIDs)
	}
	if err := query.Delete(&billing.InvoiceLine{}).Error; err != nil {
		return err
	}

	for i := range inv.Lines {
		inv.Lines[i].InvoiceID = inv.ID
		if err := tx.Save(&inv.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
