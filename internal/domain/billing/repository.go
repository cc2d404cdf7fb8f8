package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// InvoiceRepository provides access to invoices
type InvoiceRepository interface {
	// FindByID loads an invoice with its lines, or shared.ErrNotFound
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindAll lists invoices with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)
	// Save creates or updates an invoice and its lines (wholesale replacement)
	Save(ctx context.Context, inv *Invoice) error
	// SaveWithLock saves with an optimistic version check; returns
	// shared.ErrConcurrencyConflict when another writer got there first.
	SaveWithLock(ctx context.Context, inv *Invoice) error
	// Delete removes an invoice and cascades line deletion
	Delete(ctx context.Context, id uuid.UUID) error
	// NextReference generates the next invoice reference (INV-YYYYMM-NNNN)
	NextReference(ctx context.Context) (string, error)
}

// PaymentRepository provides append-only access to payment records
type PaymentRepository interface {
	// Append inserts a payment record; payments are never updated or deleted
	Append(ctx context.Context, p *Payment) error
	// FindByInvoice returns payments for an invoice ordered by PaidAt ascending
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]Payment, error)
}
