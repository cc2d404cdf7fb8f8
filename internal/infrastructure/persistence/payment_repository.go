package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventoryops/backend/internal/domain/billing"
)

// GormPaymentRepository implements the append-only payment ledger using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Append inserts a payment record; there is no update or delete
func (r *GormPaymentRepository) Append(ctx context.Context, p *billing.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

// FindByInvoice returns payments for an invoice, oldest first
func (r *GormPaymentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var payments []billing.Payment
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("paid_at ASC, created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
