package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// Payment is an immutable record of money applied to an invoice.
// Once created it is never modified; reversals are out of scope.
type Payment struct {
	shared.BaseEntity
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method    string          `gorm:"type:varchar(30);not null"`
	PaidAt    time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a new payment record with a server-side timestamp
func NewPayment(invoiceID uuid.UUID, amount decimal.Decimal, method string) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewValidationError("Invoice ID cannot be empty")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if method == "" {
		return nil, shared.NewValidationError("Payment method cannot be empty")
	}

	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		InvoiceID:  invoiceID,
		Amount:     amount,
		Method:     method,
		PaidAt:     time.Now(),
	}, nil
}
