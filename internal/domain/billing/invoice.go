package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/shared"
)

// PaymentStatus represents the derived payment state of an invoice
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusFullyPaid     PaymentStatus = "FULLY_PAID"
)

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartiallyPaid, PaymentStatusFullyPaid:
		return true
	}
	return false
}

// derivePaymentStatus computes the status as a pure function of paid and total
func derivePaymentStatus(paidAmount, total decimal.Decimal) PaymentStatus {
	switch {
	case paidAmount.GreaterThanOrEqual(total) && total.GreaterThan(decimal.Zero):
		return PaymentStatusFullyPaid
	case paidAmount.GreaterThan(decimal.Zero):
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusUnpaid
	}
}

// InvoiceLine represents a line item on an invoice
type InvoiceLine struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID    uuid.UUID       `gorm:"type:uuid;not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceLine) TableName() string {
	return "invoice_lines"
}

// NewInvoiceLine creates a new invoice line with LineTotal = Quantity * UnitPrice
func NewInvoiceLine(invoiceID, itemID uuid.UUID, quantity, unitPrice decimal.Decimal) (*InvoiceLine, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("Item ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewValidationError("Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewValidationError("Unit price cannot be negative")
	}

	now := time.Now()
	return &InvoiceLine{
		ID:        uuid.New(),
		InvoiceID: invoiceID,
		ItemID:    itemID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		LineTotal: quantity.Mul(unitPrice),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Invoice is the aggregate root for a customer invoice. Lines are fixed at
// creation (stock is deducted then); the invoice stays mutable only while
// unpaid. PaidAmount never exceeds Total, and PaymentStatus is a pure
// function of (PaidAmount, Total) moving monotonically
// UNPAID -> PARTIALLY_PAID -> FULLY_PAID.
type Invoice struct {
	shared.BaseAggregateRoot
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Reference     string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Lines         []InvoiceLine   `gorm:"foreignKey:InvoiceID;references:ID"`
	SubTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	IsPaid        bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new unpaid invoice; taxRate is a percentage (10 = 10%)
func NewInvoice(customerID, branchID uuid.UUID, reference string, taxRate decimal.Decimal) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewValidationError("Customer ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewValidationError("Branch ID cannot be empty")
	}
	if reference == "" {
		return nil, shared.NewValidationError("Reference cannot be empty")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewValidationError("Tax rate cannot be negative")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CustomerID:        customerID,
		BranchID:          branchID,
		Reference:         reference,
		Lines:             make([]InvoiceLine, 0),
		SubTotal:          decimal.Zero,
		TaxRate:           taxRate,
		Tax:               decimal.Zero,
		Total:             decimal.Zero,
		PaidAmount:        decimal.Zero,
		PaymentStatus:     PaymentStatusUnpaid,
	}, nil
}

// AddLine adds a line to the invoice and recomputes totals.
// Only allowed while unpaid.
func (inv *Invoice) AddLine(itemID uuid.UUID, quantity, unitPrice decimal.Decimal) (*InvoiceLine, error) {
	if !inv.CanModify() {
		return nil, shared.NewInvalidStateError("Cannot modify a paid invoice")
	}

	line, err := NewInvoiceLine(inv.ID, itemID, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	inv.Lines = append(inv.Lines, *line)
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return line, nil
}

// ReplaceLines swaps the full line set and recomputes totals.
// Only allowed while unpaid. Stock movements recorded for the previous lines
// are deliberately left untouched.
func (inv *Invoice) ReplaceLines(lines []InvoiceLine, taxRate decimal.Decimal) error {
	if !inv.CanModify() {
		return shared.NewInvalidStateError("Cannot modify a paid invoice")
	}
	if taxRate.IsNegative() {
		return shared.NewValidationError("Tax rate cannot be negative")
	}

	inv.Lines = lines
	inv.TaxRate = taxRate
	inv.recalculateTotals()
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// ApplyPayment records a payment amount against the invoice and recomputes
// the payment status. The amount must not exceed the balance due.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewValidationError("Payment amount must be positive")
	}
	balanceDue := inv.BalanceDue()
	if amount.GreaterThan(balanceDue) {
		return shared.NewValidationError(fmt.Sprintf(
			"Payment amount %s exceeds balance due %s", amount.String(), balanceDue.String()))
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.PaymentStatus = derivePaymentStatus(inv.PaidAmount, inv.Total)
	if inv.PaymentStatus == PaymentStatusFullyPaid {
		inv.IsPaid = true
	}
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	return nil
}

// MarkAsPaid is the administrative override: it force-settles the invoice
// without going through the payment ledger.
func (inv *Invoice) MarkAsPaid() {
	inv.IsPaid = true
	inv.PaymentStatus = PaymentStatusFullyPaid
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// BalanceDue returns Total - PaidAmount
func (inv *Invoice) BalanceDue() decimal.Decimal {
	return inv.Total.Sub(inv.PaidAmount)
}

// CanModify returns true while the invoice may be updated or deleted
func (inv *Invoice) CanModify() bool {
	return !inv.IsPaid
}

// recalculateTotals recomputes subtotal, tax and total from the lines.
// tax = subTotal * taxRate / 100
func (inv *Invoice) recalculateTotals() {
	subTotal := decimal.Zero
	for _, line := range inv.Lines {
		subTotal = subTotal.Add(line.LineTotal)
	}
	inv.SubTotal = subTotal
	inv.Tax = subTotal.Mul(inv.TaxRate).Div(decimal.NewFromInt(100)).Round(4)
	inv.Total = inv.SubTotal.Add(inv.Tax)
}
