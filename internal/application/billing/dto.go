package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/billing"
)

// InvoiceLineInput is one requested invoice line
type InvoiceLineInput struct {
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateInvoiceRequest carries the data to create an invoice.
// Reference is optional; when empty one is generated. TaxRate is a
// percentage; when nil the configured default applies.
type CreateInvoiceRequest struct {
	CustomerID uuid.UUID          `json:"customer_id"`
	BranchID   uuid.UUID          `json:"branch_id"`
	Reference  string             `json:"reference"`
	TaxRate    *decimal.Decimal   `json:"tax_rate"`
	Lines      []InvoiceLineInput `json:"lines"`
}

// UpdateInvoiceRequest replaces the full line set of an unpaid invoice
type UpdateInvoiceRequest struct {
	TaxRate *decimal.Decimal   `json:"tax_rate"`
	Lines   []InvoiceLineInput `json:"lines"`
}

// InvoiceListFilter narrows invoice listings
type InvoiceListFilter struct {
	CustomerID    *uuid.UUID
	BranchID      *uuid.UUID
	PaymentStatus *string
	Page          int
	PageSize      int
}

// InvoiceLineResponse is one invoice line in a response
type InvoiceLineResponse struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    uuid.UUID       `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceResponse is the full invoice representation
type InvoiceResponse struct {
	ID            uuid.UUID             `json:"id"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	BranchID      uuid.UUID             `json:"branch_id"`
	Reference     string                `json:"reference"`
	Lines         []InvoiceLineResponse `json:"lines"`
	SubTotal      decimal.Decimal       `json:"sub_total"`
	TaxRate       decimal.Decimal       `json:"tax_rate"`
	Tax           decimal.Decimal       `json:"tax"`
	Total         decimal.Decimal       `json:"total"`
	PaidAmount    decimal.Decimal       `json:"paid_amount"`
	BalanceDue    decimal.Decimal       `json:"balance_due"`
	PaymentStatus string                `json:"payment_status"`
	IsPaid        bool                  `json:"is_paid"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ToInvoiceResponse maps an invoice aggregate to its response
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, len(inv.Lines))
	for i, line := range inv.Lines {
		lines[i] = InvoiceLineResponse{
			ID:        line.ID,
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		}
	}
	return InvoiceResponse{
		ID:            inv.ID,
		CustomerID:    inv.CustomerID,
		BranchID:      inv.BranchID,
		Reference:     inv.Reference,
		Lines:         lines,
		SubTotal:      inv.SubTotal,
		TaxRate:       inv.TaxRate,
		Tax:           inv.Tax,
		Total:         inv.Total,
		PaidAmount:    inv.PaidAmount,
		BalanceDue:    inv.BalanceDue(),
		PaymentStatus: inv.PaymentStatus.String(),
		IsPaid:        inv.IsPaid,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// RecordPaymentRequest carries one payment against an invoice
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

// PaymentResponse is one payment record
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	PaidAt    time.Time       `json:"paid_at"`
}

// ToPaymentResponse maps a payment record to its response
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		Method:    p.Method,
		PaidAt:    p.PaidAt,
	}
}

// RecordPaymentResponse reports the payment together with the updated invoice
type RecordPaymentResponse struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

// PaymentDetailsResponse is the reconciliation view of an invoice: the
// invoice itself plus its full payment history, oldest first.
type PaymentDetailsResponse struct {
	Invoice  InvoiceResponse   `json:"invoice"`
	Payments []PaymentResponse `json:"payments"`
}
