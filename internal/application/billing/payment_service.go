package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inventoryops/backend/internal/application/txn"
	"github.com/inventoryops/backend/internal/domain/billing"
)

// PaymentService records payments against invoices and serves the
// reconciliation view. Payment records are append-only; the invoice's paid
// amount and status are the only mutable side.
type PaymentService struct {
	scope       txn.TransactionScope
	invoiceRepo billing.InvoiceRepository
	paymentRepo billing.PaymentRepository
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	scope txn.TransactionScope,
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		scope:       scope,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		logger:      logger,
	}
}

// RecordPayment applies one payment to an invoice: the amount is validated
// against the balance due, a payment record is appended, and the invoice's
// paid amount and status advance. Record and invoice commit together; the
// optimistic version check on the invoice serializes concurrent payments so
// two racing calls can never jointly overpay.
func (s *PaymentService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest) (*RecordPaymentResponse, error) {
	var result *RecordPaymentResponse

	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}

		if err := inv.ApplyPayment(req.Amount); err != nil {
			return err
		}

		payment, err := billing.NewPayment(inv.ID, req.Amount, req.Method)
		if err != nil {
			return err
		}

		if err := repos.PaymentRepo().Append(ctx, payment); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, inv); err != nil {
			return err
		}

		result = &RecordPaymentResponse{
			Payment: ToPaymentResponse(payment),
			Invoice: ToInvoiceResponse(inv),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", result.Payment.Amount.String()),
		zap.String("method", result.Payment.Method),
		zap.String("payment_status", result.Invoice.PaymentStatus))

	return result, nil
}

// GetPaymentDetails returns the invoice together with its payment history,
// oldest payment first.
func (s *PaymentService) GetPaymentDetails(ctx context.Context, invoiceID uuid.UUID) (*PaymentDetailsResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	responses := make([]PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = ToPaymentResponse(&payments[i])
	}

	return &PaymentDetailsResponse{
		Invoice:  ToInvoiceResponse(inv),
		Payments: responses,
	}, nil
}
