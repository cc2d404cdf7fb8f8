package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appstock "github.com/inventoryops/backend/internal/application/stock"
	"github.com/inventoryops/backend/internal/application/txn"
	"github.com/inventoryops/backend/internal/domain/billing"
	"github.com/inventoryops/backend/internal/domain/partner"
	"github.com/inventoryops/backend/internal/domain/shared"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// InvoiceService creates and maintains customer invoices. Invoice creation
// deducts stock at the branch's warehouse; whether that deduction can fail
// the invoice depends on the strict flag.
type InvoiceService struct {
	scope          txn.TransactionScope
	invoiceRepo    billing.InvoiceRepository
	warehouseRepo  partner.WarehouseRepository
	ledger         *appstock.StockLedgerService
	logger         *zap.Logger
	defaultTaxRate decimal.Decimal
	strictStock    bool
}

// NewInvoiceService creates a new InvoiceService.
// When strictStock is true the stock deduction joins the invoice transaction
// and a failed deduction rolls the invoice back. When false (the default
// policy) the invoice commits first and deduction failures are logged as
// consistency warnings.
func NewInvoiceService(
	scope txn.TransactionScope,
	invoiceRepo billing.InvoiceRepository,
	warehouseRepo partner.WarehouseRepository,
	ledger *appstock.StockLedgerService,
	logger *zap.Logger,
	defaultTaxRate decimal.Decimal,
	strictStock bool,
) *InvoiceService {
	return &InvoiceService{
		scope:          scope,
		invoiceRepo:    invoiceRepo,
		warehouseRepo:  warehouseRepo,
		ledger:         ledger,
		logger:         logger,
		defaultTaxRate: defaultTaxRate,
		strictStock:    strictStock,
	}
}

// Create issues a new invoice: totals are computed from the lines, the
// invoice is persisted unpaid, and an outbound stock movement is recorded
// per line at the branch's warehouse with the invoice reference.
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("Invoice must have at least one line")
	}

	warehouse, err := s.warehouseRepo.FindFirstByBranch(ctx, req.BranchID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.NewValidationError("Branch has no warehouse to fulfill from")
		}
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		reference, err = s.invoiceRepo.NextReference(ctx)
		if err != nil {
			return nil, err
		}
	}

	taxRate := s.defaultTaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	inv, err := billing.NewInvoice(req.CustomerID, req.BranchID, reference, taxRate)
	if err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if _, err := inv.AddLine(line.ItemID, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}

	if s.strictStock {
		err = s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
			if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
				return err
			}
			return s.deductStockTx(ctx, repos, inv, warehouse.ID)
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := s.invoiceRepo.Save(ctx, inv); err != nil {
			return nil, err
		}
		s.deductStockBestEffort(ctx, inv, warehouse.ID)
	}

	s.logger.Info("invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("reference", inv.Reference),
		zap.String("total", inv.Total.String()),
		zap.String("warehouse_id", warehouse.ID.String()))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// deductStockTx records one outbound movement per invoice line inside the
// caller's transaction. Any failure aborts the whole unit.
func (s *InvoiceService) deductStockTx(ctx context.Context, repos txn.TransactionalRepositories, inv *billing.Invoice, warehouseID uuid.UUID) error {
	for _, line := range inv.Lines {
		if _, err := s.ledger.ApplyMovementTx(ctx, repos, appstock.MovementRequest{
			ItemID:      line.ItemID,
			WarehouseID: warehouseID,
			Quantity:    line.Quantity,
			Movement:    stock.MovementOut,
			Reference:   inv.Reference,
		}); err != nil {
			return err
		}
	}
	return nil
}

// deductStockBestEffort records outbound movements after the invoice has
// committed. A line that cannot be deducted leaves the invoice standing and
// the ledger short; the warning carries enough to fix the books by hand.
func (s *InvoiceService) deductStockBestEffort(ctx context.Context, inv *billing.Invoice, warehouseID uuid.UUID) {
	for _, line := range inv.Lines {
		_, err := s.ledger.ApplyMovement(ctx, appstock.MovementRequest{
			ItemID:      line.ItemID,
			WarehouseID: warehouseID,
			Quantity:    line.Quantity,
			Movement:    stock.MovementOut,
			Reference:   inv.Reference,
		})
		if err != nil {
			s.logger.Warn("invoice stock deduction failed, invoice stands",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("reference", inv.Reference),
				zap.String("item_id", line.ItemID.String()),
				zap.String("warehouse_id", warehouseID.String()),
				zap.String("quantity", line.Quantity.String()),
				zap.Error(err))
		}
	}
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List retrieves invoices with filtering and pagination
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.BranchID != nil {
		domainFilter.Filters["branch_id"] = *filter.BranchID
	}
	if filter.PaymentStatus != nil {
		domainFilter.Filters["payment_status"] = *filter.PaymentStatus
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		responses[i] = ToInvoiceResponse(&invoices[i])
	}
	return responses, nil
}

// Update replaces the line set of an unpaid invoice and recomputes totals.
// Stock movements recorded at creation are not reversed or re-applied.
func (s *InvoiceService) Update(ctx context.Context, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("Invoice must have at least one line")
	}

	taxRate := inv.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	lines := make([]billing.InvoiceLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		line, err := billing.NewInvoiceLine(inv.ID, input.ItemID, input.Quantity, input.UnitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	if err := inv.ReplaceLines(lines, taxRate); err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// MarkAsPaid force-settles an invoice without payment records. The paid
// amount is left as is, so the payment history still tells the true story.
func (s *InvoiceService) MarkAsPaid(ctx context.Context, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	inv.MarkAsPaid()
	if err := s.invoiceRepo.SaveWithLock(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Warn("invoice force-settled",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("reference", inv.Reference),
		zap.String("paid_amount", inv.PaidAmount.String()),
		zap.String("total", inv.Total.String()))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Delete removes an unpaid invoice. Stock deducted at creation is not
// returned; a manual inbound adjustment is the correction path.
func (s *InvoiceService) Delete(ctx context.Context, invoiceID uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}
	if !inv.CanModify() {
		return shared.NewInvalidStateError("Cannot delete a paid invoice")
	}
	return s.invoiceRepo.Delete(ctx, invoiceID)
}
