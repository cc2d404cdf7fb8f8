package billing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appstock "github.com/inventoryops/backend/internal/application/stock"
	"github.com/inventoryops/backend/internal/application/txn"
	"github.com/inventoryops/backend/internal/domain/billing"
	"github.com/inventoryops/backend/internal/domain/partner"
	"github.com/inventoryops/backend/internal/domain/shared"
	"github.com/inventoryops/backend/internal/domain/stock"
)

type invoiceFixture struct {
	service       *InvoiceService
	invoiceRepo   *MockInvoiceRepository
	warehouseRepo *MockWarehouseRepository
	stocks        *fakeStockRepo
	movements     *fakeMovementLog
}

func newInvoiceFixture(strictStock, allowNegative bool, defaultTaxRate decimal.Decimal) *invoiceFixture {
	invoiceRepo := new(MockInvoiceRepository)
	warehouseRepo := new(MockWarehouseRepository)
	stocks := newFakeStockRepo()
	movements := &fakeMovementLog{}

	scope := &txn.NoOpTransactionScope{
		Stocks:            stocks,
		StockTransactions: movements,
		Invoices:          invoiceRepo,
		Warehouses:        warehouseRepo,
	}
	ledger := appstock.NewStockLedgerService(scope, stocks, movements, zap.NewNop(), allowNegative)

	return &invoiceFixture{
		service:       NewInvoiceService(scope, invoiceRepo, warehouseRepo, ledger, zap.NewNop(), defaultTaxRate, strictStock),
		invoiceRepo:   invoiceRepo,
		warehouseRepo: warehouseRepo,
		stocks:        stocks,
		movements:     movements,
	}
}

func testWarehouse(t *testing.T, branchID uuid.UUID) *partner.Warehouse {
	t.Helper()
	w, err := partner.NewWarehouse("Main", branchID)
	require.NoError(t, err)
	return w
}

func (f *invoiceFixture) seedStock(t *testing.T, itemID, warehouseID uuid.UUID, quantity int64) {
	t.Helper()
	row, err := stock.NewStock(itemID, warehouseID)
	require.NoError(t, err)
	require.NoError(t, row.Apply(decimal.NewFromInt(quantity), stock.MovementIn, true))
	require.NoError(t, f.stocks.Save(context.Background(), row))
}

func TestCreateInvoiceDeductsStock(t *testing.T) {
	f := newInvoiceFixture(false, true, decimal.NewFromInt(10))
	branchID := uuid.New()
	itemID := uuid.New()
	warehouse := testWarehouse(t, branchID)
	f.seedStock(t, itemID, warehouse.ID, 10)

	f.warehouseRepo.On("FindFirstByBranch", mock.Anything, branchID).Return(warehouse, nil)
	f.invoiceRepo.On("NextReference", mock.Anything).Return("INV-202609-0001", nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	response, err := f.service.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: uuid.New(),
		BranchID:   branchID,
		Lines: []InvoiceLineInput{
			{ItemID: itemID, Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(25)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "INV-202609-0001", response.Reference)
	assert.True(t, response.SubTotal.Equal(decimal.NewFromInt(100)))
	assert.True(t, response.Tax.Equal(decimal.NewFromInt(10)), "default tax rate applies when none given")
	assert.True(t, response.Total.Equal(decimal.NewFromInt(110)))
	assert.False(t, response.IsPaid)

	assert.True(t, f.stocks.balance(itemID, warehouse.ID).Equal(decimal.NewFromInt(6)))
	require.Len(t, f.movements.txs, 1)
	assert.Equal(t, stock.MovementOut, f.movements.txs[0].MovementType)
	assert.Equal(t, "INV-202609-0001", f.movements.txs[0].Reference)
}

func TestCreateInvoiceBestEffortSurvivesDeductionFailure(t *testing.T) {
	f := newInvoiceFixture(false, false, decimal.Zero)
	branchID := uuid.New()
	warehouse := testWarehouse(t, branchID)

	f.warehouseRepo.On("FindFirstByBranch", mock.Anything, branchID).Return(warehouse, nil)
	f.invoiceRepo.On("NextReference", mock.Anything).Return("INV-202609-0002", nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	// No stock on hand and negative balances forbidden: the deduction fails
	// but the invoice stands.
	response, err := f.service.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: uuid.New(),
		BranchID:   branchID,
		Lines: []InvoiceLineInput{
			{ItemID: uuid.New(), Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)
	assert.True(t, response.Total.Equal(decimal.NewFromInt(15)))
	assert.Empty(t, f.movements.txs)
	f.invoiceRepo.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateInvoiceStrictDeductionFailureAborts(t *testing.T) {
	f := newInvoiceFixture(true, false, decimal.Zero)
	branchID := uuid.New()
	warehouse := testWarehouse(t, branchID)

	f.warehouseRepo.On("FindFirstByBranch", mock.Anything, branchID).Return(warehouse, nil)
	f.invoiceRepo.On("NextReference", mock.Anything).Return("INV-202609-0003", nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	_, err := f.service.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: uuid.New(),
		BranchID:   branchID,
		Lines: []InvoiceLineInput{
			{ItemID: uuid.New(), Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(5)},
		},
	})
	assert.True(t, shared.IsValidation(err))
	assert.Empty(t, f.movements.txs)
}

func TestCreateInvoiceBranchWithoutWarehouse(t *testing.T) {
	f := newInvoiceFixture(false, true, decimal.Zero)
	branchID := uuid.New()

	f.warehouseRepo.On("FindFirstByBranch", mock.Anything, branchID).Return(nil, shared.ErrNotFound)

	_, err := f.service.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: uuid.New(),
		BranchID:   branchID,
		Lines: []InvoiceLineInput{
			{ItemID: uuid.New(), Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
		},
	})
	assert.True(t, shared.IsValidation(err))
	f.invoiceRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateInvoiceExplicitTaxRate(t *testing.T) {
	f := newInvoiceFixture(false, true, decimal.NewFromInt(10))
	branchID := uuid.New()
	warehouse := testWarehouse(t, branchID)
	taxRate := decimal.Zero

	f.warehouseRepo.On("FindFirstByBranch", mock.Anything, branchID).Return(warehouse, nil)
	f.invoiceRepo.On("NextReference", mock.Anything).Return("INV-202609-0004", nil)
	f.invoiceRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

	response, err := f.service.Create(context.Background(), CreateInvoiceRequest{
		CustomerID: uuid.New(),
		BranchID:   branchID,
		TaxRate:    &taxRate,
		Lines: []InvoiceLineInput{
			{ItemID: uuid.New(), Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)
	assert.True(t, response.Tax.IsZero())
	assert.True(t, response.Total.Equal(decimal.NewFromInt(100)))
}

func TestMarkAsPaidForceSettles(t *testing.T) {
	f := newInvoiceFixture(false, true, decimal.Zero)
	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), "INV-202609-0005", decimal.Zero)
	require.NoError(t, err)
	_, err = inv.AddLine(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(100))
	require.NoError(t, err)

	f.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)

	response, err := f.service.MarkAsPaid(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.True(t, response.IsPaid)
	assert.True(t, response.PaidAmount.IsZero(), "force-settling records no payment")
}

func TestDeletePaidInvoiceFails(t *testing.T) {
	f := newInvoiceFixture(false, true, decimal.Zero)
	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), "INV-202609-0006", decimal.Zero)
	require.NoError(t, err)
	_, err = inv.AddLine(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, inv.ApplyPayment(decimal.NewFromInt(10)))

	f.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

	err = f.service.Delete(context.Background(), inv.ID)
	assert.True(t, shared.IsInvalidState(err))
	f.invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, inv.ID)
}

func TestUpdateRecomputesTotals(t *testing.T) {
	f := newInvoiceFixture(false, true, decimal.Zero)
	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), "INV-202609-0007", decimal.NewFromInt(10))
	require.NoError(t, err)
	_, err = inv.AddLine(uuid.New(), decimal.NewFromInt(1), decimal.NewFromInt(10))
	require.NoError(t, err)

	f.invoiceRepo.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("SaveWithLock", mock.Anything, inv).Return(nil)

	response, err := f.service.Update(context.Background(), inv.ID, UpdateInvoiceRequest{
		Lines: []InvoiceLineInput{
			{ItemID: uuid.New(), Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(20)},
		},
	})
	require.NoError(t, err)
	assert.True(t, response.SubTotal.Equal(decimal.NewFromInt(60)))
	assert.True(t, response.Tax.Equal(decimal.NewFromInt(6)))
	assert.True(t, response.Total.Equal(decimal.NewFromInt(66)))
}
