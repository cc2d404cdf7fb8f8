package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/inventoryops/backend/internal/domain/billing"
	"github.com/inventoryops/backend/internal/domain/partner"
	"github.com/inventoryops/backend/internal/domain/shared"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// MockInvoiceRepository is a mock of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) SaveWithLock(ctx context.Context, inv *billing.Invoice) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) NextReference(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockWarehouseRepository is a mock of partner.WarehouseRepository
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindFirstByBranch(ctx context.Context, branchID uuid.UUID) (*partner.Warehouse, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Save(ctx context.Context, w *partner.Warehouse) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

// fakePaymentRepo is an in-memory append-only billing.PaymentRepository
type fakePaymentRepo struct {
	payments []billing.Payment
}

func (r *fakePaymentRepo) Append(_ context.Context, p *billing.Payment) error {
	r.payments = append(r.payments, *p)
	return nil
}

func (r *fakePaymentRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]billing.Payment, error) {
	var out []billing.Payment
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeStockRepo is an in-memory stock.StockRepository
type fakeStockRepo struct {
	rows map[string]*stock.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: make(map[string]*stock.Stock)}
}

func (r *fakeStockRepo) key(itemID, warehouseID uuid.UUID) string {
	return itemID.String() + "/" + warehouseID.String()
}

func (r *fakeStockRepo) FindByItemAndWarehouse(_ context.Context, itemID, warehouseID uuid.UUID) (*stock.Stock, error) {
	row, ok := r.rows[r.key(itemID, warehouseID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *row
	cp.MarkLoaded()
	return &cp, nil
}

func (r *fakeStockRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]stock.Stock, error) {
	var out []stock.Stock
	for _, row := range r.rows {
		if row.WarehouseID == warehouseID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) Save(_ context.Context, s *stock.Stock) error {
	cp := *s
	r.rows[r.key(s.ItemID, s.WarehouseID)] = &cp
	return nil
}

func (r *fakeStockRepo) SaveWithLock(_ context.Context, s *stock.Stock) error {
	stored, ok := r.rows[r.key(s.ItemID, s.WarehouseID)]
	if !ok || stored.Version != s.LoadedVersion() {
		return shared.ErrConcurrencyConflict
	}
	cp := *s
	r.rows[r.key(s.ItemID, s.WarehouseID)] = &cp
	s.MarkLoaded()
	return nil
}

func (r *fakeStockRepo) balance(itemID, warehouseID uuid.UUID) decimal.Decimal {
	row, ok := r.rows[r.key(itemID, warehouseID)]
	if !ok {
		return decimal.Zero
	}
	return row.Quantity
}

// fakeMovementLog is an in-memory stock.StockTransactionRepository
type fakeMovementLog struct {
	txs []stock.StockTransaction
}

func (r *fakeMovementLog) Append(_ context.Context, tx *stock.StockTransaction) error {
	r.txs = append(r.txs, *tx)
	return nil
}

func (r *fakeMovementLog) FindByItemAndWarehouse(_ context.Context, itemID, warehouseID uuid.UUID) ([]stock.StockTransaction, error) {
	var out []stock.StockTransaction
	for _, tx := range r.txs {
		if tx.ItemID == itemID && tx.WarehouseID == warehouseID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeMovementLog) SumByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	txs, _ := r.FindByItemAndWarehouse(ctx, itemID, warehouseID)
	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(txs[i].SignedQuantity())
	}
	return sum, nil
}
