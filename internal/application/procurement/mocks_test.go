package procurement

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/inventoryops/backend/internal/domain/procurement"
	"github.com/inventoryops/backend/internal/domain/shared"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// MockPurchaseOrderRepository is a mock of procurement.PurchaseOrderRepository
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]procurement.PurchaseOrder, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Save(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *procurement.PurchaseOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) NextReference(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockGoodsReceivedNoteRepository is a mock of procurement.GoodsReceivedNoteRepository
type MockGoodsReceivedNoteRepository struct {
	mock.Mock
}

func (m *MockGoodsReceivedNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.GoodsReceivedNote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*procurement.GoodsReceivedNote), args.Error(1)
}

func (m *MockGoodsReceivedNoteRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.GoodsReceivedNote, error) {
	args := m.Called(ctx, purchaseOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]procurement.GoodsReceivedNote), args.Error(1)
}

func (m *MockGoodsReceivedNoteRepository) Save(ctx context.Context, grn *procurement.GoodsReceivedNote) error {
	args := m.Called(ctx, grn)
	return args.Error(0)
}

func (m *MockGoodsReceivedNoteRepository) SaveWithLock(ctx context.Context, grn *procurement.GoodsReceivedNote) error {
	args := m.Called(ctx, grn)
	return args.Error(0)
}

func (m *MockGoodsReceivedNoteRepository) NextReference(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// fakeStockRepo is an in-memory stock.StockRepository used where the receiving
// flow needs real balance arithmetic rather than mock expectations.
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
