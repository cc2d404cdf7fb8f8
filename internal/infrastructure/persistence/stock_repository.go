package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/inventoryops/backend/internal/domain/shared"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// GormStockRepository implements StockRepository using GORM
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository creates a new GormStockRepository
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

// FindByItemAndWarehouse finds the stock row for an item at a warehouse
func (r *GormStockRepository) FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (*stock.Stock, error) {
	var row stock.Stock
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}

// FindByWarehouse returns all stock rows at a warehouse
func (r *GormStockRepository) FindByWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]stock.Stock, error) {
	var rows []stock.Stock
	if err := r.db.WithContext(ctx).
		Where("warehouse_id = ?", warehouseID).
		Order("item_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Save creates or updates a stock row
func (r *GormStockRepository) Save(ctx context.Context, s *stock.Stock) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// SaveWithLock updates a stock row with an optimistic version check. The row
// must still hold the version it was loaded with; otherwise another movement
// landed in between and the caller gets shared.ErrConcurrencyConflict.
func (r *GormStockRepository) SaveWithLock(ctx context.Context, s *stock.Stock) error {
	loadedVersion := s.LoadedVersion()
	s.UpdatedAt = time.Now()

	result := r.db.WithContext(ctx).Model(&stock.Stock{}).
		Where("id = ? AND version = ?", s.ID, loadedVersion).
		Updates(map[string]interface{}{
			"quantity":   s.Quantity,
			"version":    s.Version,
			"updated_at": s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	s.MarkLoaded()

	return nil
}

var _ stock.StockRepository = (*GormStockRepository)(nil)

// GormStockTransactionRepository implements the append-only movement log
// using GORM. Updates and deletes are deliberately absent.
type GormStockTransactionRepository struct {
	db *gorm.DB
}

// NewGormStockTransactionRepository creates a new GormStockTransactionRepository
func NewGormStockTransactionRepository(db *gorm.DB) *GormStockTransactionRepository {
	return &GormStockTransactionRepository{db: db}
}

// Append inserts a movement record
func (r *GormStockTransactionRepository) Append(ctx context.Context, tx *stock.StockTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// FindByItemAndWarehouse returns movements ordered by occurrence, oldest first
func (r *GormStockTransactionRepository) FindByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) ([]stock.StockTransaction, error) {
	var txs []stock.StockTransaction
	if err := r.db.WithContext(ctx).
		Where("item_id = ? AND warehouse_id = ?", itemID, warehouseID).
		Order("occurred_at ASC, created_at ASC").
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// SumByItemAndWarehouse returns the signed sum of all movements for the
// combination. The sum is computed in Go from decimal values rather than in
// SQL so the arithmetic matches the domain exactly.
func (r *GormStockTransactionRepository) SumByItemAndWarehouse(ctx context.Context, itemID, warehouseID uuid.UUID) (decimal.Decimal, error) {
	txs, err := r.FindByItemAndWarehouse(ctx, itemID, warehouseID)
	if err != nil {
		return decimal.Zero, err
	}

	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(txs[i].SignedQuantity())
	}
	return sum, nil
}

var _ stock.StockTransactionRepository = (*GormStockTransactionRepository)(nil)
