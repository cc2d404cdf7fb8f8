package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/inventoryops/backend/internal/application/txn"
	"github.com/inventoryops/backend/internal/domain/billing"
	"github.com/inventoryops/backend/internal/domain/partner"
	"github.com/inventoryops/backend/internal/domain/procurement"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// GormTransactionScope implements txn.TransactionScope on a GORM connection.
// Every repository handed to the callback is bound to the same database
// transaction, so a returned error rolls back all of their writes.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn inside a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos txn.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// gormRepositories exposes repositories bound to one open transaction
type gormRepositories struct {
	tx *gorm.DB
}

func (r *gormRepositories) StockRepo() stock.StockRepository {
	return NewGormStockRepository(r.tx)
}

func (r *gormRepositories) StockTransactionRepo() stock.StockTransactionRepository {
	return NewGormStockTransactionRepository(r.tx)
}

func (r *gormRepositories) PurchaseOrderRepo() procurement.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormRepositories) GoodsReceivedNoteRepo() procurement.GoodsReceivedNoteRepository {
	return NewGormGoodsReceivedNoteRepository(r.tx)
}

func (r *gormRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

func (r *gormRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

func (r *gormRepositories) WarehouseRepo() partner.WarehouseRepository {
	return NewGormWarehouseRepository(r.tx)
}

var _ txn.TransactionScope = (*GormTransactionScope)(nil)
var _ txn.TransactionalRepositories = (*gormRepositories)(nil)
