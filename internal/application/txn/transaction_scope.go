package txn

import (
	"context"

	"github.com/inventoryops/backend/internal/domain/billing"
	"github.com/inventoryops/backend/internal/domain/partner"
	"github.com/inventoryops/backend/internal/domain/procurement"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to the repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. Every multi-row mutation (goods receipt, strict invoice
// creation, payment recording) runs through this.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to all repositories within a
// transaction. All repositories returned share the same underlying database
// transaction.
type TransactionalRepositories interface {
	StockRepo() stock.StockRepository
	StockTransactionRepo() stock.StockTransactionRepository
	PurchaseOrderRepo() procurement.PurchaseOrderRepository
	GoodsReceivedNoteRepo() procurement.GoodsReceivedNoteRepository
	InvoiceRepo() billing.InvoiceRepository
	PaymentRepo() billing.PaymentRepository
	WarehouseRepo() partner.WarehouseRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for tests, where repositories are mocks and atomicity
// is not under test.
type NoOpTransactionScope struct {
	Stocks            stock.StockRepository
	StockTransactions stock.StockTransactionRepository
	PurchaseOrders    procurement.PurchaseOrderRepository
	GoodsReceipts     procurement.GoodsReceivedNoteRepository
	Invoices          billing.InvoiceRepository
	Payments          billing.PaymentRepository
	Warehouses        partner.WarehouseRepository
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// StockRepo returns the stock repository.
func (s *NoOpTransactionScope) StockRepo() stock.StockRepository {
	return s.Stocks
}

// StockTransactionRepo returns the movement log repository.
func (s *NoOpTransactionScope) StockTransactionRepo() stock.StockTransactionRepository {
	return s.StockTransactions
}

// PurchaseOrderRepo returns the purchase order repository.
func (s *NoOpTransactionScope) PurchaseOrderRepo() procurement.PurchaseOrderRepository {
	return s.PurchaseOrders
}

// GoodsReceivedNoteRepo returns the goods received note repository.
func (s *NoOpTransactionScope) GoodsReceivedNoteRepo() procurement.GoodsReceivedNoteRepository {
	return s.GoodsReceipts
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.Invoices
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.Payments
}

// WarehouseRepo returns the warehouse repository.
func (s *NoOpTransactionScope) WarehouseRepo() partner.WarehouseRepository {
	return s.Warehouses
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
