package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/inventoryops/backend/internal/application/txn"
	"github.com/inventoryops/backend/internal/domain/shared"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// StockLedgerService maintains per-item-per-warehouse running balances and
// the append-only movement log. It is the only writer of stock rows; the
// receiving and invoicing flows go through it.
type StockLedgerService struct {
	scope              txn.TransactionScope
	stockRepo          stock.StockRepository
	txRepo             stock.StockTransactionRepository
	logger             *zap.Logger
	allowNegativeStock bool
}

// NewStockLedgerService creates a new StockLedgerService.
// allowNegativeStock controls whether outbound movements may drive a balance
// below zero; the default business policy allows it.
func NewStockLedgerService(
	scope txn.TransactionScope,
	stockRepo stock.StockRepository,
	txRepo stock.StockTransactionRepository,
	logger *zap.Logger,
	allowNegativeStock bool,
) *StockLedgerService {
	return &StockLedgerService{
		scope:              scope,
		stockRepo:          stockRepo,
		txRepo:             txRepo,
		logger:             logger,
		allowNegativeStock: allowNegativeStock,
	}
}

// AllowNegativeStock reports the configured negative-balance policy
func (s *StockLedgerService) AllowNegativeStock() bool {
	return s.allowNegativeStock
}

// ApplyMovement adjusts the balance and appends one movement record as a
// single atomic unit, creating the stock row on first touch.
func (s *StockLedgerService) ApplyMovement(ctx context.Context, req MovementRequest) (*BalanceResponse, error) {
	var result *stock.Stock
	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		result, err = s.ApplyMovementTx(ctx, repos, req)
		return err
	})
	if err != nil {
		return nil, err
	}

	response := ToBalanceResponse(result)
	return &response, nil
}

// balanceSaveAttempts bounds the re-read loop when guarded balance saves
// keep losing the race against other writers.
const balanceSaveAttempts = 3

// ApplyMovementTx applies a movement using the repositories of an already
// open transaction. Callers composing larger units of work (goods receipt,
// invoice issuance) use this so the balance update, the log append and their
// own writes commit together.
func (s *StockLedgerService) ApplyMovementTx(ctx context.Context, repos txn.TransactionalRepositories, req MovementRequest) (*stock.Stock, error) {
	row, err := s.applyBalance(ctx, repos, req)
	if err != nil {
		return nil, err
	}

	movement, err := stock.NewStockTransaction(req.ItemID, req.WarehouseID, req.Quantity, req.Movement, req.Reference)
	if err != nil {
		return nil, err
	}
	if err := repos.StockTransactionRepo().Append(ctx, movement); err != nil {
		return nil, err
	}

	s.logger.Debug("stock movement applied",
		zap.String("item_id", req.ItemID.String()),
		zap.String("warehouse_id", req.WarehouseID.String()),
		zap.String("movement", req.Movement.String()),
		zap.String("quantity", req.Quantity.String()),
		zap.String("balance", row.Quantity.String()),
		zap.String("reference", req.Reference))

	return row, nil
}

// applyBalance finds or creates the stock row and saves the adjusted balance
// under an optimistic version check. A concurrent movement on the same row
// makes the guarded save miss; the delta is then re-applied to a fresh read
// rather than lost, so the stored balance keeps matching the movement log.
func (s *StockLedgerService) applyBalance(ctx context.Context, repos txn.TransactionalRepositories, req MovementRequest) (*stock.Stock, error) {
	for attempt := 0; attempt < balanceSaveAttempts; attempt++ {
		created := false
		row, err := repos.StockRepo().FindByItemAndWarehouse(ctx, req.ItemID, req.WarehouseID)
		if err != nil {
			if !shared.IsNotFound(err) {
				return nil, err
			}
			row, err = stock.NewStock(req.ItemID, req.WarehouseID)
			if err != nil {
				return nil, err
			}
			created = true
		}

		if err := row.Apply(req.Quantity, req.Movement, s.allowNegativeStock); err != nil {
			return nil, err
		}

		if created {
			// First touch; the unique item+warehouse index catches racing creators.
			err = repos.StockRepo().Save(ctx, row)
		} else {
			err = repos.StockRepo().SaveWithLock(ctx, row)
		}
		if err == nil {
			return row, nil
		}
		if !shared.IsConcurrencyConflict(err) {
			return nil, err
		}

		s.logger.Debug("stock balance save lost the race, retrying",
			zap.String("item_id", req.ItemID.String()),
			zap.String("warehouse_id", req.WarehouseID.String()),
			zap.Int("attempt", attempt+1))
	}

	return nil, shared.ErrConcurrencyConflict
}

// Balance returns the running balance for an item at a warehouse.
// An item the ledger has never seen reports a zero balance.
func (s *StockLedgerService) Balance(ctx context.Context, itemID, warehouseID uuid.UUID) (*BalanceResponse, error) {
	row, err := s.stockRepo.FindByItemAndWarehouse(ctx, itemID, warehouseID)
	if err != nil {
		if shared.IsNotFound(err) {
			return &BalanceResponse{ItemID: itemID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
		}
		return nil, err
	}
	response := ToBalanceResponse(row)
	return &response, nil
}

// BalancesForWarehouse returns all item balances at a warehouse
func (s *StockLedgerService) BalancesForWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]stock.ItemBalance, error) {
	rows, err := s.stockRepo.FindByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	balances := make([]stock.ItemBalance, len(rows))
	for i, row := range rows {
		balances[i] = stock.ItemBalance{ItemID: row.ItemID, Quantity: row.Quantity}
	}
	return balances, nil
}

// Movements returns the movement log for an item at a warehouse, oldest first
func (s *StockLedgerService) Movements(ctx context.Context, itemID, warehouseID uuid.UUID) ([]MovementResponse, error) {
	txs, err := s.txRepo.FindByItemAndWarehouse(ctx, itemID, warehouseID)
	if err != nil {
		return nil, err
	}
	return ToMovementResponses(txs), nil
}

// Reconcile recomputes the balance from the movement log and compares it to
// the stored stock row. A mismatch is a data-integrity defect: the stored
// balance and the log disagree.
func (s *StockLedgerService) Reconcile(ctx context.Context, itemID, warehouseID uuid.UUID) (*ReconciliationResult, error) {
	row, err := s.stockRepo.FindByItemAndWarehouse(ctx, itemID, warehouseID)
	if err != nil {
		return nil, err
	}

	sum, err := s.txRepo.SumByItemAndWarehouse(ctx, itemID, warehouseID)
	if err != nil {
		return nil, err
	}

	result := &ReconciliationResult{
		ItemID:         itemID,
		WarehouseID:    warehouseID,
		StoredBalance:  row.Quantity,
		ComputedSum:    sum,
		Consistent:     row.Quantity.Equal(sum),
		DriftMagnitude: row.Quantity.Sub(sum).Abs(),
	}

	if !result.Consistent {
		s.logger.Error("stock ledger mismatch",
			zap.String("item_id", itemID.String()),
			zap.String("warehouse_id", warehouseID.String()),
			zap.String("stored", row.Quantity.String()),
			zap.String("computed", sum.String()))
	}

	return result, nil
}

// ReconcileWarehouse runs the reconciliation check over every stock row at a
// warehouse and returns the per-item results.
func (s *StockLedgerService) ReconcileWarehouse(ctx context.Context, warehouseID uuid.UUID) ([]ReconciliationResult, error) {
	rows, err := s.stockRepo.FindByWarehouse(ctx, warehouseID)
	if err != nil {
		return nil, err
	}

	results := make([]ReconciliationResult, 0, len(rows))
	for _, row := range rows {
		result, err := s.Reconcile(ctx, row.ItemID, warehouseID)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}
