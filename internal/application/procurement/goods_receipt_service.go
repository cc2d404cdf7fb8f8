package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appstock "github.com/inventoryops/backend/internal/application/stock"
	"github.com/inventoryops/backend/internal/application/txn"
	"github.com/inventoryops/backend/internal/domain/procurement"
	"github.com/inventoryops/backend/internal/domain/shared"
	"github.com/inventoryops/backend/internal/domain/stock"
)

// GoodsReceiptService turns goods received notes into stock increases and
// purchase order progress, exactly once per note.
type GoodsReceiptService struct {
	scope     txn.TransactionScope
	grnRepo   procurement.GoodsReceivedNoteRepository
	orderRepo procurement.PurchaseOrderRepository
	ledger    *appstock.StockLedgerService
	logger    *zap.Logger
}

// NewGoodsReceiptService creates a new GoodsReceiptService
func NewGoodsReceiptService(
	scope txn.TransactionScope,
	grnRepo procurement.GoodsReceivedNoteRepository,
	orderRepo procurement.PurchaseOrderRepository,
	ledger *appstock.StockLedgerService,
	logger *zap.Logger,
) *GoodsReceiptService {
	return &GoodsReceiptService{
		scope:     scope,
		grnRepo:   grnRepo,
		orderRepo: orderRepo,
		ledger:    ledger,
		logger:    logger,
	}
}

// Create persists a draft goods received note snapshot. Stock is untouched
// until Receive is called.
func (s *GoodsReceiptService) Create(ctx context.Context, req CreateGrnRequest) (*GrnResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("Goods received note must have at least one line")
	}

	// The referenced order must exist; approval is only checked at receipt.
	if _, err := s.orderRepo.FindByID(ctx, req.PurchaseOrderID); err != nil {
		return nil, err
	}

	reference := req.Reference
	if reference == "" {
		var err error
		reference, err = s.grnRepo.NextReference(ctx)
		if err != nil {
			return nil, err
		}
	}

	receivedDate := time.Now()
	if req.ReceivedDate != nil {
		receivedDate = *req.ReceivedDate
	}

	grn, err := procurement.NewGoodsReceivedNote(req.PurchaseOrderID, reference, receivedDate)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		if _, err := grn.AddLine(line.ItemID, line.Quantity, line.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.grnRepo.Save(ctx, grn); err != nil {
		return nil, err
	}

	s.logger.Info("goods received note created",
		zap.String("grn_id", grn.ID.String()),
		zap.String("reference", grn.Reference),
		zap.String("order_id", grn.PurchaseOrderID.String()))

	response := ToGrnResponse(grn)
	return &response, nil
}

// GetByID retrieves a goods received note by ID
func (s *GoodsReceiptService) GetByID(ctx context.Context, grnID uuid.UUID) (*GrnResponse, error) {
	grn, err := s.grnRepo.FindByID(ctx, grnID)
	if err != nil {
		return nil, err
	}
	response := ToGrnResponse(grn)
	return &response, nil
}

// ListByPurchaseOrder retrieves the notes recorded against an order
func (s *GoodsReceiptService) ListByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]GrnResponse, error) {
	grns, err := s.grnRepo.FindByPurchaseOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	responses := make([]GrnResponse, len(grns))
	for i := range grns {
		responses[i] = ToGrnResponse(&grns[i])
	}
	return responses, nil
}

// Update replaces the line set of a draft note wholesale. Permitted only
// while the note has not been received.
func (s *GoodsReceiptService) Update(ctx context.Context, grnID uuid.UUID, req UpdateGrnRequest) (*GrnResponse, error) {
	grn, err := s.grnRepo.FindByID(ctx, grnID)
	if err != nil {
		return nil, err
	}

	if grn.IsReceived {
		return nil, shared.NewInvalidStateError("Cannot update a received note")
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("Goods received note must have at least one line")
	}

	if req.ReceivedDate != nil {
		grn.ReceivedDate = *req.ReceivedDate
	}

	lines := make([]procurement.GrnLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		line, err := procurement.NewGrnLine(grn.ID, input.ItemID, input.Quantity, input.UnitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	if err := grn.ReplaceLines(lines); err != nil {
		return nil, err
	}

	if err := s.grnRepo.SaveWithLock(ctx, grn); err != nil {
		return nil, err
	}

	response := ToGrnResponse(grn)
	return &response, nil
}

// Receive applies a goods received note: every line becomes an inbound stock
// movement at the order's warehouse, the matching order lines accumulate the
// received quantity, the note's one-shot flag is set, and the order closes
// automatically once every line is fully received. All writes commit
// together or not at all. A note that was already received fails with
// INVALID_STATE, so a retried call never doubles stock; the optimistic
// version check on the note serializes racing calls.
func (s *GoodsReceiptService) Receive(ctx context.Context, grnID uuid.UUID) (*ReceiveResultResponse, error) {
	var result *ReceiveResultResponse

	err := s.scope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		grn, err := repos.GoodsReceivedNoteRepo().FindByID(ctx, grnID)
		if err != nil {
			return err
		}
		if grn.IsReceived {
			return shared.NewInvalidStateError("Goods received note has already been received")
		}

		order, err := repos.PurchaseOrderRepo().FindByID(ctx, grn.PurchaseOrderID)
		if err != nil {
			return err
		}
		if !order.IsApproved {
			return shared.NewInvalidStateError("Cannot receive against an unapproved purchase order")
		}

		for _, line := range grn.Lines {
			if _, err := s.ledger.ApplyMovementTx(ctx, repos, appstock.MovementRequest{
				ItemID:      line.ItemID,
				WarehouseID: order.WarehouseID,
				Quantity:    line.Quantity,
				Movement:    stock.MovementIn,
				Reference:   grn.Reference,
			}); err != nil {
				return err
			}

			if err := order.AddReceivedQuantity(line.ItemID, line.Quantity); err != nil {
				return err
			}
		}

		if err := grn.MarkReceived(); err != nil {
			return err
		}
		orderClosed := order.CloseIfFullyReceived()

		if err := repos.GoodsReceivedNoteRepo().SaveWithLock(ctx, grn); err != nil {
			return err
		}
		if err := repos.PurchaseOrderRepo().SaveWithLock(ctx, order); err != nil {
			return err
		}

		result = &ReceiveResultResponse{
			Grn:            ToGrnResponse(grn),
			Order:          ToPurchaseOrderResponse(order),
			OrderClosed:    orderClosed,
			MovementsAdded: len(grn.Lines),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("goods received note applied",
		zap.String("grn_id", result.Grn.ID.String()),
		zap.String("order_id", result.Order.ID.String()),
		zap.Bool("order_closed", result.OrderClosed),
		zap.Int("movements", result.MovementsAdded))

	return result, nil
}
