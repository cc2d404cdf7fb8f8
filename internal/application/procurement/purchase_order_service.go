package procurement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inventoryops/backend/internal/domain/procurement"
	"github.com/inventoryops/backend/internal/domain/shared"
)

// PurchaseOrderService manages the purchase order lifecycle:
// draft -> approved -> closed.
type PurchaseOrderService struct {
	orderRepo procurement.PurchaseOrderRepository
	logger    *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(orderRepo procurement.PurchaseOrderRepository, logger *zap.Logger) *PurchaseOrderService {
	return &PurchaseOrderService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// Create creates a new draft purchase order with zero received quantities
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("Purchase order must have at least one line")
	}

	reference := req.Reference
	if reference == "" {
		var err error
		reference, err = s.orderRepo.NextReference(ctx)
		if err != nil {
			return nil, err
		}
	}

	orderDate := time.Now()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	order, err := procurement.NewPurchaseOrder(req.VendorID, req.WarehouseID, reference, orderDate)
	if err != nil {
		return nil, err
	}

	for _, line := range req.Lines {
		if _, err := order.AddLine(line.ItemID, line.QuantityOrdered, line.UnitPrice); err != nil {
			return nil, err
		}
	}

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("order_id", order.ID.String()),
		zap.String("reference", order.Reference),
		zap.Int("lines", len(order.Lines)))

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.VendorID != nil {
		domainFilter.Filters["vendor_id"] = *filter.VendorID
	}
	if filter.WarehouseID != nil {
		domainFilter.Filters["warehouse_id"] = *filter.WarehouseID
	}
	if filter.IsApproved != nil {
		domainFilter.Filters["is_approved"] = *filter.IsApproved
	}
	if filter.IsClosed != nil {
		domainFilter.Filters["is_closed"] = *filter.IsClosed
	}

	orders, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PurchaseOrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToPurchaseOrderResponse(&orders[i])
	}
	return responses, total, nil
}

// Update replaces the order header and lines wholesale. Permitted only while
// the order is neither approved nor closed; the previous lines are deleted
// and recreated.
func (s *PurchaseOrderService) Update(ctx context.Context, orderID uuid.UUID, req UpdatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.CanModify() {
		return nil, shared.NewInvalidStateError("Order can only be updated while draft")
	}
	if len(req.Lines) == 0 {
		return nil, shared.NewValidationError("Purchase order must have at least one line")
	}

	if req.VendorID != uuid.Nil {
		order.VendorID = req.VendorID
	}
	if req.WarehouseID != uuid.Nil {
		order.WarehouseID = req.WarehouseID
	}
	if req.OrderDate != nil {
		order.OrderDate = *req.OrderDate
	}

	lines := make([]procurement.PurchaseOrderLine, 0, len(req.Lines))
	for _, input := range req.Lines {
		line, err := procurement.NewPurchaseOrderLine(order.ID, input.ItemID, input.QuantityOrdered, input.UnitPrice)
		if err != nil {
			return nil, err
		}
		lines = append(lines, *line)
	}
	if err := order.ReplaceLines(lines); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Approve marks the order approved. Re-approving an already approved order
// succeeds without effect.
func (s *PurchaseOrderService) Approve(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	alreadyApproved := order.IsApproved
	if err := order.Approve(); err != nil {
		return nil, err
	}

	if !alreadyApproved {
		if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
			return nil, err
		}
		s.logger.Info("purchase order approved",
			zap.String("order_id", order.ID.String()),
			zap.String("reference", order.Reference))
	}

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// Close is the manual administrative override: it closes the order without
// checking receipt progress. The automatic closure path runs inside the
// goods receipt flow when every line is fully received.
func (s *PurchaseOrderService) Close(ctx context.Context, orderID uuid.UUID) (bool, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return false, err
	}

	order.Close()
	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return false, err
	}

	s.logger.Warn("purchase order closed manually",
		zap.String("order_id", order.ID.String()),
		zap.String("reference", order.Reference),
		zap.Bool("fully_received", order.IsFullyReceived()))

	return true, nil
}

// Delete removes a purchase order. Only draft orders may be deleted.
func (s *PurchaseOrderService) Delete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.CanModify() {
		return shared.NewInvalidStateError("Only draft orders can be deleted")
	}

	return s.orderRepo.Delete(ctx, orderID)
}
