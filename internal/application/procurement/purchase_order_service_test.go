package procurement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/inventoryops/backend/internal/domain/procurement"
	"github.com/inventoryops/backend/internal/domain/shared"
)

func newOrderService() (*PurchaseOrderService, *MockPurchaseOrderRepository) {
	repo := new(MockPurchaseOrderRepository)
	return NewPurchaseOrderService(repo, zap.NewNop()), repo
}

func draftOrder(t *testing.T, itemID uuid.UUID) *procurement.PurchaseOrder {
	t.Helper()
	order, err := procurement.NewPurchaseOrder(uuid.New(), uuid.New(), "PO-202609-0001", time.Now())
	require.NoError(t, err)
	_, err = order.AddLine(itemID, decimal.NewFromInt(10), decimal.NewFromInt(3))
	require.NoError(t, err)
	return order
}

func TestCreatePurchaseOrderGeneratesReference(t *testing.T) {
	service, repo := newOrderService()
	repo.On("NextReference", mock.Anything).Return("PO-202609-0042", nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	response, err := service.Create(context.Background(), CreatePurchaseOrderRequest{
		VendorID:    uuid.New(),
		WarehouseID: uuid.New(),
		Lines: []PurchaseOrderLineInput{
			{ItemID: uuid.New(), QuantityOrdered: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-202609-0042", response.Reference)
	assert.False(t, response.IsApproved)
	assert.True(t, response.TotalAmount.Equal(decimal.NewFromInt(20)))
	repo.AssertExpectations(t)
}

func TestCreatePurchaseOrderKeepsExplicitReference(t *testing.T) {
	service, repo := newOrderService()
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	response, err := service.Create(context.Background(), CreatePurchaseOrderRequest{
		VendorID:    uuid.New(),
		WarehouseID: uuid.New(),
		Reference:   "PO-CUSTOM-1",
		Lines: []PurchaseOrderLineInput{
			{ItemID: uuid.New(), QuantityOrdered: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "PO-CUSTOM-1", response.Reference)
	repo.AssertNotCalled(t, "NextReference", mock.Anything)
}

func TestCreatePurchaseOrderRequiresLines(t *testing.T) {
	service, repo := newOrderService()

	_, err := service.Create(context.Background(), CreatePurchaseOrderRequest{
		VendorID:    uuid.New(),
		WarehouseID: uuid.New(),
	})
	assert.True(t, shared.IsValidation(err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestApprovePersistsOnce(t *testing.T) {
	service, repo := newOrderService()
	order := draftOrder(t, uuid.New())

	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	repo.On("SaveWithLock", mock.Anything, order).Return(nil).Once()

	response, err := service.Approve(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, response.IsApproved)

	// Second approval is a no-op and must not write again
	response, err = service.Approve(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, response.IsApproved)

	repo.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestApproveWithoutLinesFails(t *testing.T) {
	service, repo := newOrderService()
	order, err := procurement.NewPurchaseOrder(uuid.New(), uuid.New(), "PO-202609-0002", time.Now())
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err = service.Approve(context.Background(), order.ID)
	assert.True(t, shared.IsInvalidState(err))
	repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}

func TestUpdateApprovedOrderFails(t *testing.T) {
	service, repo := newOrderService()
	itemID := uuid.New()
	order := draftOrder(t, itemID)
	require.NoError(t, order.Approve())

	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	_, err := service.Update(context.Background(), order.ID, UpdatePurchaseOrderRequest{
		Lines: []PurchaseOrderLineInput{{ItemID: itemID, QuantityOrdered: decimal.NewFromInt(5)}},
	})
	assert.True(t, shared.IsInvalidState(err))
}

func TestUpdateReplacesLines(t *testing.T) {
	service, repo := newOrderService()
	order := draftOrder(t, uuid.New())
	newItemID := uuid.New()

	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	repo.On("SaveWithLock", mock.Anything, order).Return(nil)

	response, err := service.Update(context.Background(), order.ID, UpdatePurchaseOrderRequest{
		Lines: []PurchaseOrderLineInput{
			{ItemID: newItemID, QuantityOrdered: decimal.NewFromInt(7), UnitPrice: decimal.NewFromInt(1)},
		},
	})
	require.NoError(t, err)
	require.Len(t, response.Lines, 1)
	assert.Equal(t, newItemID, response.Lines[0].ItemID)
	assert.True(t, response.Lines[0].QuantityOrdered.Equal(decimal.NewFromInt(7)))
}

func TestManualClose(t *testing.T) {
	service, repo := newOrderService()
	order := draftOrder(t, uuid.New())
	require.NoError(t, order.Approve())

	repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	repo.On("SaveWithLock", mock.Anything, order).Return(nil)

	closed, err := service.Close(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, closed)
	assert.True(t, order.IsClosed)
}

func TestDeleteOnlyDraftOrders(t *testing.T) {
	service, repo := newOrderService()

	t.Run("draft is deleted", func(t *testing.T) {
		order := draftOrder(t, uuid.New())
		repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
		repo.On("Delete", mock.Anything, order.ID).Return(nil)

		require.NoError(t, service.Delete(context.Background(), order.ID))
	})

	t.Run("approved is rejected", func(t *testing.T) {
		order := draftOrder(t, uuid.New())
		require.NoError(t, order.Approve())
		repo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

		err := service.Delete(context.Background(), order.ID)
		assert.True(t, shared.IsInvalidState(err))
		repo.AssertNotCalled(t, "Delete", mock.Anything, order.ID)
	})
}

func TestGetByIDNotFound(t *testing.T) {
	service, repo := newOrderService()
	orderID := uuid.New()
	repo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

	_, err := service.GetByID(context.Background(), orderID)
	assert.True(t, shared.IsNotFound(err))
}
