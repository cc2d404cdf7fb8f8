package stock

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/inventoryops/backend/internal/domain/stock"
)

// MovementRequest describes one stock movement to apply
type MovementRequest struct {
	ItemID      uuid.UUID          `json:"item_id"`
	WarehouseID uuid.UUID          `json:"warehouse_id"`
	Quantity    decimal.Decimal    `json:"quantity"`
	Movement    stock.MovementType `json:"movement"`
	Reference   string             `json:"reference"`
}

// BalanceResponse is the resulting balance after a movement or a balance query
type BalanceResponse struct {
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// MovementResponse is one entry of the movement log
type MovementResponse struct {
	ID          uuid.UUID       `json:"id"`
	ItemID      uuid.UUID       `json:"item_id"`
	WarehouseID uuid.UUID       `json:"warehouse_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Movement    string          `json:"movement"`
	Reference   string          `json:"reference"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ReconciliationResult reports a stored balance checked against the movement log
type ReconciliationResult struct {
	ItemID         uuid.UUID       `json:"item_id"`
	WarehouseID    uuid.UUID       `json:"warehouse_id"`
	StoredBalance  decimal.Decimal `json:"stored_balance"`
	ComputedSum    decimal.Decimal `json:"computed_sum"`
	Consistent     bool            `json:"consistent"`
	DriftMagnitude decimal.Decimal `json:"drift_magnitude"`
}

// ToBalanceResponse maps a stock row to its response
func ToBalanceResponse(s *stock.Stock) BalanceResponse {
	return BalanceResponse{
		ItemID:      s.ItemID,
		WarehouseID: s.WarehouseID,
		Quantity:    s.Quantity,
	}
}

// ToMovementResponses maps movement log entries to responses
func ToMovementResponses(txs []stock.StockTransaction) []MovementResponse {
	out := make([]MovementResponse, len(txs))
	for i, tx := range txs {
		out[i] = MovementResponse{
			ID:          tx.ID,
			ItemID:      tx.ItemID,
			WarehouseID: tx.WarehouseID,
			Quantity:    tx.Quantity,
			Movement:    tx.MovementType.String(),
			Reference:   tx.Reference,
			OccurredAt:  tx.OccurredAt,
		}
	}
	return out
}
