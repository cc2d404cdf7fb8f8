package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/inventoryops/backend/internal/domain/procurement"
	"github.com/inventoryops/backend/internal/domain/shared"
)

// GormGoodsReceivedNoteRepository implements GoodsReceivedNoteRepository using GORM
type GormGoodsReceivedNoteRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceivedNoteRepository creates a new GormGoodsReceivedNoteRepository
func NewGormGoodsReceivedNoteRepository(db *gorm.DB) *GormGoodsReceivedNoteRepository {
	return &GormGoodsReceivedNoteRepository{db: db}
}

// FindByID finds a goods received note with its lines
func (r *GormGoodsReceivedNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*procurement.GoodsReceivedNote, error) {
	var grn procurement.GoodsReceivedNote
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&grn, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &grn, nil
}

// FindByPurchaseOrder lists notes recorded against an order, oldest first
func (r *GormGoodsReceivedNoteRepository) FindByPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) ([]procurement.GoodsReceivedNote, error) {
	var grns []procurement.GoodsReceivedNote
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("purchase_order_id = ?", purchaseOrderID).
		Order("created_at ASC").
		Find(&grns).Error; err != nil {
		return nil, err
	}
	return grns, nil
}

// Save creates or updates a note and its lines wholesale
func (r *GormGoodsReceivedNoteRepository) Save(ctx context.Context, grn *procurement.GoodsReceivedNote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(grn).Error; err != nil {
			return err
		}
		return saveGrnLines(tx, grn)
	})
}

// SaveWithLock saves with an optimistic version check; a racing writer on the
// same note gets shared.ErrConcurrencyConflict. This is what makes receiving
// the same note twice concurrently a one-winner race.
func (r *GormGoodsReceivedNoteRepository) SaveWithLock(ctx context.Context, grn *procurement.GoodsReceivedNote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		loadedVersion := grn.LoadedVersion()
		grn.UpdatedAt = time.Now()

		result := tx.Model(&procurement.GoodsReceivedNote{}).
			Where("id = ? AND version = ?", grn.ID, loadedVersion).
			Updates(map[string]interface{}{
				"purchase_order_id": grn.PurchaseOrderID,
				"reference":         grn.Reference,
				"received_date":     grn.ReceivedDate,
				"is_received":       grn.IsReceived,
				"version":           grn.Version,
				"updated_at":        grn.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		grn.MarkLoaded()

		return saveGrnLines(tx, grn)
	})
}

// NextReference generates the next note reference (GRN-YYYYMM-NNNN)
func (r *GormGoodsReceivedNoteRepository) NextReference(ctx context.Context) (string, error) {
	return nextReference(ctx, r.db, "goods_received_notes", "GRN")
}

// saveGrnLines replaces the persisted line set with the aggregate's lines
func saveGrnLines(tx *gorm.DB, grn *procurement.GoodsReceivedNote) error {
	lineIDs := make([]uuid.UUID, len(grn.Lines))
	for i := range grn.Lines {
		lineIDs[i] = grn.Lines[i].ID
	}

	query := tx.Where("grn_id = ?", grn.ID)
	if len(lineIDs) > 0 {
		query = query.Where("id NOT IN ?", lineIDs)
	}
	if err := query.Delete(&procurement.GrnLine{}).Error; err != nil {
		return err
	}

	for i := range grn.Lines {
		grn.Lines[i].GrnID = grn.ID
		if err := tx.Save(&grn.Lines[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

var _ procurement.GoodsReceivedNoteRepository = (*GormGoodsReceivedNoteRepository)(nil)
