package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/orderops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInventoryRepository implements catalog.InventoryRepository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// FindByProductCode finds the inventory record for a product code
func (r *GormInventoryRepository) FindByProductCode(ctx context.Context, code string) (*catalog.InventoryRecord, error) {
	var model models.InventoryModel
	if err := r.db.WithContext(ctx).First(&model, "product_code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("inventory for %s not found", code))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert inserts new records and overwrites stock of existing ones.
// A blank product name keeps the stored name.
func (r *GormInventoryRepository) Upsert(ctx context.Context, records []catalog.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]*models.InventoryModel, len(records))
	for i := range records {
		rows[i] = models.InventoryModelFromDomain(&records[i])
		rows[i].UpdatedAt = now
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "product_code"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "nz_stock"}, Value: gorm.Expr("excluded.nz_stock")},
			{Column: clause.Column{Name: "aus_stock"}, Value: gorm.Expr("excluded.aus_stock")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			{Column: clause.Column{Name: "product_name"}, Value: gorm.Expr(
				"CASE WHEN excluded.product_name <> '' THEN excluded.product_name ELSE inventory.product_name END")},
		},
	}).CreateInBatches(rows, createBatchSize).Error
}

// Ensure GormInventoryRepository implements catalog.InventoryRepository
var _ catalog.InventoryRepository = (*GormInventoryRepository)(nil)
