package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/orderops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormListingRepository implements catalog.ListingRepository using GORM
type GormListingRepository struct {
	db *gorm.DB
}

// NewGormListingRepository creates a new GormListingRepository
func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

// FindBySalesCode returns the listing joined with its product master row
func (r *GormListingRepository) FindBySalesCode(ctx context.Context, salesCode string) (*catalog.Listing, error) {
	var rows []models.ListingRow
	err := r.db.WithContext(ctx).
		Table("sales_listings AS l").
		Select("l.sales_code, l.product_code, COALESCE(p.product_name, '') AS product_name, " +
			"l.set_qty, l.sales_price, l.sales_qty, l.shipping_from, " +
			"COALESCE(p.shipping_from, '') AS master_shipping_from").
		Joins("LEFT JOIN product_master AS p ON p.product_code = l.product_code").
		Where("l.sales_code = ?", salesCode).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("listing %s not found", salesCode))
	}
	return rows[0].ToDomain(), nil
}

// UpdatePrice sets the sales price and, when given, the listed quantity
func (r *GormListingRepository) UpdatePrice(ctx context.Context, update catalog.PriceUpdate) (bool, error) {
	updates := map[string]any{
		"sales_price": update.Price,
		"updated_at":  time.Now(),
	}
	if update.Quantity != nil {
		updates["sales_qty"] = *update.Quantity
	}
	result := r.db.WithContext(ctx).Model(&models.SalesListingModel{}).
		Where("sales_code = ?", update.SalesCode).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Ensure GormListingRepository implements catalog.ListingRepository
var _ catalog.ListingRepository = (*GormListingRepository)(nil)
