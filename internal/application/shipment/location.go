package shipmentapp

import (
	"context"
	"errors"

	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
)

// LocationResolver reads the stock a location can ship
type LocationResolver struct {
	inventory catalog.InventoryRepository
}

// NewLocationResolver creates a LocationResolver over inventory
func NewLocationResolver(inventory catalog.InventoryRepository) *LocationResolver {
	return &LocationResolver{inventory: inventory}
}

// ResolveStock returns the stock of productCode at location. Locations with the
// nz_ prefix read the NZ column, everything else the AUS column. A product
// without an inventory record has zero stock.
func (r *LocationResolver) ResolveStock(ctx context.Context, productCode, location string) (int, error) {
	record, err := r.inventory.FindByProductCode(ctx, productCode)
	if errors.Is(err, shared.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return record.StockFor(order.IsNZLocation(location)), nil
}
