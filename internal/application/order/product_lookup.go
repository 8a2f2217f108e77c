package orderapp

import (
	"context"
	"errors"

	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ProductInfo is what the product master knows about a marketplace SKU
type ProductInfo struct {
	Name  string
	Price decimal.Decimal
}

// ProductLookup resolves a marketplace SKU to its master record.
// found is false when the SKU has no master record.
type ProductLookup interface {
	GetProductNameAndPrice(ctx context.Context, code string) (info ProductInfo, found bool, err error)
}

// ListingProductLookup resolves SKUs through the sales listings joined with
// the product master
type ListingProductLookup struct {
	listings catalog.ListingRepository
}

// NewListingProductLookup creates a ListingProductLookup
func NewListingProductLookup(listings catalog.ListingRepository) *ListingProductLookup {
	return &ListingProductLookup{listings: listings}
}

// GetProductNameAndPrice returns the master product name and the listing price
func (l *ListingProductLookup) GetProductNameAndPrice(ctx context.Context, code string) (ProductInfo, bool, error) {
	listing, err := l.listings.FindBySalesCode(ctx, code)
	if errors.Is(err, shared.ErrNotFound) {
		return ProductInfo{}, false, nil
	}
	if err != nil {
		return ProductInfo{}, false, err
	}
	return ProductInfo{Name: listing.ProductName, Price: listing.SalesPrice}, true, nil
}
