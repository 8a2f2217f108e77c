// Package catalog holds the product master, sales listings and inventory records
// that order processing consults.
package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// InventoryRecord is the stock held for a product in each region
type InventoryRecord struct {
	ProductCode string    `json:"product_code"`
	ProductName string    `json:"product_name"`
	NZStock     int       `json:"nz_stock"`
	AusStock    int       `json:"aus_stock"`
	Memo        string    `json:"memo"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StockFor returns the stock column selected by the location prefix rule
func (r *InventoryRecord) StockFor(nz bool) int {
	if nz {
		return r.NZStock
	}
	return r.AusStock
}

// Listing is a marketplace sales listing joined with its product master row
type Listing struct {
	SalesCode          string          `json:"sales_code"`
	ProductCode        string          `json:"product_code"`
	ProductName        string          `json:"product_name"`
	SetQty             int             `json:"set_qty"`
	SalesPrice         decimal.Decimal `json:"sales_price"`
	SalesQty           int             `json:"sales_qty"`
	ShippingFrom       string          `json:"shipping_from"`
	MasterShippingFrom string          `json:"master_shipping_from"`
}

// Origin returns the listing's shipping origin, falling back to the product master
func (l *Listing) Origin() string {
	if l.ShippingFrom != "" {
		return l.ShippingFrom
	}
	return l.MasterShippingFrom
}

// UnitsPerOrder returns the set quantity, at least 1
func (l *Listing) UnitsPerOrder() int {
	if l.SetQty < 1 {
		return 1
	}
	return l.SetQty
}

// PriceUpdate changes a listing's price and optionally its quantity
type PriceUpdate struct {
	SalesCode string
	Price     decimal.Decimal
	Quantity  *int
}

// InventoryRepository reads and writes inventory records
type InventoryRepository interface {
	// FindByProductCode returns shared.ErrNotFound when no record exists
	FindByProductCode(ctx context.Context, code string) (*InventoryRecord, error)
	Upsert(ctx context.Context, records []InventoryRecord) error
}

// ListingRepository reads sales listings
type ListingRepository interface {
	// FindBySalesCode returns shared.ErrNotFound when no listing exists
	FindBySalesCode(ctx context.Context, salesCode string) (*Listing, error)
	// UpdatePrice returns false when no listing has the sales code
	UpdatePrice(ctx context.Context, update PriceUpdate) (bool, error)
}
