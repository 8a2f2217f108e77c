package models

import (
	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// ProductMasterModel is a row of the product master
type ProductMasterModel struct {
	ProductCode  string `gorm:"primaryKey;type:varchar(64)"`
	ProductName  string `gorm:"type:text;not null;default:''"`
	ShippingFrom string `gorm:"type:varchar(32);not null;default:''"`
	Timestamps
}

// TableName returns the table name for GORM
func (ProductMasterModel) TableName() string {
	return "product_master"
}

// SalesListingModel is a marketplace listing pointing at a product master row
type SalesListingModel struct {
	SalesCode    string          `gorm:"primaryKey;type:varchar(128)"`
	ProductCode  string          `gorm:"type:varchar(64);not null;index"`
	SetQty       int             `gorm:"not null;default:1"`
	SalesPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SalesQty     int             `gorm:"not null;default:0"`
	ShippingFrom string          `gorm:"type:varchar(32);not null;default:''"`
	Timestamps
}

// TableName returns the table name for GORM
func (SalesListingModel) TableName() string {
	return "sales_listings"
}

// ListingRow is the result of joining a sales listing with its product master
type ListingRow struct {
	SalesCode          string
	ProductCode        string
	ProductName        string
	SetQty             int
	SalesPrice         decimal.Decimal
	SalesQty           int
	ShippingFrom       string
	MasterShippingFrom string
}

// ToDomain converts the joined row to a domain Listing
func (r *ListingRow) ToDomain() *catalog.Listing {
	return &catalog.Listing{
		SalesCode:          r.SalesCode,
		ProductCode:        r.ProductCode,
		ProductName:        r.ProductName,
		SetQty:             r.SetQty,
		SalesPrice:         r.SalesPrice,
		SalesQty:           r.SalesQty,
		ShippingFrom:       r.ShippingFrom,
		MasterShippingFrom: r.MasterShippingFrom,
	}
}

// InventoryModel holds regional stock for one product code
type InventoryModel struct {
	ProductCode string `gorm:"primaryKey;type:varchar(64)"`
	ProductName string `gorm:"type:text;not null;default:''"`
	NZStock     int    `gorm:"column:nz_stock;not null;default:0"`
	AusStock    int    `gorm:"not null;default:0"`
	Memo        string `gorm:"type:text;not null;default:''"`
	Timestamps
}

// TableName returns the table name for GORM
func (InventoryModel) TableName() string {
	return "inventory"
}

// ToDomain converts the persistence model to a domain InventoryRecord
func (m *InventoryModel) ToDomain() *catalog.InventoryRecord {
	return &catalog.InventoryRecord{
		ProductCode: m.ProductCode,
		ProductName: m.ProductName,
		NZStock:     m.NZStock,
		AusStock:    m.AusStock,
		Memo:        m.Memo,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// InventoryModelFromDomain creates a persistence model from a domain InventoryRecord
func InventoryModelFromDomain(r *catalog.InventoryRecord) *InventoryModel {
	m := &InventoryModel{
		ProductCode: r.ProductCode,
		ProductName: r.ProductName,
		NZStock:     r.NZStock,
		AusStock:    r.AusStock,
		Memo:        r.Memo,
	}
	m.touch(r.CreatedAt, r.UpdatedAt)
	return m
}

// All returns every persistence model in creation order
func All() []any {
	return []any{
		&ProductMasterModel{},
		&SalesListingModel{},
		&InventoryModel{},
		&OrderModel{},
		&ShipmentModel{},
	}
}
