package models

import (
	"github.com/orderops/backend/internal/domain/order"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for an order line
type OrderModel struct {
	ID                  int64           `gorm:"primaryKey;autoIncrement"`
	ReferenceNo         string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_reference_line,priority:1"`
	LineNo              int             `gorm:"not null;default:0;uniqueIndex:idx_orders_reference_line,priority:2"`
	Marketplace         string          `gorm:"type:varchar(16);not null;index"`
	SKU                 string          `gorm:"column:sku;type:varchar(128);not null;default:''"`
	ProductName         string          `gorm:"type:text;not null;default:''"`
	OriginalProductName string          `gorm:"type:text;not null;default:''"`
	Quantity            int             `gorm:"not null;default:1"`
	UnitValue           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ConsigneeName       string          `gorm:"type:varchar(255);not null;default:'';index"`
	Kana                string          `gorm:"type:varchar(255);not null;default:''"`
	PostalCode          string          `gorm:"type:varchar(16);not null;default:''"`
	Address             string          `gorm:"type:text;not null;default:''"`
	PhoneNumber         string          `gorm:"type:varchar(32);not null;default:''"`
	Status              int             `gorm:"not null;default:0;index"`
	ShipmentLocation    string          `gorm:"type:varchar(16);not null;default:''"`
	ShipmentBatch       *string         `gorm:"type:varchar(32);index"`
	OriginalBatch       *string         `gorm:"type:varchar(32)"`
	RemainingQuantity   int             `gorm:"not null;default:0"`
	Timestamps
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() *order.Order {
	return &order.Order{
		ID:                  m.ID,
		ReferenceNo:         m.ReferenceNo,
		LineNo:              m.LineNo,
		Marketplace:         order.Marketplace(m.Marketplace),
		SKU:                 m.SKU,
		ProductName:         m.ProductName,
		OriginalProductName: m.OriginalProductName,
		Quantity:            m.Quantity,
		UnitValue:           m.UnitValue,
		ConsigneeName:       m.ConsigneeName,
		Kana:                m.Kana,
		PostalCode:          m.PostalCode,
		Address:             m.Address,
		PhoneNumber:         m.PhoneNumber,
		Status:              order.Status(m.Status),
		ShipmentLocation:    order.Location(m.ShipmentLocation),
		ShipmentBatch:       m.ShipmentBatch,
		OriginalBatch:       m.OriginalBatch,
		RemainingQuantity:   m.RemainingQuantity,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	m := &OrderModel{
		ID:                  o.ID,
		ReferenceNo:         o.ReferenceNo,
		LineNo:              o.LineNo,
		Marketplace:         string(o.Marketplace),
		SKU:                 o.SKU,
		ProductName:         o.ProductName,
		OriginalProductName: o.OriginalProductName,
		Quantity:            o.Quantity,
		UnitValue:           o.UnitValue,
		ConsigneeName:       o.ConsigneeName,
		Kana:                o.Kana,
		PostalCode:          o.PostalCode,
		Address:             o.Address,
		PhoneNumber:         o.PhoneNumber,
		Status:              int(o.Status),
		ShipmentLocation:    string(o.ShipmentLocation),
		ShipmentBatch:       o.ShipmentBatch,
		OriginalBatch:       o.OriginalBatch,
		RemainingQuantity:   o.RemainingQuantity,
	}
	m.touch(o.CreatedAt, o.UpdatedAt)
	return m
}

// ShipmentModel is the persistence model for a shipment row
type ShipmentModel struct {
	ID               int64           `gorm:"primaryKey;autoIncrement"`
	ShipmentNo       string          `gorm:"type:varchar(64);not null;uniqueIndex"`
	OrderID          int64           `gorm:"not null;index"`
	ReferenceNo      string          `gorm:"type:varchar(64);not null;index"`
	SKU              string          `gorm:"column:sku;type:varchar(128);not null;default:''"`
	ProductName      string          `gorm:"type:text;not null;default:''"`
	Quantity         int             `gorm:"not null;default:1"`
	UnitValue        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ConsigneeName    string          `gorm:"type:varchar(255);not null;default:'';index"`
	Kana             string          `gorm:"type:varchar(255);not null;default:''"`
	PostalCode       string          `gorm:"type:varchar(16);not null;default:''"`
	Address          string          `gorm:"type:text;not null;default:''"`
	ShipmentLocation string          `gorm:"type:varchar(32);not null;default:''"`
	Status           string          `gorm:"type:varchar(16);not null;default:'processing';index"`
	TrackingNumber   string          `gorm:"type:varchar(64);not null;default:''"`
	Weight           decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	Timestamps
}

// TableName returns the table name for GORM
func (ShipmentModel) TableName() string {
	return "shipments"
}

// ToDomain converts the persistence model to a domain Shipment
func (m *ShipmentModel) ToDomain() *order.Shipment {
	return &order.Shipment{
		ID:               m.ID,
		ShipmentNo:       m.ShipmentNo,
		OrderID:          m.OrderID,
		ReferenceNo:      m.ReferenceNo,
		SKU:              m.SKU,
		ProductName:      m.ProductName,
		Quantity:         m.Quantity,
		UnitValue:        m.UnitValue,
		ConsigneeName:    m.ConsigneeName,
		Kana:             m.Kana,
		PostalCode:       m.PostalCode,
		Address:          m.Address,
		ShipmentLocation: m.ShipmentLocation,
		Status:           order.ShipmentStatus(m.Status),
		TrackingNumber:   m.TrackingNumber,
		Weight:           m.Weight,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// ShipmentModelFromDomain creates a persistence model from a domain Shipment
func ShipmentModelFromDomain(s *order.Shipment) *ShipmentModel {
	m := &ShipmentModel{
		ID:               s.ID,
		ShipmentNo:       s.ShipmentNo,
		OrderID:          s.OrderID,
		ReferenceNo:      s.ReferenceNo,
		SKU:              s.SKU,
		ProductName:      s.ProductName,
		Quantity:         s.Quantity,
		UnitValue:        s.UnitValue,
		ConsigneeName:    s.ConsigneeName,
		Kana:             s.Kana,
		PostalCode:       s.PostalCode,
		Address:          s.Address,
		ShipmentLocation: s.ShipmentLocation,
		Status:           string(s.Status),
		TrackingNumber:   s.TrackingNumber,
		Weight:           s.Weight,
	}
	m.touch(s.CreatedAt, s.UpdatedAt)
	return m
}
