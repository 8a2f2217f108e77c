package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ShipmentStatus is the state of a shipment row
type ShipmentStatus string

const (
	ShipmentStatusProcessing ShipmentStatus = "processing"
	ShipmentStatusShipped    ShipmentStatus = "shipped"
)

// UnknownOrigin is recorded when no shipping origin can be resolved for an order
const UnknownOrigin = "n/a"

// Shipment is a physical parcel line created from an order
type Shipment struct {
	ID               int64           `json:"id"`
	ShipmentNo       string          `json:"shipment_no"`
	OrderID          int64           `json:"order_id"`
	ReferenceNo      string          `json:"reference_no"`
	SKU              string          `json:"sku"`
	ProductName      string          `json:"product_name"`
	Quantity         int             `json:"quantity"`
	UnitValue        decimal.Decimal `json:"unit_value"`
	ConsigneeName    string          `json:"consignee_name"`
	Kana             string          `json:"kana"`
	PostalCode       string          `json:"postal_code"`
	Address          string          `json:"address"`
	ShipmentLocation string          `json:"shipment_location"`
	Status           ShipmentStatus  `json:"status"`
	TrackingNumber   string          `json:"tracking_number"`
	Weight           decimal.Decimal `json:"weight"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewShipment creates a processing shipment for o leaving from origin
func NewShipment(o *Order, shipmentNo, origin string) *Shipment {
	if origin == "" {
		origin = UnknownOrigin
	}
	now := time.Now()
	return &Shipment{
		ShipmentNo:       shipmentNo,
		OrderID:          o.ID,
		ReferenceNo:      o.ReferenceNo,
		SKU:              o.SKU,
		ProductName:      o.ProductName,
		Quantity:         o.Quantity,
		UnitValue:        o.UnitValue,
		ConsigneeName:    o.ConsigneeName,
		Kana:             o.Kana,
		PostalCode:       o.PostalCode,
		Address:          o.Address,
		ShipmentLocation: origin,
		Status:           ShipmentStatusProcessing,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// ShipmentNumber formats the shipment number for the seq-th shipment of a batch
func ShipmentNumber(batchID string, seq int) string {
	return fmt.Sprintf("SH%s-%03d", batchID, seq)
}

// Complete records carrier data and moves the shipment to shipped
func (s *Shipment) Complete(trackingNumber string, weight decimal.Decimal) {
	s.TrackingNumber = trackingNumber
	s.Weight = weight
	s.Status = ShipmentStatusShipped
	s.UpdatedAt = time.Now()
}

// Reopen moves a shipped shipment back to processing. Carrier data is kept
// until the next completion overwrites it.
func (s *Shipment) Reopen() bool {
	if s.Status != ShipmentStatusShipped {
		return false
	}
	s.Status = ShipmentStatusProcessing
	s.UpdatedAt = time.Now()
	return true
}
