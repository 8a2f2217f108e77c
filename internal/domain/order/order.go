package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/orderops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Marketplace identifies the source of an order export
type Marketplace string

const (
	MarketplaceYahoo  Marketplace = "yahoo"
	MarketplaceAmazon Marketplace = "amazon"
)

// ParseMarketplace validates a marketplace name
func ParseMarketplace(s string) (Marketplace, error) {
	m := Marketplace(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MarketplaceYahoo, MarketplaceAmazon:
		return m, nil
	}
	return "", shared.NewValidationError(fmt.Sprintf("unsupported marketplace %q", s))
}

// RawOrder is one normalized line of a marketplace export, before persistence
type RawOrder struct {
	Marketplace         Marketplace     `json:"marketplace"`
	ReferenceNo         string          `json:"reference_no"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	OriginalProductName string          `json:"original_product_name"`
	Quantity            int             `json:"quantity"`
	UnitValue           decimal.Decimal `json:"unit_value"`
	ConsigneeName       string          `json:"consignee_name"`
	Kana                string          `json:"kana,omitempty"`
	PostalCode          string          `json:"postal_code"`
	Address             string          `json:"address"`
	PhoneNumber         string          `json:"phone_number"`
}

// Order is a persisted order line
type Order struct {
	ID                  int64           `json:"id"`
	ReferenceNo         string          `json:"reference_no"`
	LineNo              int             `json:"line_no"`
	Marketplace         Marketplace     `json:"marketplace"`
	SKU                 string          `json:"sku"`
	ProductName         string          `json:"product_name"`
	OriginalProductName string          `json:"original_product_name"`
	Quantity            int             `json:"quantity"`
	UnitValue           decimal.Decimal `json:"unit_value"`
	ConsigneeName       string          `json:"consignee_name"`
	Kana                string          `json:"kana"`
	PostalCode          string          `json:"postal_code"`
	Address             string          `json:"address"`
	PhoneNumber         string          `json:"phone_number"`
	Status              Status          `json:"status"`
	ShipmentLocation    Location        `json:"shipment_location"`
	ShipmentBatch       *string         `json:"shipment_batch"`
	OriginalBatch       *string         `json:"original_batch"`
	RemainingQuantity   int             `json:"remaining_quantity"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// NewOrderFromRaw builds an unshipped order from a normalized row.
// lineNo is the position of the row among the rows sharing its reference.
func NewOrderFromRaw(raw RawOrder, lineNo int) (*Order, error) {
	if strings.TrimSpace(raw.ReferenceNo) == "" {
		return nil, shared.NewValidationError("reference number cannot be empty")
	}
	qty := raw.Quantity
	if qty < 1 {
		qty = 1
	}
	now := time.Now()
	return &Order{
		ReferenceNo:         raw.ReferenceNo,
		LineNo:              lineNo,
		Marketplace:         raw.Marketplace,
		SKU:                 raw.SKU,
		ProductName:         raw.ProductName,
		OriginalProductName: raw.OriginalProductName,
		Quantity:            qty,
		UnitValue:           raw.UnitValue,
		ConsigneeName:       raw.ConsigneeName,
		Kana:                raw.Kana,
		PostalCode:          raw.PostalCode,
		Address:             raw.Address,
		PhoneNumber:         raw.PhoneNumber,
		CreatedAt:           now,
		UpdatedAt:           now,
	}, nil
}

// IsUnshipped reports whether the order is still waiting for a shipment
func (o *Order) IsUnshipped() bool {
	return o.Status.IsUnshipped()
}

// InBatch reports whether the order currently belongs to a shipment batch
func (o *Order) InBatch() bool {
	return o.ShipmentBatch != nil && *o.ShipmentBatch != ""
}

// BatchID returns the batch id or an empty string
func (o *Order) BatchID() string {
	if o.ShipmentBatch == nil {
		return ""
	}
	return *o.ShipmentBatch
}

// DeclaredTotal returns quantity x unit value
func (o *Order) DeclaredTotal() decimal.Decimal {
	return o.UnitValue.Mul(decimal.NewFromInt(int64(o.Quantity)))
}

// Split replaces the shippable quantity with qty and moves the order into batchID.
// The difference is added to RemainingQuantity, so quantity plus remainder stays
// equal to what the order held before its first split. OriginalBatch keeps the
// batch the order had before that first split.
func (o *Order) Split(qty int, batchID string) error {
	if qty <= 0 {
		return shared.NewValidationError(fmt.Sprintf("split quantity for order %d must be positive", o.ID))
	}
	if qty > o.Quantity {
		return shared.NewValidationError(fmt.Sprintf(
			"split quantity %d exceeds quantity %d of order %d", qty, o.Quantity, o.ID))
	}
	if !o.IsUnshipped() {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("order %s is already shipping", o.ReferenceNo))
	}

	if o.OriginalBatch == nil {
		o.OriginalBatch = o.ShipmentBatch
	}
	batch := batchID
	o.ShipmentBatch = &batch
	o.RemainingQuantity += o.Quantity - qty
	o.Quantity = qty
	if o.RemainingQuantity > 0 {
		o.Status = o.Status.With(StatusPartiallyShipped)
	}
	o.UpdatedAt = time.Now()
	return nil
}

// MarkShipping adds the shipment marker
func (o *Order) MarkShipping() {
	o.Status = o.Status.With(StatusShipping)
	o.UpdatedAt = time.Now()
}

// CancelShipping takes the shipment marker off and puts the order back in the queue
func (o *Order) CancelShipping() error {
	if !o.Status.Has(StatusShipping) || o.Status.Has(StatusDispatched) {
		return shared.NewDomainError(shared.CodeInvalidState,
			fmt.Sprintf("order %s has no open shipment", o.ReferenceNo))
	}
	o.Status = o.Status.Without(StatusShipping).With(StatusOrdered)
	o.UpdatedAt = time.Now()
	return nil
}

// MarkDispatched adds the dispatched flag
func (o *Order) MarkDispatched() {
	o.Status = o.Status.With(StatusDispatched)
	o.UpdatedAt = time.Now()
}
