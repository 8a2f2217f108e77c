package order

import (
	"context"

	"github.com/orderops/backend/internal/domain/shared"
)

// Filter keys understood by OrderRepository.FindUnshipped and
// ShipmentRepository.FindAll
const (
	FilterMarketplace = "marketplace"
	FilterLocation    = "location"
	FilterStatus      = "status"
	FilterSortBy      = "sort_by"
	FilterSortOrder   = "sort_order"
)

// StateCounts groups orders by lifecycle state
type StateCounts struct {
	Unshipped  int64 `json:"unshipped"`
	Shipping   int64 `json:"shipping"`
	Dispatched int64 `json:"dispatched"`
}

// DailyCount is the number of orders created on one day
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// OrderRepository persists orders
type OrderRepository interface {
	// ReferenceNumbers returns every reference number ever stored
	ReferenceNumbers(ctx context.Context) (map[string]struct{}, error)
	// CreateBatch inserts new orders and fills in their ids
	CreateBatch(ctx context.Context, orders []*Order) error
	FindByID(ctx context.Context, id int64) (*Order, error)
	// FindByIDs returns the orders in ids order; a missing id is ErrNotFound
	FindByIDs(ctx context.Context, ids []int64) ([]Order, error)
	FindByBatch(ctx context.Context, batchID string) ([]Order, error)
	FindUnshipped(ctx context.Context, filter shared.Filter) ([]Order, int64, error)
	// FindAllUnshipped returns the whole unshipped working set, oldest first
	FindAllUnshipped(ctx context.Context) ([]Order, error)
	FindWithRemainder(ctx context.Context) ([]Order, error)
	Save(ctx context.Context, o *Order) error
	// SetBatch sets shipment_batch on every id; nil clears it
	SetBatch(ctx context.Context, ids []int64, batchID *string) (int64, error)
	SetLocation(ctx context.Context, ids []int64, location Location) (int64, error)
	// AddStatusByReferences ORs flag into the status of every order with one of refs
	AddStatusByReferences(ctx context.Context, refs []string, flag Status) (int64, error)
	AddStatusByIDs(ctx context.Context, ids []int64, flag Status) (int64, error)
	// RemoveStatusByIDs clears flag from the status of ids
	RemoveStatusByIDs(ctx context.Context, ids []int64, flag Status) (int64, error)
	CountByState(ctx context.Context) (*StateCounts, error)
	PendingByDate(ctx context.Context, days int) ([]DailyCount, error)
}

// ShipmentRepository persists shipments
type ShipmentRepository interface {
	CreateBatch(ctx context.Context, shipments []*Shipment) error
	FindByShipmentNo(ctx context.Context, shipmentNo string) (*Shipment, error)
	// FindByIDs returns the shipments in ids order; a missing id is ErrNotFound
	FindByIDs(ctx context.Context, ids []int64) ([]Shipment, error)
	// DeleteProcessingByOrderIDs removes the processing shipments of orderIDs
	DeleteProcessingByOrderIDs(ctx context.Context, orderIDs []int64) (int64, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Shipment, int64, error)
	// HasProcessingForConsignee reports whether a processing shipment exists for
	// name that does not belong to one of excludeOrderIDs
	HasProcessingForConsignee(ctx context.Context, name string, excludeOrderIDs []int64) (bool, error)
	Save(ctx context.Context, s *Shipment) error
}
