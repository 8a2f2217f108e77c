package orderapp

import (
	"context"

	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/order"
)

// TransactionScope runs a unit of work against repositories that share one
// database transaction. A non-nil error from fn rolls the transaction back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to every repository a unit of work
// may touch. Reads made during a unit of work must go through these, never
// through repositories bound to the pool.
type TransactionalRepositories interface {
	OrderRepo() order.OrderRepository
	ShipmentRepo() order.ShipmentRepository
	ListingRepo() catalog.ListingRepository
	InventoryRepo() catalog.InventoryRepository
}

// NoOpTransactionScope runs units of work directly on the given repositories.
// Used in tests.
type NoOpTransactionScope struct {
	orders    order.OrderRepository
	shipments order.ShipmentRepository
	listings  catalog.ListingRepository
	inventory catalog.InventoryRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope
func NewNoOpTransactionScope(
	orders order.OrderRepository,
	shipments order.ShipmentRepository,
	listings catalog.ListingRepository,
	inventory catalog.InventoryRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orders:    orders,
		shipments: shipments,
		listings:  listings,
		inventory: inventory,
	}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// OrderRepo returns the order repository
func (s *NoOpTransactionScope) OrderRepo() order.OrderRepository {
	return s.orders
}

// ShipmentRepo returns the shipment repository
func (s *NoOpTransactionScope) ShipmentRepo() order.ShipmentRepository {
	return s.shipments
}

// ListingRepo returns the listing repository
func (s *NoOpTransactionScope) ListingRepo() catalog.ListingRepository {
	return s.listings
}

// InventoryRepo returns the inventory repository
func (s *NoOpTransactionScope) InventoryRepo() catalog.InventoryRepository {
	return s.inventory
}
