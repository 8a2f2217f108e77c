package persistence

import (
	"context"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/order"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction bound to ctx.
// An error from fn, or a cancelled ctx, rolls the transaction back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos orderapp.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories hands out repositories bound to one transaction.
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) OrderRepo() order.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

func (r *gormTransactionalRepositories) ShipmentRepo() order.ShipmentRepository {
	return NewGormShipmentRepository(r.tx)
}

func (r *gormTransactionalRepositories) ListingRepo() catalog.ListingRepository {
	return NewGormListingRepository(r.tx)
}

func (r *gormTransactionalRepositories) InventoryRepo() catalog.InventoryRepository {
	return NewGormInventoryRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ orderapp.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ orderapp.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
