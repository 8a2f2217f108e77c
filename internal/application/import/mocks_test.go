package importapp

import (
	"context"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/stretchr/testify/mock"
)

// MockListingRepository is a mock implementation of catalog.ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) FindBySalesCode(ctx context.Context, salesCode string) (*catalog.Listing, error) {
	args := m.Called(ctx, salesCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Listing), args.Error(1)
}

func (m *MockListingRepository) UpdatePrice(ctx context.Context, update catalog.PriceUpdate) (bool, error) {
	args := m.Called(ctx, update)
	return args.Bool(0), args.Error(1)
}

// MockInventoryRepository is a mock implementation of catalog.InventoryRepository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) FindByProductCode(ctx context.Context, code string) (*catalog.InventoryRecord, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) Upsert(ctx context.Context, records []catalog.InventoryRecord) error {
	return m.Called(ctx, records).Error(0)
}

func listingScope(listings *MockListingRepository) orderapp.TransactionScope {
	return orderapp.NewNoOpTransactionScope(nil, nil, listings, nil)
}

func inventoryScope(inventory *MockInventoryRepository) orderapp.TransactionScope {
	return orderapp.NewNoOpTransactionScope(nil, nil, nil, inventory)
}
