package shipmentapp

import (
	"context"
	"time"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) ReferenceNumbers(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockOrderRepository) CreateBatch(ctx context.Context, orders []*order.Order) error {
	return m.Called(ctx, orders).Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDs(ctx context.Context, ids []int64) ([]order.Order, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByBatch(ctx context.Context, batchID string) ([]order.Order, error) {
	args := m.Called(ctx, batchID)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindUnshipped(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) FindAllUnshipped(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindWithRemainder(ctx context.Context) ([]order.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return m.Called(ctx, o).Error(0)
}

func (m *MockOrderRepository) SetBatch(ctx context.Context, ids []int64, batchID *string) (int64, error) {
	args := m.Called(ctx, ids, batchID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) SetLocation(ctx context.Context, ids []int64, location order.Location) (int64, error) {
	args := m.Called(ctx, ids, location)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) AddStatusByReferences(ctx context.Context, refs []string, flag order.Status) (int64, error) {
	args := m.Called(ctx, refs, flag)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) AddStatusByIDs(ctx context.Context, ids []int64, flag order.Status) (int64, error) {
	args := m.Called(ctx, ids, flag)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) RemoveStatusByIDs(ctx context.Context, ids []int64, flag order.Status) (int64, error) {
	args := m.Called(ctx, ids, flag)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) CountByState(ctx context.Context) (*order.StateCounts, error) {
	args := m.Called(ctx)
	return args.Get(0).(*order.StateCounts), args.Error(1)
}

func (m *MockOrderRepository) PendingByDate(ctx context.Context, days int) ([]order.DailyCount, error) {
	args := m.Called(ctx, days)
	return args.Get(0).([]order.DailyCount), args.Error(1)
}

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) CreateBatch(ctx context.Context, shipments []*order.Shipment) error {
	return m.Called(ctx, shipments).Error(0)
}

func (m *MockShipmentRepository) FindByShipmentNo(ctx context.Context, shipmentNo string) (*order.Shipment, error) {
	args := m.Called(ctx, shipmentNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) FindByIDs(ctx context.Context, ids []int64) ([]order.Shipment, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) DeleteProcessingByOrderIDs(ctx context.Context, orderIDs []int64) (int64, error) {
	args := m.Called(ctx, orderIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Shipment, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]order.Shipment), args.Get(1).(int64), args.Error(2)
}

func (m *MockShipmentRepository) HasProcessingForConsignee(ctx context.Context, name string, excludeOrderIDs []int64) (bool, error) {
	args := m.Called(ctx, name, excludeOrderIDs)
	return args.Bool(0), args.Error(1)
}

func (m *MockShipmentRepository) Save(ctx context.Context, s *order.Shipment) error {
	return m.Called(ctx, s).Error(0)
}

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

type testRepos struct {
	orders    *MockOrderRepository
	shipments *MockShipmentRepository
	listings  *MockListingRepository
	inventory *MockInventoryRepository
}

func newTestRepos() *testRepos {
	return &testRepos{
		orders:    new(MockOrderRepository),
		shipments: new(MockShipmentRepository),
		listings:  new(MockListingRepository),
		inventory: new(MockInventoryRepository),
	}
}

func (r *testRepos) scope() orderapp.TransactionScope {
	return orderapp.NewNoOpTransactionScope(r.orders, r.shipments, r.listings, r.inventory)
}

// fixedClock makes batch ids predictable: 1700000000000, 1700000000001, ...
func fixedClock() *order.BatchIDGenerator {
	return order.NewBatchIDGeneratorWithClock(func() time.Time {
		return time.UnixMilli(1700000000000)
	})
}

func newTestManager(r *testRepos, opts ...Option) *BatchManager {
	opts = append([]Option{WithBatchIDGenerator(fixedClock())}, opts...)
	return NewBatchManager(r.scope(), decimal.NewFromInt(16500), nil, opts...)
}

func strPtr(s string) *string {
	return &s
}

func unshipped(id int64, ref, sku string, qty int) order.Order {
	return order.Order{
		ID:            id,
		ReferenceNo:   ref,
		SKU:           sku,
		Quantity:      qty,
		UnitValue:     decimal.NewFromInt(1000),
		ConsigneeName: "Taro Yamada",
	}
}
