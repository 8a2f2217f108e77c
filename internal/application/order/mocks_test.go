package orderapp

import (
	"context"
	"sync"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockProductLookup is a mock implementation of ProductLookup
type MockProductLookup struct {
	mock.Mock
}

func (m *MockProductLookup) GetProductNameAndPrice(ctx context.Context, code string) (ProductInfo, bool, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(ProductInfo), args.Bool(1), args.Error(2)
}

// MockOrderRepository is a mock implementation of order.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) ReferenceNumbers(ctx context.Context) (map[string]struct{}, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}

func (m *MockOrderRepository) CreateBatch(ctx context.Context, orders []*order.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
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
	args := m.Called(ctx, o)
	return args.Error(0)
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
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.StateCounts), args.Error(1)
}

func (m *MockOrderRepository) PendingByDate(ctx context.Context, days int) ([]order.DailyCount, error) {
	args := m.Called(ctx, days)
	return args.Get(0).([]order.DailyCount), args.Error(1)
}

// memoryOrderRepository keeps orders in a slice so ingestion can be replayed
type memoryOrderRepository struct {
	MockOrderRepository
	mu     sync.Mutex
	orders []*order.Order
	nextID int64
}

func (r *memoryOrderRepository) ReferenceNumbers(_ context.Context) (map[string]struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	refs := make(map[string]struct{}, len(r.orders))
	for _, o := range r.orders {
		refs[o.ReferenceNo] = struct{}{}
	}
	return refs, nil
}

func (r *memoryOrderRepository) CreateBatch(_ context.Context, orders []*order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		r.nextID++
		o.ID = r.nextID
		r.orders = append(r.orders, o)
	}
	return nil
}

func (r *memoryOrderRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.orders)
}

func newTestScope(orders order.OrderRepository) *NoOpTransactionScope {
	return NewNoOpTransactionScope(orders, nil, nil, nil)
}

// failingScope runs nothing and returns err, as a rolled back transaction would
type failingScope struct {
	err error
}

func (s failingScope) Execute(_ context.Context, _ func(repos TransactionalRepositories) error) error {
	return s.err
}
