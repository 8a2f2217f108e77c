package orderapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	csvimport "github.com/orderops/backend/internal/infrastructure/import"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	calls []observedIngest
}

type observedIngest struct {
	marketplace          string
	accepted, duplicates int
	err                  error
}

func (o *recordingObserver) ObserveIngest(marketplace string, accepted, duplicates int, _ time.Duration, err error) {
	o.calls = append(o.calls, observedIngest{marketplace, accepted, duplicates, err})
}

func TestIngestService_Ingest_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := &memoryOrderRepository{}
	svc := NewIngestService(newTestScope(repo), NewNormalizer(noLookup(), nil), nil)

	files := []csvimport.File{amazonFile(
		amazonRow("A1", "SKU-1", "1", "1000", "Taro Yamada"),
		amazonRow("A2", "SKU-2", "3", "500", "Hanako Sato"),
	)}

	first, err := svc.Ingest(ctx, order.MarketplaceAmazon, files)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Total)
	assert.Equal(t, 2, first.Success)
	assert.Equal(t, 0, first.Error)
	assert.Empty(t, first.Duplicates)

	second, err := svc.Ingest(ctx, order.MarketplaceAmazon, files)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Success)
	assert.Equal(t, 2, second.Error)
	require.Len(t, second.Duplicates, 2)
	assert.Equal(t, "A1", second.Duplicates[0].ReferenceNo)
	assert.Equal(t, "A2", second.Duplicates[1].ReferenceNo)

	assert.Equal(t, 2, repo.count(), "re-upload stores nothing")
}

func TestIngestService_Ingest_YahooLineNumbers(t *testing.T) {
	repo := &memoryOrderRepository{}
	svc := NewIngestService(newTestScope(repo), NewNormalizer(noLookup(), nil), nil)
	orderFile, productFile := yahooFiles(t, true)

	result, err := svc.Ingest(context.Background(), order.MarketplaceYahoo, []csvimport.File{productFile, orderFile})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Success)

	require.Len(t, repo.orders, 3)
	assert.Equal(t, "Y-100", repo.orders[0].ReferenceNo)
	assert.Equal(t, 0, repo.orders[0].LineNo)
	assert.Equal(t, "Y-100", repo.orders[1].ReferenceNo)
	assert.Equal(t, 1, repo.orders[1].LineNo)
	assert.Equal(t, 0, repo.orders[2].LineNo)
	for _, o := range repo.orders {
		assert.True(t, o.IsUnshipped())
		assert.NotZero(t, o.ID)
	}
}

func TestIngestService_Ingest_Errors(t *testing.T) {
	ctx := context.Background()
	files := []csvimport.File{amazonFile(amazonRow("A1", "SKU-1", "1", "1000", "Taro Yamada"))}

	t.Run("missing yahoo product file", func(t *testing.T) {
		svc := NewIngestService(newTestScope(&memoryOrderRepository{}), NewNormalizer(noLookup(), nil), nil)
		orderFile, _ := yahooFiles(t, false)
		_, err := svc.Ingest(ctx, order.MarketplaceYahoo, []csvimport.File{orderFile})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrValidation))
		assert.Contains(t, err.Error(), csvimport.RoleYahooProduct)
	})

	t.Run("insert failure rolls back with the underlying message", func(t *testing.T) {
		repo := new(MockOrderRepository)
		repo.On("ReferenceNumbers", mock.Anything).Return(map[string]struct{}{}, nil)
		repo.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("UNIQUE constraint failed: orders.reference_no"))

		observer := &recordingObserver{}
		svc := NewIngestService(newTestScope(repo), NewNormalizer(noLookup(), nil), nil, WithIngestObserver(observer))
		result, err := svc.Ingest(ctx, order.MarketplaceAmazon, files)

		assert.Nil(t, result)
		require.Error(t, err)
		assert.True(t, shared.IsPersistenceError(err))
		assert.Equal(t, "UNIQUE constraint failed: orders.reference_no", err.Error())
		require.Len(t, observer.calls, 1)
		assert.Error(t, observer.calls[0].err)
		repo.AssertExpectations(t)
	})

	t.Run("transaction failure", func(t *testing.T) {
		svc := NewIngestService(failingScope{err: errors.New("database is locked")}, NewNormalizer(noLookup(), nil), nil)
		_, err := svc.Ingest(ctx, order.MarketplaceAmazon, files)
		require.Error(t, err)
		assert.True(t, shared.IsPersistenceError(err))
		assert.Equal(t, "database is locked", err.Error())
	})
}

func TestIngestService_Ingest_Observer(t *testing.T) {
	observer := &recordingObserver{}
	svc := NewIngestService(newTestScope(&memoryOrderRepository{}), NewNormalizer(noLookup(), nil), nil, WithIngestObserver(observer))

	_, err := svc.Ingest(context.Background(), order.MarketplaceAmazon, []csvimport.File{
		amazonFile(amazonRow("A1", "SKU-1", "1", "1000", "Taro Yamada")),
	})
	require.NoError(t, err)
	require.Len(t, observer.calls, 1)
	assert.Equal(t, observedIngest{marketplace: "amazon", accepted: 1}, observer.calls[0])
}
