package shipmentapp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	ops []string
}

func (o *recordingObserver) ObserveShipmentOp(op string, _ int, _ time.Duration, _ error) {
	o.ops = append(o.ops, op)
}

func TestBatchManager_CreateShipments(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves origins and marks references shipping", func(t *testing.T) {
		r := newTestRepos()
		o1 := unshipped(1, "R1", "LISTED", 1)
		o2 := unshipped(2, "R1", "MASTER", 1)
		o3 := unshipped(3, "R2", "UNLISTED", 1)
		o3.ShipmentLocation = order.LocationAusKN
		o4 := unshipped(4, "R3", "", 1)

		r.orders.On("FindByIDs", mock.Anything, []int64{1, 2, 3, 4}).Return([]order.Order{o1, o2, o3, o4}, nil)
		r.listings.On("FindBySalesCode", mock.Anything, "LISTED").Return(&catalog.Listing{ShippingFrom: "nz_bis"}, nil)
		r.listings.On("FindBySalesCode", mock.Anything, "MASTER").Return(&catalog.Listing{MasterShippingFrom: "aus_kn"}, nil)
		r.listings.On("FindBySalesCode", mock.Anything, "UNLISTED").Return(nil, shared.ErrNotFound)

		var created []*order.Shipment
		r.shipments.On("CreateBatch", mock.Anything, mock.Anything).
			Run(func(args mock.Arguments) { created = args.Get(1).([]*order.Shipment) }).
			Return(nil)
		r.orders.On("AddStatusByReferences", mock.Anything, []string{"R1", "R2", "R3"}, order.StatusShipping).
			Return(int64(4), nil)

		observer := &recordingObserver{}
		result, err := newTestManager(r, WithObserver(observer)).CreateShipments(ctx, []int64{1, 2, 2, 3, 4})
		require.NoError(t, err)

		assert.Equal(t, 4, result.Count)
		assert.Equal(t, "1700000000000", result.BatchID)
		require.Len(t, created, 4)
		assert.Equal(t, "SH1700000000000-001", created[0].ShipmentNo)
		assert.Equal(t, "nz_bis", created[0].ShipmentLocation)
		assert.Equal(t, "aus_kn", created[1].ShipmentLocation)
		assert.Equal(t, "aus_kn", created[2].ShipmentLocation)
		assert.Equal(t, order.UnknownOrigin, created[3].ShipmentLocation)
		assert.Equal(t, order.ShipmentStatusProcessing, created[3].Status)
		assert.Equal(t, []string{OpCreate}, observer.ops)

		r.orders.AssertExpectations(t)
		r.inventory.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("order already shipping", func(t *testing.T) {
		r := newTestRepos()
		o := unshipped(1, "R1", "", 1)
		o.Status = order.StatusShipping
		r.orders.On("FindByIDs", mock.Anything, []int64{1}).Return([]order.Order{o}, nil)

		_, err := newTestManager(r).CreateShipments(ctx, []int64{1})
		assert.True(t, errors.Is(err, shared.ErrValidation))
		r.shipments.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	})

	t.Run("missing order", func(t *testing.T) {
		r := newTestRepos()
		r.orders.On("FindByIDs", mock.Anything, []int64{9}).Return(nil, shared.ErrNotFound)

		_, err := newTestManager(r).CreateShipments(ctx, []int64{9})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})

	t.Run("storage failure is a persistence error", func(t *testing.T) {
		r := newTestRepos()
		r.orders.On("FindByIDs", mock.Anything, []int64{1}).Return([]order.Order{unshipped(1, "R1", "", 1)}, nil)
		r.shipments.On("CreateBatch", mock.Anything, mock.Anything).Return(errors.New("UNIQUE constraint failed: shipments.shipment_no"))

		_, err := newTestManager(r).CreateShipments(ctx, []int64{1})
		require.Error(t, err)
		assert.True(t, shared.IsPersistenceError(err))
		assert.Equal(t, "UNIQUE constraint failed: shipments.shipment_no", err.Error())
	})

	t.Run("no ids", func(t *testing.T) {
		_, err := newTestManager(newTestRepos()).CreateShipments(ctx, nil)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestBatchManager_SplitShipment(t *testing.T) {
	ctx := context.Background()

	t.Run("conserves quantity", func(t *testing.T) {
		r := newTestRepos()
		o := unshipped(1, "R1", "S", 5)
		o.ShipmentBatch = strPtr("1600000000000")
		r.orders.On("FindByID", mock.Anything, int64(1)).Return(&o, nil)
		r.orders.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := newTestManager(r).SplitShipment(ctx, []SplitItem{{OrderID: 1, Quantity: 2}})
		require.NoError(t, err)
		require.Len(t, result.Orders, 1)

		split := result.Orders[0]
		assert.Equal(t, 2, split.Quantity)
		assert.Equal(t, 3, split.RemainingQuantity)
		assert.Equal(t, 5, split.Quantity+split.RemainingQuantity)
		assert.Equal(t, result.BatchID, split.BatchID())
		assert.Equal(t, "1600000000000", *split.OriginalBatch)
		assert.True(t, split.Status.Has(order.StatusPartiallyShipped))
	})

	t.Run("second split keeps the earlier remainder", func(t *testing.T) {
		r := newTestRepos()
		o := unshipped(1, "R1", "S", 10)
		o.ShipmentBatch = strPtr("1600000000000")
		r.orders.On("FindByID", mock.Anything, int64(1)).Return(&o, nil)
		r.orders.On("Save", mock.Anything, mock.Anything).Return(nil)

		m := newTestManager(r)
		_, err := m.SplitShipment(ctx, []SplitItem{{OrderID: 1, Quantity: 6}})
		require.NoError(t, err)
		result, err := m.SplitShipment(ctx, []SplitItem{{OrderID: 1, Quantity: 2}})
		require.NoError(t, err)

		split := result.Orders[0]
		assert.Equal(t, 2, split.Quantity)
		assert.Equal(t, 8, split.RemainingQuantity)
		assert.Equal(t, 10, split.Quantity+split.RemainingQuantity)
		assert.Equal(t, "1600000000000", *split.OriginalBatch)
	})

	t.Run("full quantity leaves no remainder", func(t *testing.T) {
		r := newTestRepos()
		o := unshipped(1, "R1", "S", 4)
		r.orders.On("FindByID", mock.Anything, int64(1)).Return(&o, nil)
		r.orders.On("Save", mock.Anything, mock.Anything).Return(nil)

		result, err := newTestManager(r).SplitShipment(ctx, []SplitItem{{OrderID: 1, Quantity: 4}})
		require.NoError(t, err)
		assert.Zero(t, result.Orders[0].RemainingQuantity)
		assert.False(t, result.Orders[0].Status.Has(order.StatusPartiallyShipped))
		assert.Nil(t, result.Orders[0].OriginalBatch)
	})

	for _, qty := range []int{0, -1, 6} {
		t.Run("rejects out of range quantity", func(t *testing.T) {
			r := newTestRepos()
			o := unshipped(1, "R1", "S", 5)
			r.orders.On("FindByID", mock.Anything, int64(1)).Return(&o, nil)

			_, err := newTestManager(r).SplitShipment(ctx, []SplitItem{{OrderID: 1, Quantity: qty}})
			assert.True(t, errors.Is(err, shared.ErrValidation))
			r.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}

	t.Run("repeated order", func(t *testing.T) {
		_, err := newTestManager(newTestRepos()).SplitShipment(ctx, []SplitItem{{OrderID: 1, Quantity: 1}, {OrderID: 1, Quantity: 1}})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestBatchManager_MergeShipment(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns one fresh batch", func(t *testing.T) {
		r := newTestRepos()
		r.orders.On("FindByIDs", mock.Anything, []int64{1, 2}).
			Return([]order.Order{unshipped(1, "R1", "S", 1), unshipped(2, "R2", "S", 1)}, nil)
		r.orders.On("SetBatch", mock.Anything, []int64{1, 2}, mock.MatchedBy(func(b *string) bool {
			return b != nil && *b == "1700000000000"
		})).Return(int64(2), nil)

		batchID, err := newTestManager(r).MergeShipment(ctx, []int64{1, 2})
		require.NoError(t, err)
		assert.Equal(t, "1700000000000", batchID)
		r.orders.AssertExpectations(t)
	})

	t.Run("conflict names every batched reference and changes nothing", func(t *testing.T) {
		r := newTestRepos()
		a := unshipped(1, "R1", "S", 1)
		a.ShipmentBatch = strPtr("111")
		b := unshipped(2, "R2", "S", 1)
		c := unshipped(3, "R3", "S", 1)
		c.ShipmentBatch = strPtr("222")
		r.orders.On("FindByIDs", mock.Anything, []int64{1, 2, 3}).Return([]order.Order{a, b, c}, nil)

		_, err := newTestManager(r).MergeShipment(ctx, []int64{1, 2, 3})
		require.Error(t, err)
		assert.True(t, errors.Is(err, shared.ErrMergeConflict))
		assert.Contains(t, err.Error(), "R1, R3")
		assert.NotContains(t, err.Error(), "R2")
		r.orders.AssertNotCalled(t, "SetBatch", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("needs two distinct orders", func(t *testing.T) {
		_, err := newTestManager(newTestRepos()).MergeShipment(ctx, []int64{1, 1})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("unknown order", func(t *testing.T) {
		r := newTestRepos()
		r.orders.On("FindByIDs", mock.Anything, []int64{1, 99}).Return(nil, shared.ErrNotFound)
		_, err := newTestManager(r).MergeShipment(ctx, []int64{1, 99})
		assert.True(t, errors.Is(err, shared.ErrNotFound))
	})
}

func TestBatchManager_CancelMerge(t *testing.T) {
	ctx := context.Background()

	t.Run("clears every sibling", func(t *testing.T) {
		r := newTestRepos()
		o := unshipped(1, "R1", "S", 1)
		o.ShipmentBatch = strPtr("555")
		sibling := unshipped(2, "R2", "S", 1)
		sibling.ShipmentBatch = strPtr("555")

		r.orders.On("FindByID", mock.Anything, int64(1)).Return(&o, nil)
		r.orders.On("FindByBatch", mock.Anything, "555").Return([]order.Order{o, sibling}, nil)
		r.orders.On("SetBatch", mock.Anything, []int64{1, 2}, (*string)(nil)).Return(int64(2), nil)

		cleared, err := newTestManager(r).CancelMerge(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), cleared)
	})

	t.Run("order without batch", func(t *testing.T) {
		r := newTestRepos()
		o := unshipped(1, "R1", "S", 1)
		r.orders.On("FindByID", mock.Anything, int64(1)).Return(&o, nil)

		_, err := newTestManager(r).CancelMerge(ctx, 1)
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestBatchManager_UpdateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates across the batch", func(t *testing.T) {
		r := newTestRepos()
		o := unshipped(1, "R1", "S", 1)
		o.ShipmentBatch = strPtr("777")
		r.orders.On("FindByID", mock.Anything, int64(1)).Return(&o, nil)
		r.orders.On("FindByBatch", mock.Anything, "777").
			Return([]order.Order{o, unshipped(2, "R2", "S", 1), unshipped(3, "R3", "S", 1)}, nil)
		r.orders.On("SetLocation", mock.Anything, []int64{1, 2, 3}, order.LocationNZBis).Return(int64(3), nil)

		updated, err := newTestManager(r).UpdateLocation(ctx, 1, order.LocationNZBis)
		require.NoError(t, err)
		assert.Equal(t, int64(3), updated)
	})

	t.Run("single order", func(t *testing.T) {
		r := newTestRepos()
		o := unshipped(4, "R4", "S", 1)
		r.orders.On("FindByID", mock.Anything, int64(4)).Return(&o, nil)
		r.orders.On("SetLocation", mock.Anything, []int64{4}, order.LocationAusKN).Return(int64(1), nil)

		updated, err := newTestManager(r).UpdateLocation(ctx, 4, order.LocationAusKN)
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated)
		r.orders.AssertNotCalled(t, "FindByBatch", mock.Anything, mock.Anything)
	})

	t.Run("unknown location", func(t *testing.T) {
		_, err := newTestManager(newTestRepos()).UpdateLocation(ctx, 1, order.Location("mars"))
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}

func TestBatchManager_ReviewShipments(t *testing.T) {
	ctx := context.Background()

	t.Run("computes flags", func(t *testing.T) {
		r := newTestRepos()
		cheap := unshipped(1, "R1", "SET2", 3)
		pricey := unshipped(2, "R2", "SOLO", 1)
		pricey.ConsigneeName = "Hanako Sato"
		pricey.UnitValue = decimal.NewFromInt(16501)

		r.orders.On("FindByIDs", mock.Anything, []int64{1, 2}).Return([]order.Order{cheap, pricey}, nil)
		r.listings.On("FindBySalesCode", mock.Anything, "SET2").
			Return(&catalog.Listing{SalesCode: "SET2", ProductCode: "P1", SetQty: 2, ShippingFrom: "nz_bis"}, nil)
		r.listings.On("FindBySalesCode", mock.Anything, "SOLO").
			Return(&catalog.Listing{SalesCode: "SOLO", ProductCode: "P2", MasterShippingFrom: "aus_kn"}, nil)
		r.inventory.On("FindByProductCode", mock.Anything, "P1").
			Return(&catalog.InventoryRecord{ProductCode: "P1", NZStock: 5, AusStock: 100}, nil)
		r.inventory.On("FindByProductCode", mock.Anything, "P2").Return(nil, shared.ErrNotFound)
		r.shipments.On("HasProcessingForConsignee", mock.Anything, "Taro Yamada", []int64{1, 2}).Return(true, nil)
		r.shipments.On("HasProcessingForConsignee", mock.Anything, "Hanako Sato", []int64{1, 2}).Return(false, nil)

		results, err := newTestManager(r).ReviewShipments(ctx, []int64{1, 2})
		require.NoError(t, err)
		require.Len(t, results, 2)

		first := results[0]
		assert.Equal(t, 6, first.Required)
		assert.Equal(t, 5, first.Stock)
		assert.True(t, first.LowInventory)
		assert.True(t, first.DuplicateConsignee)
		assert.False(t, first.HighPrice)
		assert.True(t, first.NeedsHumanCheck)

		second := results[1]
		assert.Equal(t, "aus_kn", second.ShippingFrom)
		assert.Equal(t, 1, second.SetQty)
		assert.Zero(t, second.Stock)
		assert.True(t, second.LowInventory)
		assert.True(t, second.HighPrice)
		assert.False(t, second.DuplicateConsignee)
	})

	t.Run("missing listing", func(t *testing.T) {
		r := newTestRepos()
		r.orders.On("FindByIDs", mock.Anything, []int64{1}).Return([]order.Order{unshipped(1, "R1", "GONE", 1)}, nil)
		r.listings.On("FindBySalesCode", mock.Anything, "GONE").Return(nil, shared.ErrNotFound)

		_, err := newTestManager(r).ReviewShipments(ctx, []int64{1})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})

	t.Run("listing without origin", func(t *testing.T) {
		r := newTestRepos()
		r.orders.On("FindByIDs", mock.Anything, []int64{1}).Return([]order.Order{unshipped(1, "R1", "NOWHERE", 1)}, nil)
		r.listings.On("FindBySalesCode", mock.Anything, "NOWHERE").Return(&catalog.Listing{SalesCode: "NOWHERE"}, nil)

		_, err := newTestManager(r).ReviewShipments(ctx, []int64{1})
		assert.True(t, errors.Is(err, shared.ErrValidation))
	})
}
