package shipmentapp

import (
	"context"
	"time"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CancelResult is the outcome of CancelShipments
type CancelResult struct {
	Orders           int   `json:"orders"`
	RemovedShipments int64 `json:"removed_shipments"`
}

// ReopenResult is the outcome of CancelCompletion
type ReopenResult struct {
	Reopened int     `json:"reopened"`
	Skipped  []int64 `json:"skipped"`
}

// CancelShipments puts shipping orders back in the queue and removes their
// processing shipments. Only the given orders are touched, not other lines of
// the same reference. Any order without an open shipment rejects the call.
func (m *BatchManager) CancelShipments(ctx context.Context, orderIDs []int64) (result *CancelResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", OpCancel)
	defer span.End()
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = result.Orders
		}
		m.observe(span, OpCancel, start, n, err)
	}()

	ids, err := distinctIDs(orderIDs, 1)
	if err != nil {
		return nil, err
	}

	result = &CancelResult{}
	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		orders, err := repos.OrderRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for i := range orders {
			if err := orders[i].CancelShipping(); err != nil {
				return err
			}
		}
		for i := range orders {
			if err := repos.OrderRepo().Save(ctx, &orders[i]); err != nil {
				return err
			}
		}
		removed, err := repos.ShipmentRepo().DeleteProcessingByOrderIDs(ctx, ids)
		if err != nil {
			return err
		}
		result.Orders = len(orders)
		result.RemovedShipments = removed
		return nil
	})
	if err != nil {
		return nil, m.wrap("cancel shipments", err)
	}

	m.logger.Info("Shipments cancelled",
		zap.Int("orders", result.Orders),
		zap.Int64("removed_shipments", result.RemovedShipments),
	)
	return result, nil
}

// CancelCompletion moves shipped shipments back to processing and takes the
// dispatched flag off their orders. Shipments that are not shipped are
// reported in Skipped and left as they are.
func (m *BatchManager) CancelCompletion(ctx context.Context, shipmentIDs []int64) (result *ReopenResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", OpReopen)
	defer span.End()
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = result.Reopened
		}
		m.observe(span, OpReopen, start, n, err)
	}()

	ids, err := distinctIDs(shipmentIDs, 1)
	if err != nil {
		return nil, err
	}

	result = &ReopenResult{Skipped: []int64{}}
	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		shipments, err := repos.ShipmentRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		orderIDs := make([]int64, 0, len(shipments))
		for i := range shipments {
			s := &shipments[i]
			if !s.Reopen() {
				result.Skipped = append(result.Skipped, s.ID)
				continue
			}
			if err := repos.ShipmentRepo().Save(ctx, s); err != nil {
				return err
			}
			orderIDs = append(orderIDs, s.OrderID)
			result.Reopened++
		}
		if len(orderIDs) > 0 {
			if _, err := repos.OrderRepo().RemoveStatusByIDs(ctx, orderIDs, order.StatusDispatched); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, m.wrap("cancel completion", err)
	}

	m.logger.Info("Shipment completion cancelled",
		zap.Int("reopened", result.Reopened),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}
