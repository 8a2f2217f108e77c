package shipmentapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/orderops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Shipment operation names reported to the observer
const (
	OpCreate      = "create"
	OpSplit       = "split"
	OpMerge       = "merge"
	OpCancelMerge = "cancel_merge"
	OpLocation    = "update_location"
	OpComplete    = "complete"
	OpCancel      = "cancel"
	OpReopen      = "cancel_completion"
)

// Observer is notified after every mutating batch operation
type Observer interface {
	ObserveShipmentOp(op string, affected int, elapsed time.Duration, err error)
}

// CreateResult is the outcome of CreateShipments
type CreateResult struct {
	Count     int              `json:"count"`
	BatchID   string           `json:"batch_id"`
	Shipments []order.Shipment `json:"shipments"`
}

// SplitItem asks for Quantity units of an order to ship now
type SplitItem struct {
	OrderID  int64 `json:"order_id" binding:"required"`
	Quantity int   `json:"quantity" binding:"required"`
}

// SplitResult is the outcome of SplitShipment
type SplitResult struct {
	BatchID string        `json:"batch_id"`
	Orders  []order.Order `json:"orders"`
}

// ReviewResult is the human-check preflight of one order
type ReviewResult struct {
	OrderID            int64           `json:"order_id"`
	ReferenceNo        string          `json:"reference_no"`
	SKU                string          `json:"sku"`
	ProductCode        string          `json:"product_code"`
	ShippingFrom       string          `json:"shipping_from"`
	Quantity           int             `json:"quantity"`
	SetQty             int             `json:"set_qty"`
	Required           int             `json:"required"`
	Stock              int             `json:"stock"`
	DeclaredTotal      decimal.Decimal `json:"declared_total"`
	LowInventory       bool            `json:"low_inventory"`
	DuplicateConsignee bool            `json:"duplicate_consignee"`
	HighPrice          bool            `json:"high_price"`
	NeedsHumanCheck    bool            `json:"needs_human_check"`
}

// BatchManager creates shipments and keeps orders grouped into batches.
// Every operation runs in one transaction; a failure leaves no row changed.
type BatchManager struct {
	scope     orderapp.TransactionScope
	ids       *order.BatchIDGenerator
	threshold decimal.Decimal
	observer  Observer
	logger    *zap.Logger
}

// Option configures a BatchManager
type Option func(*BatchManager)

// WithObserver attaches an observer, typically metrics
func WithObserver(o Observer) Option {
	return func(m *BatchManager) {
		m.observer = o
	}
}

// WithBatchIDGenerator replaces the batch id source
func WithBatchIDGenerator(g *order.BatchIDGenerator) Option {
	return func(m *BatchManager) {
		m.ids = g
	}
}

// NewBatchManager creates a BatchManager. threshold is the declared value
// above which review flags an order as high priced.
func NewBatchManager(scope orderapp.TransactionScope, threshold decimal.Decimal, logger *zap.Logger, opts ...Option) *BatchManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !threshold.IsPositive() {
		threshold = orderapp.DefaultCustomsRiskThreshold
	}
	m := &BatchManager{
		scope:     scope,
		ids:       order.NewBatchIDGenerator(),
		threshold: threshold,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateShipments inserts one processing shipment per order and marks every
// order sharing a reference with them as shipping. Inventory is not touched.
func (m *BatchManager) CreateShipments(ctx context.Context, orderIDs []int64) (result *CreateResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", OpCreate)
	defer span.End()
	start := time.Now()
	defer func() { m.observe(span, OpCreate, start, resultCount(result), err) }()

	ids, err := distinctIDs(orderIDs, 1)
	if err != nil {
		return nil, err
	}

	batchID := m.ids.Next()
	result = &CreateResult{BatchID: batchID}
	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		orders, err := repos.OrderRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		shipments := make([]*order.Shipment, 0, len(orders))
		refs := make([]string, 0, len(orders))
		seen := make(map[string]struct{}, len(orders))
		for i := range orders {
			o := &orders[i]
			if !o.IsUnshipped() {
				return shared.NewValidationError(fmt.Sprintf("order %s (id %d) already has a shipment", o.ReferenceNo, o.ID))
			}
			origin, err := shippingOrigin(ctx, repos.ListingRepo(), o)
			if err != nil {
				return err
			}
			shipments = append(shipments, order.NewShipment(o, order.ShipmentNumber(batchID, i+1), origin))
			if _, dup := seen[o.ReferenceNo]; !dup {
				seen[o.ReferenceNo] = struct{}{}
				refs = append(refs, o.ReferenceNo)
			}
		}

		if err := repos.ShipmentRepo().CreateBatch(ctx, shipments); err != nil {
			return err
		}
		if _, err := repos.OrderRepo().AddStatusByReferences(ctx, refs, order.StatusShipping); err != nil {
			return err
		}

		result.Count = len(shipments)
		result.Shipments = make([]order.Shipment, len(shipments))
		for i, s := range shipments {
			result.Shipments[i] = *s
		}
		return nil
	})
	if err != nil {
		return nil, m.wrap("create shipments", err)
	}

	m.logger.Info("Shipments created", zap.String("batch_id", batchID), zap.Int("count", result.Count))
	return result, nil
}

// SplitShipment moves the requested quantity of each order into one new batch.
// What is left over stays on the order as RemainingQuantity.
func (m *BatchManager) SplitShipment(ctx context.Context, items []SplitItem) (result *SplitResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", OpSplit)
	defer span.End()
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = len(result.Orders)
		}
		m.observe(span, OpSplit, start, n, err)
	}()

	if len(items) == 0 {
		return nil, shared.NewValidationError("no split items given")
	}
	seen := make(map[int64]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.OrderID]; dup {
			return nil, shared.NewValidationError(fmt.Sprintf("order %d appears more than once", it.OrderID))
		}
		seen[it.OrderID] = struct{}{}
	}

	batchID := m.ids.Next()
	result = &SplitResult{BatchID: batchID, Orders: make([]order.Order, 0, len(items))}
	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		for _, it := range items {
			o, err := repos.OrderRepo().FindByID(ctx, it.OrderID)
			if err != nil {
				return err
			}
			if err := o.Split(it.Quantity, batchID); err != nil {
				return err
			}
			if err := repos.OrderRepo().Save(ctx, o); err != nil {
				return err
			}
			result.Orders = append(result.Orders, *o)
		}
		return nil
	})
	if err != nil {
		return nil, m.wrap("split shipment", err)
	}

	m.logger.Info("Orders split", zap.String("batch_id", batchID), zap.Int("orders", len(result.Orders)))
	return result, nil
}

// MergeShipment puts two or more unbatched orders into one fresh batch. If any
// order is already batched nothing changes and the conflict names every
// offending reference.
func (m *BatchManager) MergeShipment(ctx context.Context, orderIDs []int64) (batchID string, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", OpMerge)
	defer span.End()
	start := time.Now()
	affected := 0
	defer func() { m.observe(span, OpMerge, start, affected, err) }()

	ids, err := distinctIDs(orderIDs, 2)
	if err != nil {
		return "", err
	}

	candidate := m.ids.Next()
	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		orders, err := repos.OrderRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		var conflicts []string
		for _, o := range orders {
			if !o.IsUnshipped() {
				return shared.NewValidationError(fmt.Sprintf("order %s (id %d) already has a shipment", o.ReferenceNo, o.ID))
			}
			if o.InBatch() {
				conflicts = append(conflicts, o.ReferenceNo)
			}
		}
		if len(conflicts) > 0 {
			return shared.NewMergeConflictError(fmt.Sprintf(
				"orders already belong to a shipment batch: %s", strings.Join(conflicts, ", ")))
		}

		n, err := repos.OrderRepo().SetBatch(ctx, ids, &candidate)
		if err != nil {
			return err
		}
		affected = int(n)
		return nil
	})
	if err != nil {
		return "", m.wrap("merge shipment", err)
	}

	m.logger.Info("Orders merged", zap.String("batch_id", candidate), zap.Int("orders", affected))
	return candidate, nil
}

// CancelMerge dissolves the batch of orderID and returns how many orders left it
func (m *BatchManager) CancelMerge(ctx context.Context, orderID int64) (cleared int64, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", OpCancelMerge)
	defer span.End()
	start := time.Now()
	defer func() { m.observe(span, OpCancelMerge, start, int(cleared), err) }()

	var batchID string
	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if !o.InBatch() {
			return shared.NewValidationError(fmt.Sprintf("order %s is not part of a shipment batch", o.ReferenceNo))
		}
		batchID = o.BatchID()

		ids, err := batchMemberIDs(ctx, repos.OrderRepo(), batchID)
		if err != nil {
			return err
		}
		cleared, err = repos.OrderRepo().SetBatch(ctx, ids, nil)
		return err
	})
	if err != nil {
		return 0, m.wrap("cancel merge", err)
	}

	m.logger.Info("Merge cancelled", zap.String("batch_id", batchID), zap.Int64("cleared", cleared))
	return cleared, nil
}

// UpdateLocation sets the shipment location of an order, or of its whole batch
// when the order is batched. Returns the number of orders updated.
func (m *BatchManager) UpdateLocation(ctx context.Context, orderID int64, location order.Location) (updated int64, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", OpLocation)
	defer span.End()
	start := time.Now()
	defer func() { m.observe(span, OpLocation, start, int(updated), err) }()

	if !location.IsValid() {
		return 0, shared.NewValidationError(fmt.Sprintf("unknown shipment location %q", location))
	}

	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		o, err := repos.OrderRepo().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		ids := []int64{o.ID}
		if o.InBatch() {
			if ids, err = batchMemberIDs(ctx, repos.OrderRepo(), o.BatchID()); err != nil {
				return err
			}
		}
		updated, err = repos.OrderRepo().SetLocation(ctx, ids, location)
		return err
	})
	if err != nil {
		return 0, m.wrap("update location", err)
	}

	m.logger.Info("Shipment location updated",
		zap.Int64("order_id", orderID),
		zap.String("location", location.String()),
		zap.Int64("updated", updated),
	)
	return updated, nil
}

// ReviewShipments computes the human-check flags for orders about to ship.
// Nothing is written.
func (m *BatchManager) ReviewShipments(ctx context.Context, orderIDs []int64) ([]ReviewResult, error) {
	ids, err := distinctIDs(orderIDs, 1)
	if err != nil {
		return nil, err
	}

	var results []ReviewResult
	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		orders, err := repos.OrderRepo().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		stock := NewLocationResolver(repos.InventoryRepo())

		results = make([]ReviewResult, 0, len(orders))
		for i := range orders {
			o := &orders[i]
			listing, err := repos.ListingRepo().FindBySalesCode(ctx, o.SKU)
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewValidationError(fmt.Sprintf("no sales listing for sku %q (order %s)", o.SKU, o.ReferenceNo))
			}
			if err != nil {
				return err
			}
			origin := listing.Origin()
			if origin == "" {
				return shared.NewValidationError(fmt.Sprintf("sales listing %q has no shipping origin", o.SKU))
			}

			available, err := stock.ResolveStock(ctx, listing.ProductCode, origin)
			if err != nil {
				return err
			}
			duplicate, err := repos.ShipmentRepo().HasProcessingForConsignee(ctx, o.ConsigneeName, ids)
			if err != nil {
				return err
			}

			r := ReviewResult{
				OrderID:            o.ID,
				ReferenceNo:        o.ReferenceNo,
				SKU:                o.SKU,
				ProductCode:        listing.ProductCode,
				ShippingFrom:       origin,
				Quantity:           o.Quantity,
				SetQty:             listing.UnitsPerOrder(),
				Required:           o.Quantity * listing.UnitsPerOrder(),
				Stock:              available,
				DeclaredTotal:      o.DeclaredTotal(),
				DuplicateConsignee: duplicate,
			}
			r.LowInventory = r.Stock < r.Required
			r.HighPrice = r.DeclaredTotal.GreaterThan(m.threshold)
			r.NeedsHumanCheck = r.LowInventory || r.DuplicateConsignee || r.HighPrice
			results = append(results, r)
		}
		return nil
	})
	if err != nil {
		return nil, m.wrap("review shipments", err)
	}
	return results, nil
}

// shippingOrigin prefers the listing's origin, then the product master's, then
// the location already assigned to the order
func shippingOrigin(ctx context.Context, listings catalog.ListingRepository, o *order.Order) (string, error) {
	if o.SKU != "" {
		listing, err := listings.FindBySalesCode(ctx, o.SKU)
		switch {
		case err == nil:
			if origin := listing.Origin(); origin != "" {
				return origin, nil
			}
		case !errors.Is(err, shared.ErrNotFound):
			return "", err
		}
	}
	if o.ShipmentLocation != "" {
		return o.ShipmentLocation.String(), nil
	}
	return order.UnknownOrigin, nil
}

func batchMemberIDs(ctx context.Context, orders order.OrderRepository, batchID string) ([]int64, error) {
	members, err := orders.FindByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(members))
	for i, o := range members {
		ids[i] = o.ID
	}
	return ids, nil
}

// distinctIDs drops repeated ids and requires at least atLeast of them
func distinctIDs(ids []int64, atLeast int) ([]int64, error) {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("invalid id %d", id))
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) < atLeast {
		if atLeast == 1 {
			return nil, shared.NewValidationError("no ids given")
		}
		return nil, shared.NewValidationError(fmt.Sprintf("at least %d distinct ids are required", atLeast))
	}
	return out, nil
}

// wrap keeps domain errors as they are and marks everything else as a storage failure
func (m *BatchManager) wrap(op string, err error) error {
	var de *shared.DomainError
	if errors.As(err, &de) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	m.logger.Error("Shipment operation rolled back", zap.String("op", op), zap.Error(err))
	return shared.NewPersistenceError(op, err)
}

func (m *BatchManager) observe(span trace.Span, op string, start time.Time, affected int, err error) {
	telemetry.SetAttribute(span, telemetry.SpanAttrAffected, affected)
	telemetry.RecordError(span, err)
	if m.observer != nil {
		m.observer.ObserveShipmentOp(op, affected, time.Since(start), err)
	}
}

func resultCount(r *CreateResult) int {
	if r == nil {
		return 0
	}
	return r.Count
}
