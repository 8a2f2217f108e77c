package orderapp

import (
	"context"
	"time"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	csvimport "github.com/orderops/backend/internal/infrastructure/import"
	"github.com/orderops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// IngestResult is the reconciliation summary of one upload
type IngestResult struct {
	Marketplace order.Marketplace    `json:"marketplace"`
	Total       int                  `json:"total"`
	Success     int                  `json:"success"`
	Error       int                  `json:"error"`
	Duplicates  []DuplicateReference `json:"duplicate_errors"`
}

// IngestObserver is notified after every ingestion attempt
type IngestObserver interface {
	ObserveIngest(marketplace string, accepted, duplicates int, elapsed time.Duration, err error)
}

// IngestService takes marketplace exports from upload to stored orders
type IngestService struct {
	scope      TransactionScope
	normalizer *Normalizer
	gate       *DeduplicationGate
	observer   IngestObserver
	logger     *zap.Logger
}

// IngestOption configures an IngestService
type IngestOption func(*IngestService)

// WithIngestObserver attaches an observer, typically metrics
func WithIngestObserver(o IngestObserver) IngestOption {
	return func(s *IngestService) {
		s.observer = o
	}
}

// NewIngestService creates an IngestService
func NewIngestService(scope TransactionScope, normalizer *Normalizer, logger *zap.Logger, opts ...IngestOption) *IngestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &IngestService{
		scope:      scope,
		normalizer: normalizer,
		gate:       NewDeduplicationGate(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest detects, normalizes, deduplicates and stores one upload. Loading the
// known references and inserting the accepted rows happen in one transaction:
// either every accepted row is stored or none is.
func (s *IngestService) Ingest(ctx context.Context, marketplace order.Marketplace, files []csvimport.File) (result *IngestResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "order", "ingest",
		telemetry.WithAttribute(telemetry.SpanAttrMarketplace, string(marketplace)),
		telemetry.WithAttribute(telemetry.SpanAttrFiles, len(files)),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		telemetry.RecordError(span, err)
		if result != nil {
			telemetry.SetAttributes(span,
				telemetry.SpanAttrAccepted, result.Success,
				telemetry.SpanAttrDuplicates, result.Error,
			)
		}
		if s.observer != nil {
			accepted, dups := 0, 0
			if result != nil {
				accepted, dups = result.Success, result.Error
			}
			s.observer.ObserveIngest(string(marketplace), accepted, dups, time.Since(start), err)
		}
	}()

	set, err := csvimport.DetectOrderFiles(marketplace, files)
	if err != nil {
		return nil, err
	}

	raws, err := s.normalizer.Normalize(ctx, set)
	if err != nil {
		return nil, err
	}

	result = &IngestResult{Marketplace: marketplace, Total: len(raws)}
	txErr := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		known, err := repos.OrderRepo().ReferenceNumbers(ctx)
		if err != nil {
			return err
		}

		accepted, duplicates := s.gate.Partition(raws, known)
		orders, err := buildOrders(accepted)
		if err != nil {
			return err
		}
		if len(orders) > 0 {
			if err := repos.OrderRepo().CreateBatch(ctx, orders); err != nil {
				return err
			}
		}

		result.Success = len(orders)
		result.Error = len(duplicates)
		result.Duplicates = duplicates
		if len(duplicates) > 0 {
			telemetry.AddEvent(span, "duplicates_skipped", "count", len(duplicates))
		}
		return nil
	})
	if txErr != nil {
		s.logger.Error("Order ingestion rolled back",
			zap.String("marketplace", string(marketplace)),
			zap.Int("rows", len(raws)),
			zap.Error(txErr),
		)
		return nil, shared.NewPersistenceError("ingest orders", txErr)
	}

	s.logger.Info("Orders ingested",
		zap.String("marketplace", string(marketplace)),
		zap.Int("total", result.Total),
		zap.Int("success", result.Success),
		zap.Int("duplicates", result.Error),
	)
	return result, nil
}

// buildOrders numbers the lines of each reference in upload order
func buildOrders(raws []order.RawOrder) ([]*order.Order, error) {
	lines := make(map[string]int, len(raws))
	orders := make([]*order.Order, 0, len(raws))
	for _, raw := range raws {
		o, err := order.NewOrderFromRaw(raw, lines[raw.ReferenceNo])
		if err != nil {
			return nil, err
		}
		lines[raw.ReferenceNo]++
		orders = append(orders, o)
	}
	return orders, nil
}
