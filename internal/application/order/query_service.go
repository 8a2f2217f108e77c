package orderapp

import (
	"context"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
)

// DefaultPendingDays is how many days PendingByDate reports by default
const DefaultPendingDays = 30

// AnnotatedOrder is an unshipped order with its risk flags
type AnnotatedOrder struct {
	order.Order
	Risk Annotations `json:"risk"`
}

// UnshippedOrders is one page of the unshipped working set plus the risk report
// computed over the whole set
type UnshippedOrders struct {
	Page shared.Paginated[AnnotatedOrder] `json:"page"`
	Risk *RiskReport                      `json:"risk"`
}

// Summary is the dashboard view of the order book
type Summary struct {
	Counts *order.StateCounts `json:"counts"`
	Risk   *RiskReport        `json:"risk"`
}

// OrderQueryService answers read-only questions about orders
type OrderQueryService struct {
	orders   order.OrderRepository
	analyzer *RiskAnalyzer
}

// NewOrderQueryService creates an OrderQueryService
func NewOrderQueryService(orders order.OrderRepository, analyzer *RiskAnalyzer) *OrderQueryService {
	return &OrderQueryService{orders: orders, analyzer: analyzer}
}

// ListUnshipped returns a filtered page of unshipped orders annotated with risk flags
func (s *OrderQueryService) ListUnshipped(ctx context.Context, filter shared.Filter) (*UnshippedOrders, error) {
	filter = filter.Normalize()

	page, total, err := s.orders.FindUnshipped(ctx, filter)
	if err != nil {
		return nil, err
	}
	report, err := s.workingSetReport(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]AnnotatedOrder, len(page))
	for i, o := range page {
		items[i] = AnnotatedOrder{Order: o, Risk: report.AnnotationsFor(o.ID)}
	}

	return &UnshippedOrders{
		Page: shared.NewPaginated(items, total, filter.Page, filter.PageSize),
		Risk: report,
	}, nil
}

// Summary returns state counts and the risk report of the unshipped set
func (s *OrderQueryService) Summary(ctx context.Context) (*Summary, error) {
	counts, err := s.orders.CountByState(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.workingSetReport(ctx)
	if err != nil {
		return nil, err
	}
	return &Summary{Counts: counts, Risk: report}, nil
}

// PendingByDate counts unshipped orders per creation day, newest first
func (s *OrderQueryService) PendingByDate(ctx context.Context, days int) ([]order.DailyCount, error) {
	if days <= 0 {
		days = DefaultPendingDays
	}
	return s.orders.PendingByDate(ctx, days)
}

// ListRemainders returns orders whose split left quantity behind
func (s *OrderQueryService) ListRemainders(ctx context.Context) ([]order.Order, error) {
	return s.orders.FindWithRemainder(ctx)
}

func (s *OrderQueryService) workingSetReport(ctx context.Context) (*RiskReport, error) {
	all, err := s.orders.FindAllUnshipped(ctx)
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(ctx, all)
}
