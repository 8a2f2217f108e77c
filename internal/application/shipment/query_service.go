package shipmentapp

import (
	"context"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
)

// ShipmentQueryService reads shipments
type ShipmentQueryService struct {
	shipments order.ShipmentRepository
}

// NewShipmentQueryService creates a ShipmentQueryService
func NewShipmentQueryService(shipments order.ShipmentRepository) *ShipmentQueryService {
	return &ShipmentQueryService{shipments: shipments}
}

// ListShipments returns a page of shipments, newest first
func (s *ShipmentQueryService) ListShipments(ctx context.Context, filter shared.Filter) (shared.Paginated[order.Shipment], error) {
	filter = filter.Normalize()
	items, total, err := s.shipments.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[order.Shipment]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.PageSize), nil
}
