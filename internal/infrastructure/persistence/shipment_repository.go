package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/orderops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormShipmentRepository implements order.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// CreateBatch inserts shipments and copies the generated ids back
func (r *GormShipmentRepository) CreateBatch(ctx context.Context, shipments []*order.Shipment) error {
	if len(shipments) == 0 {
		return nil
	}
	rows := make([]*models.ShipmentModel, len(shipments))
	for i, s := range shipments {
		rows[i] = models.ShipmentModelFromDomain(s)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, createBatchSize).Error; err != nil {
		return err
	}
	for i, row := range rows {
		shipments[i].ID = row.ID
	}
	return nil
}

// FindByShipmentNo finds a shipment by its number
func (r *GormShipmentRepository) FindByShipmentNo(ctx context.Context, shipmentNo string) (*order.Shipment, error) {
	var model models.ShipmentModel
	if err := r.db.WithContext(ctx).First(&model, "shipment_no = ?", shipmentNo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("shipment %s not found", shipmentNo))
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the shipments in the order of ids
func (r *GormShipmentRepository) FindByIDs(ctx context.Context, ids []int64) ([]order.Shipment, error) {
	if len(ids) == 0 {
		return []order.Shipment{}, nil
	}
	var rows []models.ShipmentModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.ShipmentModel, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	result := make([]order.Shipment, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("shipment %d not found", id))
		}
		result = append(result, *row.ToDomain())
	}
	return result, nil
}

// DeleteProcessingByOrderIDs removes processing shipments of orderIDs. Shipped
// rows are left alone.
func (r *GormShipmentRepository) DeleteProcessingByOrderIDs(ctx context.Context, orderIDs []int64) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Where("order_id IN ? AND status = ?", orderIDs, string(order.ShipmentStatusProcessing)).
		Delete(&models.ShipmentModel{})
	return result.RowsAffected, result.Error
}

// FindAll returns a page of shipments, newest first by default
func (r *GormShipmentRepository) FindAll(ctx context.Context, filter shared.Filter) ([]order.Shipment, int64, error) {
	filter = filter.Normalize()
	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{})

	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("shipment_no LIKE ? OR reference_no LIKE ? OR consignee_name LIKE ? OR tracking_number LIKE ?",
			like, like, like, like)
	}
	if loc := filter.Filters[order.FilterLocation]; loc != "" {
		query = query.Where("shipment_location = ?", loc)
	}
	if status := filter.Filters[order.FilterStatus]; status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ShipmentModel
	if err := query.
		Order(orderClause(filter, ShipmentSortFields, "id", "DESC")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	result := make([]order.Shipment, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, total, nil
}

// HasProcessingForConsignee reports whether another processing shipment
// exists for the consignee
func (r *GormShipmentRepository) HasProcessingForConsignee(ctx context.Context, name string, excludeOrderIDs []int64) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ShipmentModel{}).
		Where("consignee_name = ? AND status = ?", name, string(order.ShipmentStatusProcessing))
	if len(excludeOrderIDs) > 0 {
		query = query.Where("order_id NOT IN ?", excludeOrderIDs)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save writes every column of s
func (r *GormShipmentRepository) Save(ctx context.Context, s *order.Shipment) error {
	model := models.ShipmentModelFromDomain(s)
	model.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	s.UpdatedAt = model.UpdatedAt
	return nil
}

// Ensure GormShipmentRepository implements order.ShipmentRepository
var _ order.ShipmentRepository = (*GormShipmentRepository)(nil)
