package persistence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	"github.com/orderops/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// createBatchSize bounds the rows per INSERT; sqlite caps bound variables per statement
const createBatchSize = 100

// unshippedWhere selects orders with neither the shipping nor the dispatched flag
var unshippedWhere = fmt.Sprintf("(status & %d) = 0", order.StatusShipping|order.StatusDispatched)

// GormOrderRepository implements order.OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// ReferenceNumbers returns every stored reference number
func (r *GormOrderRepository) ReferenceNumbers(ctx context.Context) (map[string]struct{}, error) {
	var refs []string
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Distinct("reference_no").
		Pluck("reference_no", &refs).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(refs))
	for _, ref := range refs {
		set[ref] = struct{}{}
	}
	return set, nil
}

// CreateBatch inserts orders and copies the generated ids back
func (r *GormOrderRepository) CreateBatch(ctx context.Context, orders []*order.Order) error {
	if len(orders) == 0 {
		return nil
	}
	rows := make([]*models.OrderModel, len(orders))
	for i, o := range orders {
		rows[i] = models.OrderModelFromDomain(o)
	}
	if err := r.db.WithContext(ctx).CreateInBatches(rows, createBatchSize).Error; err != nil {
		return err
	}
	for i, row := range rows {
		orders[i].ID = row.ID
		orders[i].CreatedAt = row.CreatedAt
		orders[i].UpdatedAt = row.UpdatedAt
	}
	return nil
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	var model models.OrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orderNotFound(id)
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the orders in the order of ids
func (r *GormOrderRepository) FindByIDs(ctx context.Context, ids []int64) ([]order.Order, error) {
	if len(ids) == 0 {
		return []order.Order{}, nil
	}
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*models.OrderModel, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	result := make([]order.Order, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			return nil, orderNotFound(id)
		}
		result = append(result, *row.ToDomain())
	}
	return result, nil
}

// FindByBatch returns the members of a shipment batch
func (r *GormOrderRepository) FindByBatch(ctx context.Context, batchID string) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("shipment_batch = ?", batchID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// FindUnshipped returns a page of unshipped orders and the filtered total
func (r *GormOrderRepository) FindUnshipped(ctx context.Context, filter shared.Filter) ([]order.Order, int64, error) {
	filter = filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.OrderModel{}).Where(unshippedWhere), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.OrderModel
	if err := query.
		Order(orderClause(filter, OrderSortFields, "id", "ASC")).
		Offset(filter.Offset()).
		Limit(filter.PageSize).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return toOrders(rows), total, nil
}

// FindAllUnshipped returns the whole unshipped working set, oldest first
func (r *GormOrderRepository) FindAllUnshipped(ctx context.Context) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where(unshippedWhere).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// FindWithRemainder returns orders whose split left quantity behind
func (r *GormOrderRepository) FindWithRemainder(ctx context.Context) ([]order.Order, error) {
	var rows []models.OrderModel
	if err := r.db.WithContext(ctx).
		Where("remaining_quantity > 0").
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toOrders(rows), nil
}

// Save writes every column of o
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	model := models.OrderModelFromDomain(o)
	model.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).Save(model)
	if result.Error != nil {
		return result.Error
	}
	o.UpdatedAt = model.UpdatedAt
	return nil
}

// SetBatch sets or clears shipment_batch on ids
func (r *GormOrderRepository) SetBatch(ctx context.Context, ids []int64, batchID *string) (int64, error) {
	var value any = gorm.Expr("NULL")
	if batchID != nil {
		value = *batchID
	}
	return r.updateIDs(ctx, ids, map[string]any{"shipment_batch": value})
}

// SetLocation changes the shipment location of ids
func (r *GormOrderRepository) SetLocation(ctx context.Context, ids []int64, location order.Location) (int64, error) {
	return r.updateIDs(ctx, ids, map[string]any{"shipment_location": string(location)})
}

// AddStatusByReferences ORs flag into every order sharing one of refs
func (r *GormOrderRepository) AddStatusByReferences(ctx context.Context, refs []string, flag order.Status) (int64, error) {
	if len(refs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("reference_no IN ?", refs).
		Updates(map[string]any{
			"status":     gorm.Expr("status | ?", int(flag)),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// AddStatusByIDs ORs flag into the status of ids
func (r *GormOrderRepository) AddStatusByIDs(ctx context.Context, ids []int64, flag order.Status) (int64, error) {
	return r.updateIDs(ctx, ids, map[string]any{"status": gorm.Expr("status | ?", int(flag))})
}

// RemoveStatusByIDs clears flag from the status of ids
func (r *GormOrderRepository) RemoveStatusByIDs(ctx context.Context, ids []int64, flag order.Status) (int64, error) {
	return r.updateIDs(ctx, ids, map[string]any{"status": gorm.Expr("status & ?", int(^flag))})
}

func (r *GormOrderRepository) updateIDs(ctx context.Context, ids []int64, updates map[string]any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	updates["updated_at"] = time.Now()
	result := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where("id IN ?", ids).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// CountByState counts orders per lifecycle state in one scan
func (r *GormOrderRepository) CountByState(ctx context.Context) (*order.StateCounts, error) {
	shipping := int(order.StatusShipping)
	dispatched := int(order.StatusDispatched)

	var counts order.StateCounts
	err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Select(fmt.Sprintf(
			"COALESCE(SUM(CASE WHEN %s THEN 1 ELSE 0 END), 0) AS unshipped, "+
				"COALESCE(SUM(CASE WHEN (status & %d) <> 0 AND (status & %d) = 0 THEN 1 ELSE 0 END), 0) AS shipping, "+
				"COALESCE(SUM(CASE WHEN (status & %d) <> 0 THEN 1 ELSE 0 END), 0) AS dispatched",
			unshippedWhere, shipping, dispatched, dispatched,
		)).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

// PendingByDate counts unshipped orders per local creation day over the last
// days days, newest day first. Grouping happens here so both drivers agree on
// the day boundary.
func (r *GormOrderRepository) PendingByDate(ctx context.Context, days int) ([]order.DailyCount, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))

	var created []time.Time
	if err := r.db.WithContext(ctx).Model(&models.OrderModel{}).
		Where(unshippedWhere).
		Where("created_at >= ?", start).
		Pluck("created_at", &created).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, t := range created {
		counts[t.In(now.Location()).Format(time.DateOnly)]++
	}
	result := make([]order.DailyCount, 0, len(counts))
	for date, n := range counts {
		result = append(result, order.DailyCount{Date: date, Count: n})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date > result[j].Date })
	return result, nil
}

func (r *GormOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("reference_no LIKE ? OR consignee_name LIKE ? OR sku LIKE ? OR product_name LIKE ?",
			like, like, like, like)
	}
	if mp := filter.Filters[order.FilterMarketplace]; mp != "" {
		query = query.Where("marketplace = ?", mp)
	}
	if loc := filter.Filters[order.FilterLocation]; loc != "" {
		query = query.Where("shipment_location = ?", loc)
	}
	return query
}

func toOrders(rows []models.OrderModel) []order.Order {
	result := make([]order.Order, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result
}

func orderNotFound(id int64) error {
	return shared.NewDomainError(shared.CodeNotFound, fmt.Sprintf("order %d not found", id))
}

// Ensure GormOrderRepository implements order.OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
