package persistence

import (
	"strings"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns defaultOrder if the input is invalid or empty.
func ValidateSortOrder(orderDir, defaultOrder string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	return defaultOrder
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"reference_no":   true,
	"consignee_name": true,
	"sku":            true,
	"quantity":       true,
	"unit_value":     true,
}

// ShipmentSortFields contains allowed sort fields for shipments
var ShipmentSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"shipment_no":       true,
	"reference_no":      true,
	"consignee_name":    true,
	"shipment_location": true,
	"status":            true,
}

// orderClause builds a safe ORDER BY clause from the filter's sort keys.
// The id column is always appended so pages are stable.
func orderClause(filter shared.Filter, allowed map[string]bool, defaultField, defaultOrder string) string {
	field := ValidateSortField(filter.Filters[order.FilterSortBy], allowed, defaultField)
	dir := ValidateSortOrder(filter.Filters[order.FilterSortOrder], defaultOrder)
	if field == "id" {
		return "id " + dir
	}
	return field + " " + dir + ", id " + dir
}
