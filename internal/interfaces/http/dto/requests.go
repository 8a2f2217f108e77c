package dto

import (
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
)

// ListRequest holds the common list query parameters
type ListRequest struct {
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=500"`
	Search      string `form:"search" binding:"max=200"`
	SortBy      string `form:"sort_by"`
	SortOrder   string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
	Marketplace string `form:"marketplace" binding:"omitempty,oneof=yahoo amazon"`
	Location    string `form:"location"`
	Status      string `form:"status" binding:"omitempty,oneof=processing shipped"`
}

// ToFilter converts the request into a repository filter
func (r ListRequest) ToFilter() shared.Filter {
	f := shared.DefaultFilter()
	if r.Page > 0 {
		f.Page = r.Page
	}
	if r.PageSize > 0 {
		f.PageSize = r.PageSize
	}
	f.Search = r.Search
	set := func(key, value string) {
		if value != "" {
			f.Filters[key] = value
		}
	}
	set(order.FilterSortBy, r.SortBy)
	set(order.FilterSortOrder, r.SortOrder)
	set(order.FilterMarketplace, r.Marketplace)
	set(order.FilterLocation, r.Location)
	set(order.FilterStatus, r.Status)
	return f
}

// OrderIDsRequest selects a set of orders
type OrderIDsRequest struct {
	OrderIDs []int64 `json:"order_ids" binding:"required,min=1,dive,gt=0"`
}

// MergeRequest selects the orders to consolidate into one batch
type MergeRequest struct {
	OrderIDs []int64 `json:"order_ids" binding:"required,min=2,dive,gt=0"`
}

// ShipmentIDsRequest selects a set of shipments
type ShipmentIDsRequest struct {
	ShipmentIDs []int64 `json:"shipment_ids" binding:"required,min=1,dive,gt=0"`
}

// CancelMergeRequest names any order of the batch to dissolve
type CancelMergeRequest struct {
	OrderID int64 `json:"order_id" binding:"required,gt=0"`
}

// SplitItemRequest ships quantity units of one order now
type SplitItemRequest struct {
	OrderID  int64 `json:"order_id" binding:"required,gt=0"`
	Quantity int   `json:"quantity" binding:"required,gt=0"`
}

// SplitRequest carries the partial shipment selection
type SplitRequest struct {
	Items []SplitItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateLocationRequest moves an order, and its batch, to a location
type UpdateLocationRequest struct {
	Location string `json:"location" binding:"required,location"`
}

// StockQuery selects the location to read stock for
type StockQuery struct {
	Location string `form:"location" binding:"required,location"`
}

// PendingQuery bounds the pending-by-date report
type PendingQuery struct {
	Days int `form:"days" binding:"omitempty,min=1,max=365"`
}

// UpdatedCount reports how many rows a bulk update touched
type UpdatedCount struct {
	Updated int64 `json:"updated"`
}

// BatchResponse reports the batch id of a merge
type BatchResponse struct {
	BatchID string `json:"batch_id"`
}

// StockResponse is the resolved stock of a product at a location
type StockResponse struct {
	ProductCode string `json:"product_code"`
	Location    string `json:"location"`
	Stock       int    `json:"stock"`
}
