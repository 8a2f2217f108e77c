package handler

import (
	"github.com/gin-gonic/gin"
	shipmentapp "github.com/orderops/backend/internal/application/shipment"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/interfaces/http/dto"
)

// FormCompletionFile is the multipart field of the completion sheet
const FormCompletionFile = "file"

// ShipmentHandler serves shipment creation and batch management
type ShipmentHandler struct {
	BaseHandler
	batches *shipmentapp.BatchManager
	queries *shipmentapp.ShipmentQueryService
}

// NewShipmentHandler creates a new ShipmentHandler
func NewShipmentHandler(batches *shipmentapp.BatchManager, queries *shipmentapp.ShipmentQueryService) *ShipmentHandler {
	return &ShipmentHandler{batches: batches, queries: queries}
}

// Review flags low stock, open consignee shipments and high declared values before shipping
func (h *ShipmentHandler) Review(c *gin.Context) {
	var req dto.OrderIDsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	results, err := h.batches.ReviewShipments(c.Request.Context(), req.OrderIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// Create inserts one shipment per selected order
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req dto.OrderIDsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.batches.CreateShipments(c.Request.Context(), req.OrderIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Split ships part of the ordered units now
func (h *ShipmentHandler) Split(c *gin.Context) {
	var req dto.SplitRequest
	if !h.BindJSON(c, &req) {
		return
	}

	items := make([]shipmentapp.SplitItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = shipmentapp.SplitItem{OrderID: it.OrderID, Quantity: it.Quantity}
	}
	result, err := h.batches.SplitShipment(c.Request.Context(), items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Merge consolidates orders into one shipment batch
func (h *ShipmentHandler) Merge(c *gin.Context) {
	var req dto.MergeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	batchID, err := h.batches.MergeShipment(c.Request.Context(), req.OrderIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.BatchResponse{BatchID: batchID})
}

// CancelMerge dissolves the batch of the given order
func (h *ShipmentHandler) CancelMerge(c *gin.Context) {
	var req dto.CancelMergeRequest
	if !h.BindJSON(c, &req) {
		return
	}

	cleared, err := h.batches.CancelMerge(c.Request.Context(), req.OrderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.UpdatedCount{Updated: cleared})
}

// UpdateLocation moves an order, and every order of its batch, to a location
func (h *ShipmentHandler) UpdateLocation(c *gin.Context) {
	id, ok := h.ParamID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLocationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updated, err := h.batches.UpdateLocation(c.Request.Context(), id, order.Location(req.Location))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.UpdatedCount{Updated: updated})
}

// Complete applies a carrier completion sheet
func (h *ShipmentHandler) Complete(c *gin.Context) {
	file, ok := h.FormFile(c, FormCompletionFile)
	if !ok {
		return
	}

	rows, err := shipmentapp.ParseCompletionFile(file.Name, file.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.batches.CompleteShipments(c.Request.Context(), rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel puts the selected orders back in the queue and drops their open shipments
func (h *ShipmentHandler) Cancel(c *gin.Context) {
	var req dto.OrderIDsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.batches.CancelShipments(c.Request.Context(), req.OrderIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// CancelCompletion moves shipped shipments back to processing
func (h *ShipmentHandler) CancelCompletion(c *gin.Context) {
	var req dto.ShipmentIDsRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.batches.CancelCompletion(c.Request.Context(), req.ShipmentIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// List returns a page of shipments
func (h *ShipmentHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	page, err := h.queries.ListShipments(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
