package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/interfaces/http/dto"
)

// Multipart field names of the ingest upload
const (
	FormMarketplace = "marketplace"
	FormFiles       = "files"
)

// OrderHandler serves order ingestion and order reads
type OrderHandler struct {
	BaseHandler
	ingest  *orderapp.IngestService
	queries *orderapp.OrderQueryService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(ingest *orderapp.IngestService, queries *orderapp.OrderQueryService) *OrderHandler {
	return &OrderHandler{ingest: ingest, queries: queries}
}

// Ingest imports marketplace order exports
func (h *OrderHandler) Ingest(c *gin.Context) {
	marketplace, err := order.ParseMarketplace(c.PostForm(FormMarketplace))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	files, ok := h.FormFiles(c, FormFiles)
	if !ok {
		return
	}

	result, err := h.ingest.Ingest(c.Request.Context(), marketplace, files)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListUnshipped lists unshipped orders with risk flags
func (h *OrderHandler) ListUnshipped(c *gin.Context) {
	var req dto.ListRequest
	if !h.BindQuery(c, &req) {
		return
	}

	result, err := h.queries.ListUnshipped(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, result.Page.Total, result.Page.Page, result.Page.PageSize)
}

// Summary returns order state counts and the risk report
func (h *OrderHandler) Summary(c *gin.Context) {
	summary, err := h.queries.Summary(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// Pending returns unshipped order counts per order date
func (h *OrderHandler) Pending(c *gin.Context) {
	var q dto.PendingQuery
	if !h.BindQuery(c, &q) {
		return
	}
	days := q.Days
	if days == 0 {
		days = orderapp.DefaultPendingDays
	}

	counts, err := h.queries.PendingByDate(c.Request.Context(), days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}

// Remainders lists partially shipped orders with units left to send
func (h *OrderHandler) Remainders(c *gin.Context) {
	orders, err := h.queries.ListRemainders(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}
