package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	importapp "github.com/orderops/backend/internal/application/import"
	shipmentapp "github.com/orderops/backend/internal/application/shipment"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// Multipart fields of the catalog uploads
const (
	FormFile        = "file"
	FormShippingFee = "shipping_fee"
)

// CatalogHandler serves price list and inventory uploads and stock reads
type CatalogHandler struct {
	BaseHandler
	prices    *importapp.PriceListImportService
	inventory *importapp.InventoryImportService
	resolver  *shipmentapp.LocationResolver
	fee       decimal.Decimal
}

// NewCatalogHandler creates a new CatalogHandler. defaultFee applies to price
// uploads that do not send shipping_fee.
func NewCatalogHandler(
	prices *importapp.PriceListImportService,
	inventory *importapp.InventoryImportService,
	resolver *shipmentapp.LocationResolver,
	defaultFee decimal.Decimal,
) *CatalogHandler {
	return &CatalogHandler{prices: prices, inventory: inventory, resolver: resolver, fee: defaultFee}
}

// UploadPrices updates listing prices from a marketplace price list
func (h *CatalogHandler) UploadPrices(c *gin.Context) {
	marketplace, err := order.ParseMarketplace(c.PostForm(FormMarketplace))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	fee := h.fee
	if raw := strings.TrimSpace(c.PostForm(FormShippingFee)); raw != "" {
		fee, err = decimal.NewFromString(raw)
		if err != nil || fee.IsNegative() {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeValidation, "shipping_fee must be a non-negative number")
			return
		}
	}
	file, ok := h.FormFile(c, FormFile)
	if !ok {
		return
	}

	result, err := h.prices.Import(c.Request.Context(), marketplace, file.Name, file.Content, fee)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UploadInventory replaces stock counts from an inventory sheet
func (h *CatalogHandler) UploadInventory(c *gin.Context) {
	file, ok := h.FormFile(c, FormFile)
	if !ok {
		return
	}

	result, err := h.inventory.Import(c.Request.Context(), file.Name, file.Content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Stock returns the stock of a product at a location
func (h *CatalogHandler) Stock(c *gin.Context) {
	var q dto.StockQuery
	if !h.BindQuery(c, &q) {
		return
	}
	code := c.Param("code")

	stock, err := h.resolver.ResolveStock(c.Request.Context(), code, q.Location)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.StockResponse{ProductCode: code, Location: q.Location, Stock: stock})
}
