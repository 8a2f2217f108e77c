package orderapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	csvimport "github.com/orderops/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

// Amazon order report columns
const (
	amazonOrderID       = "order-id"
	amazonSKU           = "sku"
	amazonProductName   = "product-name"
	amazonQuantity      = "quantity-purchased"
	amazonRecipientName = "recipient-name"
	amazonBuyerName     = "buyer-name"
	amazonPostalCode    = "ship-postal-code"
	amazonPhone         = "buyer-phone-number"
	amazonItemPrice     = "item-price"
)

var amazonAddressColumns = []string{"ship-state", "ship-city", "ship-address-1", "ship-address-2", "ship-address-3"}

// Yahoo order and product file columns
const (
	yahooID           = "Id"
	yahooShipName     = "ShipName"
	yahooShipNameKana = "ShipNameKana"
	yahooZipCode      = "ShipZipCode"
	yahooPhone        = "ShipPhoneNumber"
	yahooItemID       = "ItemId"
	yahooTitle        = "Title"
	yahooQuantity     = "Quantity"
	yahooUnitPrice    = "UnitPrice"
)

var yahooAddressColumns = []string{"ShipPrefecture", "ShipCity", "ShipAddress1", "ShipAddress2"}

// yahooShipping holds the order-level fields shared by every product line
type yahooShipping struct {
	name, kana, zip, address, phone string
}

// Normalizer turns marketplace exports into RawOrder rows
type Normalizer struct {
	products ProductLookup
	logger   *zap.Logger
}

// NewNormalizer creates a Normalizer. products resolves display names by SKU.
func NewNormalizer(products ProductLookup, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{products: products, logger: logger}
}

// Normalize dispatches on the marketplace of the file set
func (n *Normalizer) Normalize(ctx context.Context, files *csvimport.OrderFileSet) ([]order.RawOrder, error) {
	switch files.Marketplace {
	case order.MarketplaceAmazon:
		return n.NormalizeAmazon(ctx, files.Orders)
	case order.MarketplaceYahoo:
		return n.NormalizeYahoo(ctx, files.Orders, files.Products)
	}
	return nil, shared.NewValidationError(fmt.Sprintf("unsupported marketplace %q", files.Marketplace))
}

// NormalizeAmazon reads an Amazon order report. Rows without an order id are dropped.
func (n *Normalizer) NormalizeAmazon(ctx context.Context, file csvimport.File) ([]order.RawOrder, error) {
	table, err := readOrderTable(file)
	if err != nil {
		return nil, err
	}
	if missing := table.MissingHeaders(amazonOrderID); len(missing) > 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("%s: missing required column(s): %s", file.Name, strings.Join(missing, ", ")))
	}

	raws := make([]order.RawOrder, 0, len(table.Rows))
	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ref := row.Get(amazonOrderID)
		if ref == "" {
			continue
		}

		sku := row.Get(amazonSKU)
		original := row.Get(amazonProductName)
		name, err := n.displayName(ctx, sku, original)
		if err != nil {
			return nil, err
		}

		raws = append(raws, order.RawOrder{
			Marketplace:         order.MarketplaceAmazon,
			ReferenceNo:         ref,
			SKU:                 sku,
			ProductName:         name,
			OriginalProductName: original,
			Quantity:            csvimport.ParseQuantity(row.Get(amazonQuantity), 1),
			UnitValue:           csvimport.ParseAmountOrZero(row.Get(amazonItemPrice)),
			ConsigneeName:       row.Get(amazonRecipientName),
			Kana:                row.Get(amazonBuyerName),
			PostalCode:          row.Get(amazonPostalCode),
			Address:             joinNonEmpty(row, amazonAddressColumns, " "),
			PhoneNumber:         row.Get(amazonPhone),
		})
	}

	if len(raws) == 0 {
		return nil, shared.NewNoDataError(fmt.Sprintf("%s: no processable order rows", file.Name))
	}
	n.logger.Debug("Normalized amazon export", zap.String("file", file.Name), zap.Int("rows", len(raws)))
	return raws, nil
}

// NormalizeYahoo joins the Yahoo order file and product file on Id. Each
// product line of a known order becomes one RawOrder carrying the order's
// shipping fields.
func (n *Normalizer) NormalizeYahoo(ctx context.Context, orderFile, productFile csvimport.File) ([]order.RawOrder, error) {
	orderTable, err := readOrderTable(orderFile)
	if err != nil {
		return nil, err
	}
	productTable, err := readOrderTable(productFile)
	if err != nil {
		return nil, err
	}
	if missing := orderTable.MissingHeaders(yahooID); len(missing) > 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("%s: missing required column(s): %s", orderFile.Name, strings.Join(missing, ", ")))
	}
	if missing := productTable.MissingHeaders(yahooID); len(missing) > 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("%s: missing required column(s): %s", productFile.Name, strings.Join(missing, ", ")))
	}

	shipping := make(map[string]yahooShipping, len(orderTable.Rows))
	for _, row := range orderTable.Rows {
		id := row.Get(yahooID)
		if id == "" {
			continue
		}
		shipping[id] = yahooShipping{
			name:    row.Get(yahooShipName),
			kana:    row.Get(yahooShipNameKana),
			zip:     row.Get(yahooZipCode),
			address: joinNonEmpty(row, yahooAddressColumns, ""),
			phone:   row.Get(yahooPhone),
		}
	}

	raws := make([]order.RawOrder, 0, len(productTable.Rows))
	skipped := 0
	for _, row := range productTable.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := row.Get(yahooID)
		ship, ok := shipping[id]
		if id == "" || !ok {
			skipped++
			continue
		}

		sku := row.Get(yahooItemID)
		original := row.Get(yahooTitle)
		name, err := n.displayName(ctx, sku, original)
		if err != nil {
			return nil, err
		}

		raws = append(raws, order.RawOrder{
			Marketplace:         order.MarketplaceYahoo,
			ReferenceNo:         id,
			SKU:                 sku,
			ProductName:         name,
			OriginalProductName: original,
			Quantity:            csvimport.ParseQuantity(row.Get(yahooQuantity), 1),
			UnitValue:           csvimport.ParseAmountOrZero(row.Get(yahooUnitPrice)),
			ConsigneeName:       ship.name,
			Kana:                ship.kana,
			PostalCode:          ship.zip,
			Address:             ship.address,
			PhoneNumber:         ship.phone,
		})
	}

	if skipped > 0 {
		n.logger.Info("Skipped yahoo product rows without a matching order",
			zap.String("file", productFile.Name), zap.Int("skipped", skipped))
	}
	if len(raws) == 0 {
		return nil, shared.NewNoDataError(fmt.Sprintf("%s: no product rows match an order in %s", productFile.Name, orderFile.Name))
	}
	return raws, nil
}

func (n *Normalizer) displayName(ctx context.Context, sku, fallback string) (string, error) {
	if n.products == nil || sku == "" {
		return fallback, nil
	}
	info, found, err := n.products.GetProductNameAndPrice(ctx, sku)
	if err != nil {
		return "", fmt.Errorf("lookup product %s: %w", sku, err)
	}
	if !found || info.Name == "" {
		return fallback, nil
	}
	return info.Name, nil
}

// readOrderTable parses one export file. Structure and encoding failures are
// ParseErrors; an empty file has no data.
func readOrderTable(file csvimport.File) (*csvimport.Table, error) {
	format := csvimport.DetectFormat(file.Name, file.Content)
	table, err := csvimport.ReadTable(file.Content, format, csvimport.EncodingAuto)
	switch {
	case err == nil:
		return table, nil
	case errors.Is(err, csvimport.ErrEmptyFile):
		return nil, shared.NewNoDataError(fmt.Sprintf("%s: file is empty", file.Name))
	case errors.Is(err, csvimport.ErrMalformed),
		errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrInvalidEncoding),
		errors.Is(err, csvimport.ErrNoSheets):
		return nil, shared.NewParseError(fmt.Sprintf("%s: %v", file.Name, err))
	}
	return nil, err
}

func joinNonEmpty(row *csvimport.Row, columns []string, sep string) string {
	parts := make([]string, 0, len(columns))
	for _, c := range columns {
		if v := row.Get(c); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.TrimSpace(strings.Join(parts, sep))
}
