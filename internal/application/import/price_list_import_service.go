package importapp

import (
	"context"
	"fmt"
	"strings"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	csvimport "github.com/orderops/backend/internal/infrastructure/import"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	fieldSKU      = "sku"
	fieldPrice    = "price"
	fieldQuantity = "quantity"
)

// amazonPriceColumns accepts the seller central report in English and Japanese
var amazonPriceColumns = csvimport.AliasTable{
	Mode: csvimport.MatchExact,
	Fields: []csvimport.FieldAliases{
		{Field: fieldSKU, Aliases: []string{"sku", "出品者SKU", "Custom label (SKU)"}, Required: true},
		{Field: fieldPrice, Aliases: []string{"price", "価格", "Current price"}, Required: true},
		{Field: fieldQuantity, Aliases: []string{"quantity", "数量", "Available quantity"}, Required: true},
	},
}

// yahooPriceColumns matches the store manager item export
var yahooPriceColumns = csvimport.AliasTable{
	Mode: csvimport.MatchExact,
	Fields: []csvimport.FieldAliases{
		{Field: fieldSKU, Aliases: []string{"code"}, Required: true},
		{Field: fieldPrice, Aliases: []string{"price"}, Required: true},
	},
}

// PriceListImportService updates sales listings from marketplace price exports
type PriceListImportService struct {
	scope  orderapp.TransactionScope
	logger *zap.Logger
}

// NewPriceListImportService creates a PriceListImportService
func NewPriceListImportService(scope orderapp.TransactionScope, logger *zap.Logger) *PriceListImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PriceListImportService{scope: scope, logger: logger}
}

// Import applies a price list. Amazon lists may be tab text, comma text or
// xlsx and update price and quantity; shippingFee is added to every Amazon
// price. Yahoo lists are Shift-JIS CSV and update the price only. Every row is
// applied in one transaction; rows that fail validation or match no listing are
// counted and reported.
func (s *PriceListImportService) Import(ctx context.Context, marketplace order.Marketplace, fileName string, content []byte, shippingFee decimal.Decimal) (*ImportResult, error) {
	columns, enc := amazonPriceColumns, csvimport.EncodingAuto
	switch marketplace {
	case order.MarketplaceAmazon:
	case order.MarketplaceYahoo:
		columns, enc = yahooPriceColumns, csvimport.EncodingShiftJIS
		shippingFee = decimal.Zero
	default:
		return nil, shared.NewValidationError(fmt.Sprintf("unsupported marketplace %q", marketplace))
	}

	table, err := readUpload(fileName, content, enc)
	if err != nil {
		return nil, err
	}
	cols, missing := columns.Resolve(table.Headers)
	if len(missing) > 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("%s: missing required column(s): %s", fileName, strings.Join(missing, ", ")))
	}

	errs := csvimport.NewErrorCollection(maxReportedErrors)
	updates := make([]catalog.PriceUpdate, 0, len(table.Rows))
	rowOf := make([]int, 0, len(table.Rows))
	result := &ImportResult{Total: len(table.Rows)}

	for _, row := range table.Rows {
		update, ok := parsePriceRow(row, cols, marketplace, shippingFee, errs)
		if !ok {
			result.Failed++
			continue
		}
		updates = append(updates, update)
		rowOf = append(rowOf, row.LineNumber)
	}

	err = s.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		for i, u := range updates {
			found, err := repos.ListingRepo().UpdatePrice(ctx, u)
			if err != nil {
				return err
			}
			if !found {
				result.Failed++
				errs.Add(csvimport.NewRowErrorWithValue(rowOf[i], fieldSKU, csvimport.ErrCodeImportNotFound,
					"no sales listing with this code", u.SalesCode))
				continue
			}
			result.Updated++
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Price list import rolled back", zap.String("file", fileName), zap.Error(err))
		return nil, shared.NewPersistenceError("import price list", err)
	}

	result.collect(errs)
	s.logger.Info("Price list imported",
		zap.String("marketplace", string(marketplace)),
		zap.String("file", fileName),
		zap.Int("total", result.Total),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func parsePriceRow(row *csvimport.Row, cols csvimport.ColumnMap, marketplace order.Marketplace, fee decimal.Decimal, errs *csvimport.ErrorCollection) (catalog.PriceUpdate, bool) {
	sku := cols.Value(row, fieldSKU)
	if sku == "" {
		errs.AddRequiredError(row.LineNumber, fieldSKU)
		return catalog.PriceUpdate{}, false
	}

	rawPrice := cols.Value(row, fieldPrice)
	price, ok := csvimport.ParseAmount(rawPrice)
	if !ok {
		if rawPrice == "" {
			errs.AddRequiredError(row.LineNumber, fieldPrice)
		} else {
			errs.AddTypeError(row.LineNumber, fieldPrice, "number", rawPrice)
		}
		return catalog.PriceUpdate{}, false
	}
	update := catalog.PriceUpdate{SalesCode: sku, Price: price.Add(fee)}

	if marketplace == order.MarketplaceAmazon {
		rawQty := cols.Value(row, fieldQuantity)
		qty := csvimport.ParseInt(rawQty, -1)
		if qty < 0 {
			if rawQty == "" {
				errs.AddRequiredError(row.LineNumber, fieldQuantity)
			} else {
				errs.AddTypeError(row.LineNumber, fieldQuantity, "non-negative integer", rawQty)
			}
			return catalog.PriceUpdate{}, false
		}
		update.Quantity = &qty
	}
	return update, true
}
