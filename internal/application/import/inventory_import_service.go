package importapp

import (
	"context"
	"fmt"
	"strings"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/catalog"
	"github.com/orderops/backend/internal/domain/shared"
	csvimport "github.com/orderops/backend/internal/infrastructure/import"
	"go.uber.org/zap"
)

const (
	fieldProductCode = "product_code"
	fieldProductName = "product_name"
	fieldNZStock     = "nz_stock"
	fieldAusStock    = "aus_stock"
)

// inventoryColumns matches warehouse stock sheets whose headers vary in case,
// spacing and language
var inventoryColumns = csvimport.AliasTable{
	Mode: csvimport.MatchContains,
	Fields: []csvimport.FieldAliases{
		{Field: fieldProductCode, Aliases: []string{"ALLNZCODE", "PRODUCTCODE"}, Required: true},
		{Field: fieldProductName, Aliases: []string{"PRODUCTNAME"}},
		{Field: fieldNZStock, Aliases: []string{"NZSTOCK", "NZ재고"}},
		{Field: fieldAusStock, Aliases: []string{"AUSSTOCK", "AUS재고"}},
	},
}

// InventoryImportService loads warehouse stock sheets into inventory records
type InventoryImportService struct {
	scope  orderapp.TransactionScope
	logger *zap.Logger
}

// NewInventoryImportService creates a new InventoryImportService
func NewInventoryImportService(scope orderapp.TransactionScope, logger *zap.Logger) *InventoryImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryImportService{scope: scope, logger: logger}
}

// Import upserts one inventory record per row with a product code. Unreadable
// stock cells count as zero.
func (s *InventoryImportService) Import(ctx context.Context, fileName string, content []byte) (*ImportResult, error) {
	table, err := readUpload(fileName, content, csvimport.EncodingAuto)
	if err != nil {
		return nil, err
	}
	cols, missing := inventoryColumns.Resolve(table.Headers)
	if len(missing) > 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("%s: missing required column(s): %s", fileName, strings.Join(missing, ", ")))
	}

	errs := csvimport.NewErrorCollection(maxReportedErrors)
	result := &ImportResult{Total: len(table.Rows)}
	records := make([]catalog.InventoryRecord, 0, len(table.Rows))
	seen := make(map[string]int, len(table.Rows))

	for _, row := range table.Rows {
		code := cols.Value(row, fieldProductCode)
		if code == "" {
			errs.AddRequiredError(row.LineNumber, fieldProductCode)
			result.Failed++
			continue
		}
		record := catalog.InventoryRecord{
			ProductCode: code,
			ProductName: cols.Value(row, fieldProductName),
			NZStock:     csvimport.ParseInt(cols.Value(row, fieldNZStock), 0),
			AusStock:    csvimport.ParseInt(cols.Value(row, fieldAusStock), 0),
		}
		// a later row for the same code wins
		if i, dup := seen[code]; dup {
			records[i] = record
			continue
		}
		seen[code] = len(records)
		records = append(records, record)
	}

	if len(records) > 0 {
		err = s.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
			return repos.InventoryRepo().Upsert(ctx, records)
		})
		if err != nil {
			s.logger.Error("Inventory import rolled back", zap.String("file", fileName), zap.Error(err))
			return nil, shared.NewPersistenceError("import inventory", err)
		}
	}
	result.Updated = result.Total - result.Failed

	result.collect(errs)
	s.logger.Info("Inventory imported",
		zap.String("file", fileName),
		zap.Int("records", len(records)),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
