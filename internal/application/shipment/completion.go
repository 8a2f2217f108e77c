package shipmentapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	orderapp "github.com/orderops/backend/internal/application/order"
	"github.com/orderops/backend/internal/domain/order"
	"github.com/orderops/backend/internal/domain/shared"
	csvimport "github.com/orderops/backend/internal/infrastructure/import"
	"github.com/orderops/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	fieldShipmentNo = "shipment_no"
	fieldTracking   = "tracking_number"
	fieldWeight     = "weight"
)

// completionColumns accepts the carrier sheet headers in Japanese, Korean and English
var completionColumns = csvimport.AliasTable{
	Mode: csvimport.MatchExact,
	Fields: []csvimport.FieldAliases{
		{Field: fieldShipmentNo, Aliases: []string{"出荷番号", "출하번호", "shipment_no"}, Required: true},
		{Field: fieldTracking, Aliases: []string{"運送状番号", "운송장번호", "tracking_number"}},
		{Field: fieldWeight, Aliases: []string{"重量", "중량", "weight"}},
	},
}

// CompletionRow is one line of a carrier completion sheet
type CompletionRow struct {
	Row            int             `json:"row"`
	ShipmentNo     string          `json:"shipment_no"`
	TrackingNumber string          `json:"tracking_number"`
	Weight         decimal.Decimal `json:"weight"`
}

// CompletionIssue reports a row that could not be applied
type CompletionIssue struct {
	Row        int    `json:"row"`
	ShipmentNo string `json:"shipment_no"`
	Message    string `json:"message"`
}

// CompletionResult summarizes a completion upload
type CompletionResult struct {
	Total     int               `json:"total"`
	Completed int               `json:"completed"`
	Failed    int               `json:"failed"`
	Errors    []CompletionIssue `json:"errors"`
}

// ParseCompletionFile reads a completion sheet (xlsx or delimited text)
func ParseCompletionFile(fileName string, content []byte) ([]CompletionRow, error) {
	format := csvimport.DetectFormat(fileName, content)
	table, err := csvimport.ReadTable(content, format, csvimport.EncodingAuto)
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile):
		return nil, shared.NewNoDataError(fmt.Sprintf("%s: file is empty", fileName))
	case err != nil:
		return nil, shared.NewParseError(fmt.Sprintf("%s: %v", fileName, err))
	}

	cols, missing := completionColumns.Resolve(table.Headers)
	if len(missing) > 0 {
		return nil, shared.NewValidationError(fmt.Sprintf("%s: missing required column(s): %s", fileName, strings.Join(missing, ", ")))
	}

	rows := make([]CompletionRow, 0, len(table.Rows))
	for _, r := range table.Rows {
		rows = append(rows, CompletionRow{
			Row:            r.LineNumber,
			ShipmentNo:     cols.Value(r, fieldShipmentNo),
			TrackingNumber: cols.Value(r, fieldTracking),
			Weight:         csvimport.ParseAmountOrZero(cols.Value(r, fieldWeight)),
		})
	}
	if len(rows) == 0 {
		return nil, shared.NewNoDataError(fmt.Sprintf("%s: no rows", fileName))
	}
	return rows, nil
}

// CompleteShipments records tracking data, moves the shipments to shipped and
// marks their orders dispatched. A row without a shipment number aborts the
// whole upload; unknown shipment numbers are reported and skipped.
func (m *BatchManager) CompleteShipments(ctx context.Context, rows []CompletionRow) (result *CompletionResult, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "shipment", OpComplete)
	defer span.End()
	start := time.Now()
	defer func() {
		n := 0
		if result != nil {
			n = result.Completed
		}
		m.observe(span, OpComplete, start, n, err)
	}()

	if len(rows) == 0 {
		return nil, shared.NewNoDataError("no completion rows")
	}

	result = &CompletionResult{Total: len(rows), Errors: []CompletionIssue{}}
	err = m.scope.Execute(ctx, func(repos orderapp.TransactionalRepositories) error {
		orderIDs := make([]int64, 0, len(rows))
		for _, row := range rows {
			no := strings.TrimSpace(row.ShipmentNo)
			if no == "" {
				return shared.NewValidationError(fmt.Sprintf("row %d: shipment number is required", row.Row))
			}

			s, err := repos.ShipmentRepo().FindByShipmentNo(ctx, no)
			if errors.Is(err, shared.ErrNotFound) {
				result.Failed++
				result.Errors = append(result.Errors, CompletionIssue{
					Row:        row.Row,
					ShipmentNo: no,
					Message:    fmt.Sprintf("shipment %s not found", no),
				})
				continue
			}
			if err != nil {
				return err
			}

			s.Complete(strings.TrimSpace(row.TrackingNumber), row.Weight)
			if err := repos.ShipmentRepo().Save(ctx, s); err != nil {
				return err
			}
			orderIDs = append(orderIDs, s.OrderID)
			result.Completed++
		}

		if len(orderIDs) > 0 {
			if _, err := repos.OrderRepo().AddStatusByIDs(ctx, orderIDs, order.StatusDispatched); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, m.wrap("complete shipments", err)
	}

	m.logger.Info("Shipments completed",
		zap.Int("total", result.Total),
		zap.Int("completed", result.Completed),
		zap.Int("not_found", result.Failed),
	)
	return result, nil
}
