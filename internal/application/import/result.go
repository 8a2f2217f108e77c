package importapp

import (
	"errors"
	"fmt"

	"github.com/orderops/backend/internal/domain/shared"
	csvimport "github.com/orderops/backend/internal/infrastructure/import"
)

// maxReportedErrors caps the row errors returned to the caller
const maxReportedErrors = 100

// ImportResult summarizes a catalog upload
type ImportResult struct {
	Total       int                  `json:"total"`
	Updated     int                  `json:"updated"`
	Failed      int                  `json:"failed"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
}

func (r *ImportResult) collect(errs *csvimport.ErrorCollection) {
	r.Errors = errs.Errors()
	r.IsTruncated = errs.IsTruncated()
	r.TotalErrors = errs.TotalCount()
}

// readUpload parses an uploaded sheet, mapping reader failures to domain errors
func readUpload(fileName string, content []byte, enc csvimport.Encoding) (*csvimport.Table, error) {
	format := csvimport.DetectFormat(fileName, content)
	table, err := csvimport.ReadTable(content, format, enc)
	switch {
	case err == nil:
		return table, nil
	case errors.Is(err, csvimport.ErrEmptyFile):
		return nil, shared.NewNoDataError(fmt.Sprintf("%s: file is empty", fileName))
	default:
		return nil, shared.NewParseError(fmt.Sprintf("%s: %v", fileName, err))
	}
}
