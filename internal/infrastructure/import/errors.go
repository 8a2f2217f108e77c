package csvimport

import (
	"errors"
	"fmt"
)

// Row error codes reported back with an upload result
const (
	ErrCodeImportRequiredField = "REQUIRED_FIELD"
	ErrCodeImportInvalidType   = "INVALID_VALUE"
	ErrCodeImportNotFound      = "UNKNOWN_CODE"
)

// Reader failures. Callers map them onto domain errors.
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidEncoding = errors.New("invalid file encoding")
	ErrMissingHeader   = errors.New("file missing header row")
	ErrMalformed       = errors.New("malformed delimited file")
	ErrNoSheets        = errors.New("spreadsheet has no sheets")
)

// RowError points at one rejected cell of an uploaded sheet. Row is the
// 1-based line number in the file, header included.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (e RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Message)
	}
	return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
}

// NewRowErrorWithValue creates a RowError carrying the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ErrorCollection keeps the first max row errors and counts the rest
type ErrorCollection struct {
	errors []RowError
	max    int
	total  int
}

// NewErrorCollection creates a collection; max <= 0 means 100
func NewErrorCollection(max int) *ErrorCollection {
	if max <= 0 {
		max = 100
	}
	return &ErrorCollection{max: max}
}

// Add records err, keeping it only while under the limit
func (ec *ErrorCollection) Add(err RowError) {
	ec.total++
	if len(ec.errors) < ec.max {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequiredError records an empty mandatory column
func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(RowError{Row: row, Column: column, Code: ErrCodeImportRequiredField, Message: "value is required"})
}

// AddTypeError records a value that does not parse as expected
func (ec *ErrorCollection) AddTypeError(row int, column, expected, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidType, "expected "+expected, value))
}

// Errors returns the kept errors in the order they were added
func (ec *ErrorCollection) Errors() []RowError { return ec.errors }

// TotalCount counts every added error, kept or not
func (ec *ErrorCollection) TotalCount() int { return ec.total }

func (ec *ErrorCollection) HasErrors() bool { return ec.total > 0 }

// IsTruncated reports whether errors were dropped at the limit
func (ec *ErrorCollection) IsTruncated() bool { return ec.total > ec.max }
