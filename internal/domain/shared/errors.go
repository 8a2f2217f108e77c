package shared

import "errors"

// Error codes shared by every domain package
const (
	CodeNotFound      = "NOT_FOUND"
	CodeValidation    = "VALIDATION_ERROR"
	CodeParse         = "PARSE_ERROR"
	CodeNoData        = "NO_DATA"
	CodeDuplicate     = "DUPLICATE_REFERENCE"
	CodePersistence   = "PERSISTENCE_ERROR"
	CodeMergeConflict = "MERGE_CONFLICT"
	CodeInvalidState  = "INVALID_STATE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError carrying the same code.
// errors.Is(err, ErrValidation) therefore matches every validation error,
// whatever its message.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Sentinels for errors.Is checks
var (
	ErrNotFound      = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidation    = NewDomainError(CodeValidation, "Validation failed")
	ErrParse         = NewDomainError(CodeParse, "File could not be parsed")
	ErrNoData        = NewDomainError(CodeNoData, "No processable rows")
	ErrMergeConflict = NewDomainError(CodeMergeConflict, "Orders already belong to a shipment batch")
	ErrInvalidState  = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
)

// NewValidationError is returned for missing files, missing columns and bad arguments.
func NewValidationError(message string) *DomainError {
	return NewDomainError(CodeValidation, message)
}

// NewParseError is returned when a file's structure cannot be read at all.
func NewParseError(message string) *DomainError {
	return NewDomainError(CodeParse, message)
}

// NewNoDataError is returned when parsing succeeded but yielded nothing usable.
func NewNoDataError(message string) *DomainError {
	return NewDomainError(CodeNoData, message)
}

// NewMergeConflictError is returned when a merge selection contains batched orders.
func NewMergeConflictError(message string) *DomainError {
	return NewDomainError(CodeMergeConflict, message)
}

// PersistenceError marks a failed transaction. Its message is the message of
// the underlying error, unchanged.
type PersistenceError struct {
	Op  string
	Err error
}

// NewPersistenceError wraps err, or returns nil when err is nil.
// Domain errors raised inside a transaction pass through untouched.
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is, or wraps, a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
