package ingest

import (
	"errors"
	"fmt"
)

// Ingest error codes
const (
	ErrCodeIngestEmptyFile       = "ERR_INGEST_EMPTY_FILE"
	ErrCodeIngestInvalidEncoding = "ERR_INGEST_INVALID_ENCODING"
	ErrCodeIngestMissingHeader   = "ERR_INGEST_MISSING_HEADER"
	ErrCodeIngestMalformedRow    = "ERR_INGEST_MALFORMED_ROW"
	ErrCodeIngestRequiredField   = "ERR_INGEST_REQUIRED_FIELD"
	ErrCodeIngestInvalidFormat   = "ERR_INGEST_INVALID_FORMAT"
)

// Common ingest errors
var (
	// ErrEmptyFile is returned when the uploaded file has no content
	ErrEmptyFile = errors.New("file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding")

	// ErrMissingHeader is returned when a header row is expected but absent
	ErrMissingHeader = errors.New("file missing header row")
)

// RowError represents an error in a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
	}
}

// NewRowErrorWithValue creates a new RowError with the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{
		Row:     row,
		Column:  column,
		Code:    code,
		Message: message,
		Value:   value,
	}
}

// ErrorCollection accumulates row errors up to a sample limit while still
// counting everything past it.
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum sample size
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 20
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequiredError adds a required field error
func (ec *ErrorCollection) AddRequiredError(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeIngestRequiredField, fmt.Sprintf("field '%s' is required", column)))
}

// AddFormatError adds a format validation error
func (ec *ErrorCollection) AddFormatError(row int, column, expectedFormat, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeIngestInvalidFormat,
		fmt.Sprintf("invalid format, expected %s", expectedFormat), value))
}

// AddMalformedError adds a structural row error
func (ec *ErrorCollection) AddMalformedError(row int, message string) {
	ec.Add(NewRowError(row, "", ErrCodeIngestMalformedRow, message))
}

// Errors returns the sampled errors, capped at the configured maximum
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns how many errors were added, including past the cap
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if any error was added
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// Messages returns the sampled errors formatted as strings
func (ec *ErrorCollection) Messages() []string {
	msgs := make([]string, len(ec.errors))
	for i, e := range ec.errors {
		msgs[i] = e.Error()
	}
	return msgs
}
