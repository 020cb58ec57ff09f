package dataset

import (
	"errors"
	"fmt"
)

// FormatErrorCode categorizes data-format errors raised by the loader.
type FormatErrorCode string

const (
	// ErrCodeMissingColumn indicates a required schema column is absent.
	ErrCodeMissingColumn FormatErrorCode = "MISSING_COLUMN"

	// ErrCodeUnknownColumn indicates a column outside the schema.
	ErrCodeUnknownColumn FormatErrorCode = "UNKNOWN_COLUMN"

	// ErrCodeBadValue indicates a cell that cannot be parsed or violates
	// a column constraint (negative time, non-binary event, ...).
	ErrCodeBadValue FormatErrorCode = "BAD_VALUE"

	// ErrCodeDuplicateID indicates a repeated subject identifier.
	ErrCodeDuplicateID FormatErrorCode = "DUPLICATE_ID"

	// ErrCodeEmpty indicates a dataset with a header but no rows.
	ErrCodeEmpty FormatErrorCode = "EMPTY_DATASET"
)

// FormatError is a data-format error with enough structure to point the
// analyst at the offending cell. Row is the 1-based data row (header
// excluded); Row 0 means the error concerns the header or whole file.
type FormatError struct {
	Code    FormatErrorCode
	Row     int
	Column  string
	Message string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	switch {
	case e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: %s (row=%d, column=%s)", e.Code, e.Message, e.Row, e.Column)
	case e.Column != "":
		return fmt.Sprintf("%s: %s (column=%s)", e.Code, e.Message, e.Column)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// IsFormatError reports whether err is (or wraps) a FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

func newBadValue(row int, column, message string) *FormatError {
	return &FormatError{Code: ErrCodeBadValue, Row: row, Column: column, Message: message}
}
