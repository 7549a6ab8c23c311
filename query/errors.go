package query

import (
	"errors"
	"fmt"
)

// MaxResultRows is the largest result a query may produce
const MaxResultRows = 5000

// MaxFilterDepth is the maximum nesting depth of a filter tree
const MaxFilterDepth = 100

var (
	// ErrInvalidQuery matches every *ValidationError
	ErrInvalidQuery = errors.New("invalid query")

	// ErrResultTooLarge matches every *ResultTooLargeError
	ErrResultTooLarge = errors.New("result too large")
)

// ValidationError reports a malformed or semantically invalid query
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid query: " + e.Reason
}

// Is reports whether target is ErrInvalidQuery
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidQuery
}

// invalidf creates a ValidationError with a formatted reason
func invalidf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ResultTooLargeError reports a result exceeding MaxResultRows
type ResultTooLargeError struct {
	Rows  int
	Limit int
}

func (e *ResultTooLargeError) Error() string {
	return fmt.Sprintf("result too large: %d rows (max %d)", e.Rows, e.Limit)
}

// Is reports whether target is ErrResultTooLarge
func (e *ResultTooLargeError) Is(target error) bool {
	return target == ErrResultTooLarge
}
