package ledger

import "fmt"

// DecodeError describes a malformed row. Bulk loads skip and log these;
// single-record contexts surface them.
type DecodeError struct {
	Row    int    // 1-based row number in the file, header = 1
	Column string // offending column, empty when the whole row is bad
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Reason)
}

// ValidationError describes a single field rejected before any I/O.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that no record matched an order number.
type NotFoundError struct {
	OrderNo string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no record with order number %q", e.OrderNo)
}

// DuplicateKeyError reports an order-number collision.
type DuplicateKeyError struct {
	OrderNo string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("order number %q already exists", e.OrderNo)
}
