// Package id generates and normalizes order numbers.
package id

import (
	"strings"

	"github.com/google/uuid"
)

// generatedPrefix marks order numbers minted by tallybook rather than
// carried in from an upstream payment processor.
const generatedPrefix = "tb-"

// NewOrderNo returns a fresh unique order number.
func NewOrderNo() string {
	return generatedPrefix + uuid.NewString()
}

// Normalize trims the whitespace that import sources tend to carry around
// order numbers. Matching is always done on normalized values.
func Normalize(orderNo string) string {
	return strings.TrimSpace(orderNo)
}

// IsGenerated reports whether orderNo was minted by NewOrderNo.
func IsGenerated(orderNo string) bool {
	return strings.HasPrefix(Normalize(orderNo), generatedPrefix)
}
