package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Direction says which way money moved.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Status represents the settlement state of a transaction.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
)

// Record is a single transaction row in a user's records.csv.
type Record struct {
	Timestamp     string // free text, see ParseTimestamp
	Category      string
	Counterparty  string
	Item          string
	Direction     Direction
	Amount        decimal.Decimal // always >= 0; sign lives in Direction
	PaymentMethod string
	Status        Status
	OrderNo       string // unique within a file, never reassigned
	MerchantNo    string
	Remarks       string
}

// directionSynonyms maps accepted spellings to canonical directions.
var directionSynonyms = map[string]Direction{
	"income":  DirectionIncome,
	"in":      DirectionIncome,
	"inflow":  DirectionIncome,
	"credit":  DirectionIncome,
	"expense": DirectionExpense,
	"out":     DirectionExpense,
	"outflow": DirectionExpense,
	"debit":   DirectionExpense,
}

var statusSynonyms = map[string]Status{
	"completed":  StatusCompleted,
	"complete":   StatusCompleted,
	"success":    StatusCompleted,
	"done":       StatusCompleted,
	"pending":    StatusPending,
	"processing": StatusPending,
	"open":       StatusPending,
}

// ParseDirection normalizes a direction spelling. ok is false for
// anything outside the synonym table.
func ParseDirection(s string) (Direction, bool) {
	d, ok := directionSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// ParseStatus normalizes a status spelling.
func ParseStatus(s string) (Status, bool) {
	st, ok := statusSynonyms[strings.ToLower(strings.TrimSpace(s))]
	return st, ok
}

// Categories is the allow-list for new records. Updates and loads accept
// free text so imported history is never rejected.
var Categories = []string{
	"Dining",
	"Groceries",
	"Transport",
	"Shopping",
	"Entertainment",
	"Housing",
	"Utilities",
	"Medical",
	"Education",
	"Salary",
	"Transfer",
	"Investment",
	"Other",
}

// ValidCategory reports whether name is in the allow-list (case-insensitive).
func ValidCategory(name string) bool {
	name = strings.TrimSpace(name)
	for _, c := range Categories {
		if strings.EqualFold(c, name) {
			return true
		}
	}
	return false
}

// TimestampFormat is the canonical layout required for new timestamps.
const TimestampFormat = "2006-01-02 15:04:05"

// timestampFormats are the layouts accepted when reading existing data.
var timestampFormats = []string{
	TimestampFormat,
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	time.RFC3339,
}

// ParseTimestamp parses a stored timestamp leniently. ok is false when no
// accepted layout matches; callers sorting by time push those records last.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
