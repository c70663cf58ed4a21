package ledger

import (
	"fmt"
	"time"

	"github.com/tallybook-dev/tallybook/internal/model"
)

// ValidateForAdd checks a record before it is appended. Violations are
// collected rather than failing on the first so the caller can report them
// all; no I/O happens when any are present.
func ValidateForAdd(rec model.Record) []ValidationError {
	var errs []ValidationError

	// New timestamps must be canonical; lenient parsing is for data
	// already on disk.
	if rec.Timestamp != "" && !strictTimestamp(rec.Timestamp) {
		errs = append(errs, ValidationError{
			Field:  "timestamp",
			Reason: fmt.Sprintf("%q does not match %q", rec.Timestamp, model.TimestampFormat),
		})
	}

	if !rec.Amount.IsPositive() {
		errs = append(errs, ValidationError{
			Field:  "amount",
			Reason: fmt.Sprintf("must be positive, got %s", rec.Amount),
		})
	}

	if rec.Direction != model.DirectionIncome && rec.Direction != model.DirectionExpense {
		errs = append(errs, ValidationError{
			Field:  "direction",
			Reason: fmt.Sprintf("unknown direction %q", rec.Direction),
		})
	}

	if rec.Status != model.StatusCompleted && rec.Status != model.StatusPending {
		errs = append(errs, ValidationError{
			Field:  "status",
			Reason: fmt.Sprintf("unknown status %q", rec.Status),
		})
	}

	if rec.Category == "" {
		errs = append(errs, ValidationError{Field: "category", Reason: "must not be empty"})
	} else if !model.ValidCategory(rec.Category) {
		errs = append(errs, ValidationError{
			Field:  "category",
			Reason: fmt.Sprintf("%q is not a standard category", rec.Category),
		})
	}

	return errs
}

// strictTimestamp requires the canonical layout exactly, including zero
// padding. time.Parse alone accepts "2025-1-5", which round-trips
// differently, so the reformatted value must match byte for byte.
func strictTimestamp(s string) bool {
	t, err := time.Parse(model.TimestampFormat, s)
	if err != nil {
		return false
	}
	return t.Format(model.TimestampFormat) == s
}
