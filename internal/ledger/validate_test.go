package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tallybook/internal/model"
)

func TestValidateForAdd(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*model.Record)
		wantField string
	}{
		{
			name:   "valid record passes",
			mutate: func(r *model.Record) {},
		},
		{
			name:   "empty timestamp is allowed",
			mutate: func(r *model.Record) { r.Timestamp = "" },
		},
		{
			name:      "lenient timestamp is rejected for add",
			mutate:    func(r *model.Record) { r.Timestamp = "2025/02/01" },
			wantField: "timestamp",
		},
		{
			name:      "unpadded timestamp is rejected",
			mutate:    func(r *model.Record) { r.Timestamp = "2025-2-1 9:00:00" },
			wantField: "timestamp",
		},
		{
			name:      "zero amount",
			mutate:    func(r *model.Record) { r.Amount = dec("0") },
			wantField: "amount",
		},
		{
			name:      "unknown direction",
			mutate:    func(r *model.Record) { r.Direction = "sideways" },
			wantField: "direction",
		},
		{
			name:      "unknown status",
			mutate:    func(r *model.Record) { r.Status = "maybe" },
			wantField: "status",
		},
		{
			name:      "empty category",
			mutate:    func(r *model.Record) { r.Category = "" },
			wantField: "category",
		},
		{
			name:      "off-list category",
			mutate:    func(r *model.Record) { r.Category = "Yachts" },
			wantField: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validAddRecord("V1")
			tt.mutate(&rec)

			errs := ValidateForAdd(rec)
			if tt.wantField == "" {
				assert.Empty(t, errs)
				return
			}
			require.NotEmpty(t, errs)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestValidateForAdd_CollectsAllViolations(t *testing.T) {
	rec := validAddRecord("V1")
	rec.Amount = dec("0")
	rec.Category = ""
	rec.Status = "maybe"

	errs := ValidateForAdd(rec)
	assert.Len(t, errs, 3)
}

func TestParseField(t *testing.T) {
	f, ok := ParseField("remarks")
	require.True(t, ok)
	assert.Equal(t, FieldRemarks, f)

	f, ok = ParseField("payment_method")
	require.True(t, ok)
	assert.Equal(t, FieldPaymentMethod, f)

	// Order number is identity, not an updatable field.
	_, ok = ParseField("order_no")
	assert.False(t, ok)
}
