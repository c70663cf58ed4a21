package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	cases := map[string]Direction{
		"income":  DirectionIncome,
		"IN":      DirectionIncome,
		" inflow": DirectionIncome,
		"credit":  DirectionIncome,
		"expense": DirectionExpense,
		"Out":     DirectionExpense,
		"OUTFLOW": DirectionExpense,
		"debit":   DirectionExpense,
	}
	for input, want := range cases {
		got, ok := ParseDirection(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}

	_, ok := ParseDirection("sideways")
	assert.False(t, ok)
}

func TestParseStatus(t *testing.T) {
	got, ok := ParseStatus("Success")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got)

	got, ok = ParseStatus("processing")
	require.True(t, ok)
	assert.Equal(t, StatusPending, got)

	_, ok = ParseStatus("maybe")
	assert.False(t, ok)
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory("Dining"))
	assert.True(t, ValidCategory("dining"))
	assert.True(t, ValidCategory(" Transport "))
	assert.False(t, ValidCategory("Yachts"))
	assert.False(t, ValidCategory(""))
}

func TestParseTimestamp(t *testing.T) {
	for _, input := range []string{
		"2025-03-14 09:26:53",
		"2025-03-14",
		"2025/03/14 09:26:53",
		"2025/03/14",
	} {
		ts, ok := ParseTimestamp(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, 2025, ts.Year())
		assert.Equal(t, 14, ts.Day())
	}

	_, ok := ParseTimestamp("last tuesday")
	assert.False(t, ok)
	_, ok = ParseTimestamp("")
	assert.False(t, ok)
}
