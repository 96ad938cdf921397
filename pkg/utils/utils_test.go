package utils

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lima = mustLoadLima()

func mustLoadLima() *time.Location {
	loc, err := time.LoadLocation("America/Lima")
	if err != nil {
		panic(err)
	}
	return loc
}

func TestStartOfDay(t *testing.T) {
	ts := time.Date(2024, 6, 15, 18, 45, 12, 999, lima)

	got := StartOfDay(ts, lima)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, lima), got)
}

func TestStartOfDayConvertsLocation(t *testing.T) {
	// 02:00 UTC on the 16th is still the 15th in Lima (UTC-5)
	ts := time.Date(2024, 6, 16, 2, 0, 0, 0, time.UTC)

	got := StartOfDay(ts, lima)

	assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, lima), got)
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{"plain month", "2024-01-15", 1, "2024-02-15"},
		{"several months", "2024-01-15", 11, "2024-12-15"},
		{"year rollover", "2024-07-15", 12, "2025-07-15"},
		{"jan 31 clamps to leap feb", "2024-01-31", 1, "2024-02-29"},
		{"jan 31 clamps to non leap feb", "2025-01-31", 1, "2025-02-28"},
		{"clamp then full month again", "2024-01-31", 2, "2024-03-31"},
		{"may 31 clamps to june 30", "2024-05-31", 1, "2024-06-30"},
		{"oct 31 does not normalize into december", "2024-10-31", 1, "2024-11-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := time.ParseInLocation("2006-01-02", tt.start, lima)
			require.NoError(t, err)
			want, err := time.ParseInLocation("2006-01-02", tt.want, lima)
			require.NoError(t, err)

			assert.Equal(t, want, AddMonths(start, tt.months, lima))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2024, 6, 15, 0, 0, 0, 0, lima)
	b := time.Date(2024, 6, 25, 0, 0, 0, 0, lima)

	assert.Equal(t, 10, DaysBetween(a, b, lima))
	assert.Equal(t, -10, DaysBetween(b, a, lima))
	assert.Equal(t, 0, DaysBetween(a, a, lima))

	// Time of day never contributes
	late := time.Date(2024, 6, 24, 23, 59, 59, 0, lima)
	assert.Equal(t, 9, DaysBetween(a, late, lima))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/02/2024", FormatDate(time.Date(2024, 2, 5, 0, 0, 0, 0, lima)))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "S/ 88.85", FormatAmount("S/", decimal.RequireFromString("88.85")))
	assert.Equal(t, "S/ 1000.00", FormatAmount("S/", decimal.NewFromInt(1000)))
}
