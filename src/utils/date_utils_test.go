package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseSheetDate(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"15/01/2024", true, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)},
		{"5/3/2024", true, time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15", false, time.Time{}},
		{"15 Jan 2024", false, time.Time{}},
		{"31/02/2024", false, time.Time{}}, // impossible date
		{"15/13/2024", false, time.Time{}},
		{"15/01/24", false, time.Time{}}, // two-digit year
		{"", false, time.Time{}},
	}
	for _, tc := range cases {
		got, ok := ParseSheetDate(tc.in)
		require.Equal(t, tc.ok, ok, "input=%q", tc.in)
		if tc.ok {
			require.True(t, got.Equal(tc.want), "input=%q got=%v", tc.in, got)
		}
	}
}

func TestMonthYearOf(t *testing.T) {
	require.Equal(t, "Jan 2024", MonthYearOf("15/01/2024"))
	require.Equal(t, "not a date", MonthYearOf("not a date"), "unparseable input passes through untouched")
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	c := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)
	require.True(t, SameMonth(a, b))
	require.False(t, SameMonth(a, c))
}

func TestRoundMoney(t *testing.T) {
	require.Equal(t, 10.57, RoundMoney(10.566))
	require.Equal(t, -2.33, RoundFloat(-2.334, 2))
	require.Equal(t, 0.0, NonNegative(-5))
	require.Equal(t, 5.0, NonNegative(5))
}
