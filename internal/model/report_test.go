package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonth(t *testing.T) {
	testTable := []struct {
		name  string
		year  int
		month time.Month
		to    time.Time
	}{
		{
			name:  "Middle of year",
			year:  2026,
			month: time.October,
			to:    time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "December rolls the year",
			year:  2025,
			month: time.December,
			to:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, testCase := range testTable {
		t.Run(testCase.name, func(t *testing.T) {
			w := Month(testCase.year, testCase.month)
			require.False(t, w.IsAllTime())
			require.Equal(t, time.Date(testCase.year, testCase.month, 1, 0, 0, 0, 0, time.UTC), w.From)
			require.Equal(t, testCase.to, w.To)
		})
	}
}

func TestWindow_Bounds(t *testing.T) {
	w := AllTime()
	require.True(t, w.IsAllTime())

	from, to := w.Bounds()
	now := time.Now().UTC()
	require.True(t, from.Before(now))
	require.True(t, to.After(now))
}
