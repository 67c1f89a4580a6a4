package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandWeeklySingleWhenNotWeekly(t *testing.T) {
	start := time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC)

	occurrences := ExpandWeekly(start, false)

	require.Len(t, occurrences, 1)
	assert.Equal(t, start, occurrences[0])
}

func TestExpandWeeklyStopsAtYearEnd(t *testing.T) {
	start := time.Date(2026, 12, 20, 20, 0, 0, 0, time.UTC)

	occurrences := ExpandWeekly(start, true)

	require.Len(t, occurrences, 2)
	assert.Equal(t, start, occurrences[0])
	assert.Equal(t, time.Date(2026, 12, 27, 20, 0, 0, 0, time.UTC), occurrences[1])
}

func TestExpandWeeklyIncludesLastDayOfYear(t *testing.T) {
	start := time.Date(2026, 12, 24, 18, 0, 0, 0, time.UTC)

	occurrences := ExpandWeekly(start, true)

	require.Len(t, occurrences, 2)
	assert.Equal(t, time.Date(2026, 12, 31, 18, 0, 0, 0, time.UTC), occurrences[1])
}

func TestExpandWeeklyLastStartOfYearIsSingle(t *testing.T) {
	start := time.Date(2026, 12, 31, 23, 0, 0, 0, time.UTC)

	occurrences := ExpandWeekly(start, true)

	require.Len(t, occurrences, 1)
}

func TestExpandWeeklyProperties(t *testing.T) {
	start := time.Date(2026, 2, 3, 19, 0, 0, 0, time.UTC)

	occurrences := ExpandWeekly(start, true)

	require.NotEmpty(t, occurrences)
	assert.Equal(t, start, occurrences[0])

	yearEnd := time.Date(2026, 12, 31, 23, 59, 59, 999999999, time.UTC)
	for i, occ := range occurrences {
		assert.Equal(t, 2026, occ.Year())
		assert.False(t, occ.After(yearEnd))
		// Same wall-clock time every week.
		assert.Equal(t, start.Hour(), occ.Hour())
		assert.Equal(t, start.Minute(), occ.Minute())
		if i > 0 {
			assert.Equal(t, 7*24*time.Hour, occ.Sub(occurrences[i-1]))
		}
	}

	// The week after the final occurrence must land in the next year.
	last := occurrences[len(occurrences)-1]
	assert.True(t, last.AddDate(0, 0, 7).After(yearEnd))
}
