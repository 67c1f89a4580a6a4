package services

import "time"

// ExpandWeekly produces the concrete occurrences for one event-creation
// request, in chronological order: just the initial instant when weekly is
// false, otherwise the initial instant plus every +7 day step up to and
// including the last occurrence on or before December 31 of the starting
// year. An occurrence landing exactly on Dec 31 is included.
func ExpandWeekly(start time.Time, weekly bool) []time.Time {
	occurrences := []time.Time{start}
	if !weekly {
		return occurrences
	}

	yearEnd := time.Date(start.Year(), time.December, 31, 23, 59, 59, 999999999, start.Location())
	for next := start.AddDate(0, 0, 7); !next.After(yearEnd); next = next.AddDate(0, 0, 7) {
		occurrences = append(occurrences, next)
	}

	return occurrences
}
