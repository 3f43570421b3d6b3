// Package stats turns finalized match history into player rankings and team standings.
// Every function here is pure: no I/O, no shared state, input slices are never modified,
// so callers may invoke them concurrently without locking.
package stats

import (
	"sort"
	"time"

	"github.com/maxviazov/racha-stats-service/internal/model"
)

// FilterMatchesByPeriod returns the matches covered by period.
//
// historico returns a copy of the input, including matches with an unknown date.
// ano keeps matches whose UTC calendar year equals *year; matches with an unknown date never
// match. ano without a year and unknown periods yield an empty slice rather than silently
// falling back to the unfiltered history.
func FilterMatchesByPeriod(matches []model.Match, period model.Period, year *int) []model.Match {
	switch period {
	case model.PeriodHistorico:
		out := make([]model.Match, len(matches))
		copy(out, matches)
		return out
	case model.PeriodAno:
		if year == nil {
			return []model.Match{}
		}
		out := make([]model.Match, 0, len(matches))
		for _, m := range matches {
			if y, ok := matchYear(m); ok && y == *year {
				out = append(out, m)
			}
		}
		return out
	default:
		return []model.Match{}
	}
}

// ExtractAvailableYears lists the distinct years present in matches, newest first.
// The first element is what a year selector should preselect.
func ExtractAvailableYears(matches []model.Match) []int {
	seen := make(map[int]struct{})
	years := make([]int, 0, 4)
	for _, m := range matches {
		y, ok := matchYear(m)
		if !ok {
			continue
		}
		if _, dup := seen[y]; dup {
			continue
		}
		seen[y] = struct{}{}
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// ComputeUpdatedAt returns the most recent match date, or nil when no match has a known date.
func ComputeUpdatedAt(matches []model.Match) *time.Time {
	var latest time.Time
	for _, m := range matches {
		if m.Date.After(latest) {
			latest = m.Date
		}
	}
	if latest.IsZero() {
		return nil
	}
	return &latest
}

func matchYear(m model.Match) (int, bool) {
	if m.Date.IsZero() {
		return 0, false
	}
	return m.Date.UTC().Year(), true
}
