// Package schedule holds the pure scheduling rules: interval overlap,
// the allowed-hours window, and the weekly board renderer.
package schedule

import (
	"time"

	"tutorbook/internal/model"
)

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect. Touching
// boundaries (a.End == b.Start) do not count as overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// SessionInterval extracts the booked window of a session.
func SessionInterval(s *model.Session) Interval {
	return Interval{Start: s.StartAt, End: s.EndAt}
}

// FindConflict returns the first session whose window overlaps the
// candidate interval, skipping cancelled sessions and the session with
// excludeID (the record being updated).
func FindConflict(candidate Interval, existing []*model.Session, excludeID string) *model.Session {
	for _, s := range existing {
		if s.ID == excludeID || s.Status == model.SessionStatusCancelled {
			continue
		}
		if Overlaps(candidate, SessionInterval(s)) {
			return s
		}
	}
	return nil
}
