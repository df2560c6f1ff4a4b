package schedule

import (
	"fmt"
	"time"
)

// Hours is the daily window sessions are allowed to occupy. Both bounds of
// a session must fall on the same calendar day in Location, between
// OpenHour:00 and CloseHour:00.
type Hours struct {
	Location  *time.Location
	OpenHour  int
	CloseHour int
}

// DefaultHours is the campus rule: 07:00 to 18:00.
func DefaultHours(loc *time.Location) Hours {
	if loc == nil {
		loc = time.Local
	}
	return Hours{Location: loc, OpenHour: 7, CloseHour: 18}
}

// Check validates ordering, the same-day rule, and the allowed window.
func (h Hours) Check(startAt, endAt time.Time) error {
	start := startAt.In(h.Location)
	end := endAt.In(h.Location)

	if !start.Before(end) {
		return fmt.Errorf("startAt must be before endAt")
	}

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	if sy != ey || sm != em || sd != ed {
		return fmt.Errorf("startAt and endAt must fall on the same day")
	}

	open := time.Date(sy, sm, sd, h.OpenHour, 0, 0, 0, h.Location)
	close := time.Date(sy, sm, sd, h.CloseHour, 0, 0, 0, h.Location)
	if start.Before(open) || end.After(close) {
		return fmt.Errorf("sessions must be scheduled between %02d:00 and %02d:00", h.OpenHour, h.CloseHour)
	}

	return nil
}
