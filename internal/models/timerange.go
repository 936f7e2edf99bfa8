package models

import (
	"fmt"
	"time"
)

// TimeRange is a window between two zoned instants. Start is never after End.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// NewTimeRange returns a TimeRange, or an error if end is before start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	if end.Before(start) {
		return TimeRange{}, fmt.Errorf("end %s is before start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	return TimeRange{Start: start, End: end}, nil
}

// Overlaps reports whether a and b share an instant. Boundaries are strict, so
// a window ending exactly when the other starts does not overlap it.
func (a TimeRange) Overlaps(b TimeRange) bool {
	start := a.Start
	if b.Start.After(start) {
		start = b.Start
	}
	end := a.End
	if b.End.Before(end) {
		end = b.End
	}
	return start.Before(end)
}

// Equal reports whether both ranges describe the same instants, regardless of
// the offsets they are expressed in.
func (a TimeRange) Equal(b TimeRange) bool {
	return a.Start.Equal(b.Start) && a.End.Equal(b.End)
}

// Past reports whether the range ended before now.
func (a TimeRange) Past(now time.Time) bool {
	return a.End.Before(now)
}

func (a TimeRange) String() string {
	return a.Start.Format(time.RFC3339) + "/" + a.End.Format(time.RFC3339)
}
