package teamsnap

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"snapsync/internal/models"
)

// DataQualityError means an event exists but its dates cannot be used.
type DataQualityError struct {
	EventRef string
	Err      error
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("event %s: %v", e.EventRef, e.Err)
}

func (e *DataQualityError) Unwrap() error {
	return e.Err
}

// EventWindow fetches the event at ref and returns when it takes place.
func (c *Client) EventWindow(ctx context.Context, ref string) (models.TimeRange, error) {
	coll, err := c.hm.Fetch(ctx, ref, nil)
	if err != nil {
		return models.TimeRange{}, err
	}
	item, err := single(coll, "event")
	if err != nil {
		return models.TimeRange{}, &DataQualityError{EventRef: ref, Err: err}
	}

	fields := make(map[string]string, 3)
	for _, name := range []string{"arrival_date", "end_date", "time_zone_offset"} {
		v, err := item.String(name)
		if err != nil {
			return models.TimeRange{}, &DataQualityError{EventRef: ref, Err: err}
		}
		fields[name] = v
	}

	start, err := NormalizeTimestamp(fields["arrival_date"], fields["time_zone_offset"])
	if err != nil {
		return models.TimeRange{}, &DataQualityError{EventRef: ref, Err: fmt.Errorf("arrival_date: %w", err)}
	}
	end, err := NormalizeTimestamp(fields["end_date"], fields["time_zone_offset"])
	if err != nil {
		return models.TimeRange{}, &DataQualityError{EventRef: ref, Err: fmt.Errorf("end_date: %w", err)}
	}

	tr, err := models.NewTimeRange(start, end)
	if err != nil {
		return models.TimeRange{}, &DataQualityError{EventRef: ref, Err: err}
	}
	return tr, nil
}

// FutureWindows yields the time range of every event in refs that ends at or
// after now. Events that cannot be fetched or have unusable dates are logged
// and skipped. Each iteration fetches the events again.
func (c *Client) FutureWindows(ctx context.Context, refs []string, now time.Time) iter.Seq[models.TimeRange] {
	return func(yield func(models.TimeRange) bool) {
		for _, ref := range refs {
			if ctx.Err() != nil {
				return
			}

			tr, err := c.EventWindow(ctx, ref)
			if err != nil {
				var dq *DataQualityError
				if errors.As(err, &dq) {
					c.logger.Debug("Skipping event with unusable dates", "event", ref, "error", err)
				} else {
					c.logger.Warn("Could not fetch event, skipping", "event", ref, "error", err)
				}
				continue
			}

			if tr.Past(now) {
				c.logger.Debug("Skipping past event", "event", ref, "end", tr.End)
				continue
			}
			if !yield(tr) {
				return
			}
		}
	}
}
