package claims

import (
	"fmt"
	"time"
)

// Clock answers "now" for the pipeline. A fixed run date replaces the civil
// date but keeps the wall time, so reruns for a past day behave like that
// day.
type Clock struct {
	loc     *time.Location
	runDate *time.Time
	now     func() time.Time
}

func NewClock(loc *time.Location, runDate string) (*Clock, error) {
	c := &Clock{loc: loc, now: time.Now}
	if runDate == "" {
		return c, nil
	}

	d, err := time.ParseInLocation(time.DateOnly, runDate, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid run date %q: %w", runDate, err)
	}
	c.runDate = &d
	return c, nil
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

func (c *Clock) Now() time.Time {
	now := c.now().In(c.loc)
	if c.runDate == nil {
		return now
	}
	return time.Date(c.runDate.Year(), c.runDate.Month(), c.runDate.Day(),
		now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), c.loc)
}

func (c *Clock) Today() time.Time {
	return Today(c.Now(), c.loc)
}
