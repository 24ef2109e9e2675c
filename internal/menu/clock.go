package menu

import (
	"fmt"
	"time"

	"github.com/ariefcatur/go-menu-pricing/internal/pricing"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

const DefaultTimezone = "UTC"

// LocalTimeOfDay reads the clock once and converts it to the wall-clock time
// of the given IANA zone.
func LocalTimeOfDay(c Clock, timezone string) (pricing.TimeOfDay, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return 0, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return pricing.TimeOfDayOf(c.Now().In(loc)), nil
}
