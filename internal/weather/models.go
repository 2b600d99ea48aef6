package weather

import (
	"fmt"
	"time"
)

// Location is the fixed point the forecast is requested for.
type Location struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// Key returns a canonical string key for the location, used in logs and upstream queries.
func (l Location) Key() string {
	return fmt.Sprintf("%f,%f", l.Lat, l.Lon)
}

// Interval is one forecast sample: the reflectivity expected from Timestamp onwards.
type Interval struct {
	Timestamp time.Time `json:"timestamp"`
	DBZ       float64   `json:"dbz"`
}

// Record is the single cached forecast fetch. Intervals are ordered by Timestamp ascending,
// the first one being the provider's "now".
type Record struct {
	FetchedAt       time.Time  `json:"fetched_at"`
	Location        Location   `json:"location"`
	IntervalMinutes int        `json:"interval_minutes"`
	Intervals       []Interval `json:"intervals"`
}

// Matches reports whether the record was fetched for loc at the given granularity.
func (r Record) Matches(loc Location, minutes int) bool {
	return r.Location == loc && r.IntervalMinutes == minutes
}

// Age reports how old the forecast is relative to now, anchored on the first interval.
// ok is false when the record carries no intervals and therefore has no anchor.
func (r Record) Age(now time.Time) (age time.Duration, ok bool) {
	if len(r.Intervals) == 0 {
		return 0, false
	}
	return now.Sub(r.Intervals[0].Timestamp), true
}

// ValidIntervalMinutes lists the forecast granularities a caller may ask for.
var ValidIntervalMinutes = []int{1, 5, 15, 30}

// ValidateIntervalMinutes returns ErrInvalidInterval unless minutes is one of ValidIntervalMinutes.
func ValidateIntervalMinutes(minutes int) error {
	for _, m := range ValidIntervalMinutes {
		if m == minutes {
			return nil
		}
	}
	return fmt.Errorf("%w: %d minutes", ErrInvalidInterval, minutes)
}
