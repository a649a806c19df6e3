package types

import (
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// Interval is the bar size of a price table.
type Interval string

const (
	IntervalOneMinute      Interval = "1min"
	IntervalFiveMinutes    Interval = "5min"
	IntervalFifteenMinutes Interval = "15min"
	IntervalThirtyMinutes  Interval = "30min"
	IntervalOneHour        Interval = "1hour"
	IntervalFourHours      Interval = "4hour"
	IntervalOneDay         Interval = "1d"
)

// Intervals lists every supported interval.
var Intervals = []Interval{
	IntervalOneMinute,
	IntervalFiveMinutes,
	IntervalFifteenMinutes,
	IntervalThirtyMinutes,
	IntervalOneHour,
	IntervalFourHours,
	IntervalOneDay,
}

// ParseInterval validates s as an Interval.
func ParseInterval(s string) (Interval, error) {
	for _, i := range Intervals {
		if string(i) == s {
			return i, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidInterval, "unsupported interval %q", s)
}

// IsDaily reports whether the interval is served by the daily price call.
func (i Interval) IsDaily() bool {
	return i == IntervalOneDay
}
