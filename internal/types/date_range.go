package types

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// DateLayout is the YYYY-MM-DD layout used for identifiers and API parameters.
const DateLayout = "2006-01-02"

// BulkIdentifier names a download made without a date range.
const BulkIdentifier = "bulk"

// DateRange is an inclusive calendar-day range.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses two YYYY-MM-DD dates.
func NewDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, errors.Wrapf(errors.ErrCodeInvalidDateRange, err, "invalid start date %q", start)
	}

	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, errors.Wrapf(errors.ErrCodeInvalidDateRange, err, "invalid end date %q", end)
	}

	r := DateRange{Start: s, End: e}

	return r, r.Validate()
}

// Validate checks that the range is not inverted.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New(errors.ErrCodeInvalidDateRange, "date range requires both start and end")
	}

	if r.End.Before(r.Start) {
		return errors.Newf(errors.ErrCodeInvalidDateRange, "end date %s is before start date %s", r.End.Format(DateLayout), r.Start.Format(DateLayout))
	}

	return nil
}

// From returns the formatted start date.
func (r DateRange) From() string {
	return r.Start.Format(DateLayout)
}

// To returns the formatted end date.
func (r DateRange) To() string {
	return r.End.Format(DateLayout)
}

// Identifier returns "<start>_<end>".
func (r DateRange) Identifier() string {
	return r.From() + "_" + r.To()
}

// RangeIdentifier returns the file identifier of an optional range: the
// range identifier when present, BulkIdentifier otherwise.
func RangeIdentifier(r optional.Option[DateRange]) string {
	if v, err := r.Take(); err == nil {
		return v.Identifier()
	}

	return BulkIdentifier
}
