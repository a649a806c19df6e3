package types

import (
	"sort"
	"time"

	"github.com/moznion/go-optional"
)

// FeatureRecord holds derived values for the (ticker, timestamp) of the row
// they were computed from. A None value marks a feature that could not be
// computed for that row.
type FeatureRecord struct {
	Ticker string
	Time   time.Time
	Values map[string]optional.Option[float64]
}

// Names returns the feature names in sorted order.
func (r FeatureRecord) Names() []string {
	names := make([]string, 0, len(r.Values))
	for name := range r.Values {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// FeatureRecordsToFrame lays records out as a frame with one column per
// feature name (sorted union across all records).
func FeatureRecordsToFrame(records []FeatureRecord) Frame {
	var columns []string
	for _, rec := range records {
		columns = UnionColumns(columns, rec.Names())
	}

	sort.Strings(columns)

	frame := Frame{Columns: columns, Records: make([]FrameRecord, 0, len(records))}

	for _, rec := range records {
		values := make([]optional.Option[float64], len(columns))

		for i, c := range columns {
			if v, ok := rec.Values[c]; ok {
				values[i] = v
			} else {
				values[i] = optional.None[float64]()
			}
		}

		frame.Records = append(frame.Records, FrameRecord{Ticker: rec.Ticker, Time: rec.Time, Values: values})
	}

	return frame
}

// FeatureRecordsFromFrame is the inverse of FeatureRecordsToFrame.
func FeatureRecordsFromFrame(frame Frame) []FeatureRecord {
	records := make([]FeatureRecord, 0, len(frame.Records))

	for _, rec := range frame.Records {
		values := make(map[string]optional.Option[float64], len(frame.Columns))

		for i, c := range frame.Columns {
			if i < len(rec.Values) {
				values[c] = rec.Values[i]
			} else {
				values[c] = optional.None[float64]()
			}
		}

		records = append(records, FeatureRecord{Ticker: rec.Ticker, Time: rec.Time, Values: values})
	}

	return records
}
