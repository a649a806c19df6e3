package types

import (
	"time"

	"github.com/moznion/go-optional"
)

// Frame is the codec-level representation of a table file: a ticker and
// timestamp key followed by nullable float64 value columns.
type Frame struct {
	Columns []string
	Records []FrameRecord
}

// FrameRecord is one line of a Frame. Values are aligned with Frame.Columns.
type FrameRecord struct {
	Ticker string
	Time   time.Time
	Values []optional.Option[float64]
}

// Len returns the number of records.
func (f Frame) Len() int {
	return len(f.Records)
}

// ColumnIndex returns the position of column, or -1.
func (f Frame) ColumnIndex(column string) int {
	for i, c := range f.Columns {
		if c == column {
			return i
		}
	}

	return -1
}

// Align returns a copy of f laid out on columns. Columns missing from f are
// filled with nulls; columns of f not in the target are dropped.
func (f Frame) Align(columns []string) Frame {
	positions := make([]int, len(columns))
	for i, c := range columns {
		positions[i] = f.ColumnIndex(c)
	}

	out := Frame{
		Columns: append([]string(nil), columns...),
		Records: make([]FrameRecord, 0, len(f.Records)),
	}

	for _, rec := range f.Records {
		values := make([]optional.Option[float64], len(columns))

		for i, pos := range positions {
			if pos >= 0 && pos < len(rec.Values) {
				values[i] = rec.Values[pos]
			} else {
				values[i] = optional.None[float64]()
			}
		}

		out.Records = append(out.Records, FrameRecord{Ticker: rec.Ticker, Time: rec.Time, Values: values})
	}

	return out
}

// UnionColumns returns the columns of a followed by the columns of b that a lacks.
func UnionColumns(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))

	for _, cols := range [][]string{a, b} {
		for _, c := range cols {
			if _, ok := seen[c]; ok {
				continue
			}

			seen[c] = struct{}{}
			out = append(out, c)
		}
	}

	return out
}
