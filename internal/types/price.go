package types

import (
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// Value column names of a price table, in file order.
const (
	ColumnOpen     = "open"
	ColumnHigh     = "high"
	ColumnLow      = "low"
	ColumnClose    = "close"
	ColumnVolume   = "volume"
	ColumnAdjClose = "adj_close"
)

// PriceColumns lists the value columns of a price table frame.
var PriceColumns = []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose, ColumnVolume, ColumnAdjClose}

var validate = validator.New()

// PriceRow is one OHLCV observation for a ticker at a timestamp.
// Provider and interval are implied by the table file the row lives in.
type PriceRow struct {
	Ticker   string                   `validate:"required"`
	Time     time.Time                `validate:"required"`
	Open     float64                  `validate:"gte=0"`
	High     float64                  `validate:"gte=0,gtefield=Low"`
	Low      float64                  `validate:"gte=0"`
	Close    float64                  `validate:"gte=0"`
	Volume   optional.Option[float64] `validate:"-"`
	AdjClose optional.Option[float64] `validate:"-"`
}

// Validate checks a row at the I/O boundary.
func (r PriceRow) Validate() error {
	for _, v := range []float64{r.Open, r.High, r.Low, r.Close} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Newf(errors.ErrCodeInvalidPriceRow, "non-finite price for %s at %s", r.Ticker, r.Time.Format(time.RFC3339))
		}
	}

	if err := validate.Struct(r); err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidPriceRow, err, "invalid price row for %s at %s", r.Ticker, r.Time.Format(time.RFC3339))
	}

	return nil
}

// PriceTable is an ordered collection of price rows.
type PriceTable []PriceRow

// ForTicker returns the rows for ticker, keeping their order.
func (t PriceTable) ForTicker(ticker string) PriceTable {
	out := make(PriceTable, 0, len(t))

	for _, row := range t {
		if row.Ticker == ticker {
			out = append(out, row)
		}
	}

	return out
}

// Head returns at most the first n rows.
func (t PriceTable) Head(n int) PriceTable {
	if n < 0 {
		n = 0
	}

	if n > len(t) {
		n = len(t)
	}

	return t[:n]
}

// SortLatestFirst returns a copy ordered by descending timestamp.
// Rows with equal timestamps keep their relative order.
func (t PriceTable) SortLatestFirst() PriceTable {
	out := make(PriceTable, len(t))
	copy(out, t)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})

	return out
}

// Validate validates every row.
func (t PriceTable) Validate() error {
	for _, row := range t {
		if err := row.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// ToFrame converts the table to its codec representation.
func (t PriceTable) ToFrame() Frame {
	frame := Frame{
		Columns: append([]string(nil), PriceColumns...),
		Records: make([]FrameRecord, 0, len(t)),
	}

	for _, row := range t {
		frame.Records = append(frame.Records, FrameRecord{
			Ticker: row.Ticker,
			Time:   row.Time,
			Values: []optional.Option[float64]{
				optional.Some(row.Open),
				optional.Some(row.High),
				optional.Some(row.Low),
				optional.Some(row.Close),
				row.Volume,
				row.AdjClose,
			},
		})
	}

	return frame
}

// PriceTableFromFrame converts a decoded frame back to price rows and
// validates each row. Missing volume / adj_close columns are treated as null.
func PriceTableFromFrame(frame Frame) (PriceTable, error) {
	idx := make(map[string]int, len(frame.Columns))
	for i, c := range frame.Columns {
		idx[c] = i
	}

	for _, required := range []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose} {
		if _, ok := idx[required]; !ok {
			return nil, errors.Newf(errors.ErrCodeSchemaMismatch, "price table is missing column %q", required)
		}
	}

	table := make(PriceTable, 0, len(frame.Records))

	for i, rec := range frame.Records {
		get := func(column string) optional.Option[float64] {
			pos, ok := idx[column]
			if !ok || pos >= len(rec.Values) {
				return optional.None[float64]()
			}

			return rec.Values[pos]
		}

		required := func(column string) (float64, error) {
			v, err := get(column).Take()
			if err != nil {
				return 0, errors.Newf(errors.ErrCodeInvalidPriceRow, "row %d of %s has no %s value", i, rec.Ticker, column)
			}

			return v, nil
		}

		row := PriceRow{
			Ticker:   rec.Ticker,
			Time:     rec.Time,
			Volume:   get(ColumnVolume),
			AdjClose: get(ColumnAdjClose),
		}

		var err error
		if row.Open, err = required(ColumnOpen); err != nil {
			return nil, err
		}

		if row.High, err = required(ColumnHigh); err != nil {
			return nil, err
		}

		if row.Low, err = required(ColumnLow); err != nil {
			return nil, err
		}

		if row.Close, err = required(ColumnClose); err != nil {
			return nil, err
		}

		if err := row.Validate(); err != nil {
			return nil, err
		}

		table = append(table, row)
	}

	return table, nil
}
