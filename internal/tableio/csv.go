package tableio

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// CSVCodec stores frames as comma separated text with a header line.
// Timestamps are RFC3339Nano in UTC and an empty cell is a null value.
type CSVCodec struct{}

func NewCSVCodec() Codec {
	return &CSVCodec{}
}

func (c *CSVCodec) Format() Format {
	return FormatCSV
}

func (c *CSVCodec) Write(path string, frame types.Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	w := csv.NewWriter(file)

	header := append([]string{ColumnTicker, ColumnTime}, frame.Columns...)
	if err := w.Write(header); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write csv header", err)
	}

	record := make([]string, len(header))

	for _, rec := range frame.Records {
		record[0] = rec.Ticker
		record[1] = rec.Time.UTC().Format(time.RFC3339Nano)

		for i := range frame.Columns {
			record[2+i] = ""

			if i < len(rec.Values) {
				if v, err := rec.Values[i].Take(); err == nil {
					record[2+i] = strconv.FormatFloat(v, 'g', -1, 64)
				}
			}
		}

		if err := w.Write(record); err != nil {
			return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write csv record", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to flush %s", path)
	}

	return nil
}

func (c *CSVCodec) Read(path string) (types.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to open %s", path)
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to read %s", path)
	}

	if len(records) == 0 {
		return types.Frame{}, errors.Newf(errors.ErrCodeSchemaMismatch, "%s has no header", path)
	}

	header := records[0]
	if len(header) < 2 || header[0] != ColumnTicker || header[1] != ColumnTime {
		return types.Frame{}, errors.Newf(errors.ErrCodeSchemaMismatch, "%s must start with %s,%s columns", path, ColumnTicker, ColumnTime)
	}

	frame := types.Frame{
		Columns: append([]string(nil), header[2:]...),
		Records: make([]types.FrameRecord, 0, len(records)-1),
	}

	for line, record := range records[1:] {
		ts, err := time.Parse(time.RFC3339Nano, record[1])
		if err != nil {
			return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "%s line %d: invalid time %q", path, line+2, record[1])
		}

		values := make([]optional.Option[float64], len(frame.Columns))

		for i := range frame.Columns {
			cell := record[2+i]
			if cell == "" {
				values[i] = optional.None[float64]()

				continue
			}

			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "%s line %d: invalid %s value %q", path, line+2, frame.Columns[i], cell)
			}

			values[i] = optional.Some(v)
		}

		frame.Records = append(frame.Records, types.FrameRecord{
			Ticker: record[0],
			Time:   ts.UTC(),
			Values: values,
		})
	}

	return frame, nil
}
