package tableio

import (
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// FeatherCodec stores frames as Feather v2 files (the Arrow IPC file format).
type FeatherCodec struct {
	mem memory.Allocator
}

func NewFeatherCodec() Codec {
	return &FeatherCodec{mem: memory.NewGoAllocator()}
}

func (c *FeatherCodec) Format() Format {
	return FormatFeather
}

func (c *FeatherCodec) schema(columns []string) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(columns)+2)
	fields = append(fields,
		arrow.Field{Name: ColumnTicker, Type: arrow.BinaryTypes.String},
		arrow.Field{Name: ColumnTime, Type: &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"}},
	)

	for _, col := range columns {
		fields = append(fields, arrow.Field{Name: col, Type: arrow.PrimitiveTypes.Float64, Nullable: true})
	}

	return arrow.NewSchema(fields, nil)
}

func (c *FeatherCodec) Write(path string, frame types.Frame) error {
	schema := c.schema(frame.Columns)

	builder := array.NewRecordBuilder(c.mem, schema)
	defer builder.Release()

	tickers := builder.Field(0).(*array.StringBuilder)
	times := builder.Field(1).(*array.TimestampBuilder)

	for _, rec := range frame.Records {
		tickers.Append(rec.Ticker)
		times.Append(arrow.Timestamp(rec.Time.UnixNano()))

		for i := range frame.Columns {
			values := builder.Field(2 + i).(*array.Float64Builder)

			var v optional.Option[float64]
			if i < len(rec.Values) {
				v = rec.Values[i]
			}

			if f, err := v.Take(); err == nil {
				values.Append(f)
			} else {
				values.AppendNull()
			}
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to create %s", path)
	}
	defer file.Close()

	writer, err := ipc.NewFileWriter(file, ipc.WithSchema(schema), ipc.WithAllocator(c.mem))
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to open feather writer", err)
	}

	if err := writer.Write(record); err != nil {
		writer.Close()

		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to write feather record batch", err)
	}

	if err := writer.Close(); err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to finish %s", path)
	}

	return nil
}

func (c *FeatherCodec) Read(path string) (types.Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to open %s", path)
	}
	defer file.Close()

	reader, err := ipc.NewFileReader(file, ipc.WithAllocator(c.mem))
	if err != nil {
		return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to open feather reader for %s", path)
	}
	defer reader.Close()

	schema := reader.Schema()
	if schema.NumFields() < 2 || schema.Field(0).Name != ColumnTicker || schema.Field(1).Name != ColumnTime {
		return types.Frame{}, errors.Newf(errors.ErrCodeSchemaMismatch, "%s must start with %s,%s columns", path, ColumnTicker, ColumnTime)
	}

	frame := types.Frame{Columns: make([]string, 0, schema.NumFields()-2)}
	for i := 2; i < schema.NumFields(); i++ {
		frame.Columns = append(frame.Columns, schema.Field(i).Name)
	}

	for batch := 0; batch < reader.NumRecords(); batch++ {
		record, err := reader.Record(batch)
		if err != nil {
			return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to read record batch %d of %s", batch, path)
		}

		if err := appendRecord(&frame, record); err != nil {
			return types.Frame{}, errors.Wrapf(errors.ErrCodeSchemaMismatch, err, "unexpected column types in %s", path)
		}
	}

	return frame, nil
}

func appendRecord(frame *types.Frame, record arrow.Record) error {
	tickers, ok := record.Column(0).(*array.String)
	if !ok {
		return errors.Newf(errors.ErrCodeInvalidType, "%s column is %s", ColumnTicker, record.Column(0).DataType())
	}

	times, ok := record.Column(1).(*array.Timestamp)
	if !ok {
		return errors.Newf(errors.ErrCodeInvalidType, "%s column is %s", ColumnTime, record.Column(1).DataType())
	}

	unit := times.DataType().(*arrow.TimestampType).Unit

	values := make([]*array.Float64, len(frame.Columns))

	for i := range frame.Columns {
		col, ok := record.Column(2 + i).(*array.Float64)
		if !ok {
			return errors.Newf(errors.ErrCodeInvalidType, "%s column is %s", frame.Columns[i], record.Column(2+i).DataType())
		}

		values[i] = col
	}

	for row := 0; row < int(record.NumRows()); row++ {
		rec := types.FrameRecord{
			Ticker: tickers.Value(row),
			Time:   times.Value(row).ToTime(unit).UTC(),
			Values: make([]optional.Option[float64], len(values)),
		}

		for i, col := range values {
			if col.IsNull(row) {
				rec.Values[i] = optional.None[float64]()
			} else {
				rec.Values[i] = optional.Some(col.Value(row))
			}
		}

		frame.Records = append(frame.Records, rec)
	}

	return nil
}
