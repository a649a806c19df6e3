package tableio

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

const parquetStagingTable = "frame_rows"

// ParquetCodec stores frames as Parquet files. Encoding and decoding go
// through an in-memory DuckDB connection. Timestamps are stored with
// microsecond precision; see Format.TimePrecision.
type ParquetCodec struct {
	sq squirrel.StatementBuilderType
}

func NewParquetCodec() Codec {
	return &ParquetCodec{
		sq: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (c *ParquetCodec) Format() Format {
	return FormatParquet
}

func (c *ParquetCodec) Write(path string, frame types.Frame) error {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	columnDefs := []string{quoteIdent(ColumnTicker) + " VARCHAR", quoteIdent(ColumnTime) + " TIMESTAMP"}
	insertColumns := []string{quoteIdent(ColumnTicker), quoteIdent(ColumnTime)}

	for _, col := range frame.Columns {
		columnDefs = append(columnDefs, quoteIdent(col)+" DOUBLE")
		insertColumns = append(insertColumns, quoteIdent(col))
	}

	// DDL is not covered by squirrel
	_, err = db.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", parquetStagingTable, strings.Join(columnDefs, ", ")))
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to create staging table", err)
	}

	insertSQL, _, err := c.sq.Insert(parquetStagingTable).
		Columns(insertColumns...).
		Values(make([]any, len(insertColumns))...).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to build insert statement", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to begin transaction", err)
	}

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		tx.Rollback()

		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to prepare insert statement", err)
	}

	args := make([]any, len(insertColumns))

	for _, rec := range frame.Records {
		args[0] = rec.Ticker
		args[1] = rec.Time.UTC().Truncate(time.Microsecond)

		for i := range frame.Columns {
			var v optional.Option[float64]
			if i < len(rec.Values) {
				v = rec.Values[i]
			}

			if f, takeErr := v.Take(); takeErr == nil {
				args[2+i] = f
			} else {
				args[2+i] = nil
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			stmt.Close()
			tx.Rollback()

			return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to insert row", err)
		}
	}

	stmt.Close()

	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeFileWriteFailed, "failed to commit transaction", err)
	}

	_, err = db.Exec(fmt.Sprintf("COPY %s TO %s (FORMAT PARQUET)", parquetStagingTable, quoteLiteral(path)))
	if err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to export parquet to %s", path)
	}

	return nil
}

func (c *ParquetCodec) Read(path string) (types.Frame, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return types.Frame{}, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to open DuckDB connection", err)
	}
	defer db.Close()

	query, _, err := c.sq.Select("*").From(fmt.Sprintf("read_parquet(%s)", quoteLiteral(path))).ToSql()
	if err != nil {
		return types.Frame{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build select statement", err)
	}

	rows, err := db.Query(query)
	if err != nil {
		return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to read %s", path)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return types.Frame{}, errors.Wrap(errors.ErrCodeFileReadFailed, "failed to read column names", err)
	}

	if len(columns) < 2 || columns[0] != ColumnTicker || columns[1] != ColumnTime {
		return types.Frame{}, errors.Newf(errors.ErrCodeSchemaMismatch, "%s must start with %s,%s columns", path, ColumnTicker, ColumnTime)
	}

	frame := types.Frame{Columns: append([]string(nil), columns[2:]...)}

	var (
		ticker string
		ts     time.Time
	)

	cells := make([]sql.NullFloat64, len(frame.Columns))
	dest := make([]any, 0, len(columns))
	dest = append(dest, &ticker, &ts)

	for i := range cells {
		dest = append(dest, &cells[i])
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to scan row of %s", path)
		}

		values := make([]optional.Option[float64], len(cells))

		for i, cell := range cells {
			if cell.Valid {
				values[i] = optional.Some(cell.Float64)
			} else {
				values[i] = optional.None[float64]()
			}
		}

		frame.Records = append(frame.Records, types.FrameRecord{Ticker: ticker, Time: ts.UTC(), Values: values})
	}

	if err := rows.Err(); err != nil {
		return types.Frame{}, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to iterate rows of %s", path)
	}

	return frame, nil
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
