// Package tableio reads and writes frames to table files. Every format
// carries the same logical layout: a ticker column, a timestamp column and
// nullable float64 value columns.
package tableio

import (
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// Format names an on-disk table encoding. The value doubles as file extension.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatFeather Format = "ftr"
	FormatParquet Format = "parquet"
)

// Key column names shared by every format.
const (
	ColumnTicker = "ticker"
	ColumnTime   = "time"
)

// ParseFormat validates s as a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatFeather, FormatParquet:
		return Format(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported table format %q", s)
	}
}

// Extension returns the file extension without the leading dot.
func (f Format) Extension() string {
	return string(f)
}

// TimePrecision is the finest timestamp resolution the format stores.
func (f Format) TimePrecision() time.Duration {
	if f == FormatParquet {
		return time.Microsecond
	}

	return time.Nanosecond
}

// TruncateTimes returns a copy of frame with every timestamp truncated to precision.
func TruncateTimes(frame types.Frame, precision time.Duration) types.Frame {
	if precision <= time.Nanosecond {
		return frame
	}

	out := types.Frame{Columns: frame.Columns, Records: make([]types.FrameRecord, len(frame.Records))}
	for i, rec := range frame.Records {
		rec.Time = rec.Time.Truncate(precision)
		out.Records[i] = rec
	}

	return out
}

// Codec encodes frames to, and decodes frames from, a file path.
type Codec interface {
	// Format returns the format handled by the codec.
	Format() Format
	// Write creates or truncates path and writes frame into it.
	Write(path string, frame types.Frame) error
	// Read decodes the whole file at path.
	Read(path string) (types.Frame, error)
}

// CodecFor returns the codec of a format.
func CodecFor(format Format) (Codec, error) {
	switch format {
	case FormatCSV:
		return NewCSVCodec(), nil
	case FormatFeather:
		return NewFeatherCodec(), nil
	case FormatParquet:
		return NewParquetCodec(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeUnsupportedFormat, "unsupported table format %q", format)
	}
}

// Exists reports whether a regular file is present at path.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		return !info.IsDir(), nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "failed to stat %s", path)
}

// WriteAtomic writes frame to a temporary file next to path and renames it
// over path, so readers observe either the old or the new content.
func WriteAtomic(codec Codec, path string, frame types.Frame) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to create temp file in %s", dir)
	}

	tmpPath := tmp.Name()
	tmp.Close()

	committed := false

	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if err := codec.Write(tmpPath, frame); err != nil {
		return err
	}

	if err := syncFile(tmpPath); err != nil {
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to replace %s", path)
	}

	committed = true

	return nil
}

func syncFile(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to open %s for sync", path)
	}
	defer f.Close()

	if err := f.Sync(); err != nil {
		return errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to sync %s", path)
	}

	return nil
}
