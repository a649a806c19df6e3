package tableio

import (
	"math"
	"strconv"
	"strings"

	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// MergeKey decides when two records are duplicates.
type MergeKey string

const (
	// MergeKeyAllColumns treats records as duplicates only when every column is equal.
	MergeKeyAllColumns MergeKey = "all"
	// MergeKeyTickerTime treats records with the same ticker and timestamp as duplicates.
	MergeKeyTickerTime MergeKey = "ticker_time"
)

// ParseMergeKey validates s as a MergeKey.
func ParseMergeKey(s string) (MergeKey, error) {
	switch MergeKey(s) {
	case MergeKeyAllColumns, MergeKeyTickerTime:
		return MergeKey(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported merge key %q", s)
	}
}

func (k MergeKey) of(rec types.FrameRecord) string {
	var b strings.Builder

	b.WriteString(rec.Ticker)
	b.WriteByte(0)
	b.WriteString(strconv.FormatInt(rec.Time.UnixNano(), 10))

	if k == MergeKeyTickerTime {
		return b.String()
	}

	for _, v := range rec.Values {
		b.WriteByte(0)

		if f, err := v.Take(); err == nil {
			b.WriteString(strconv.FormatUint(math.Float64bits(f), 16))
		} else {
			b.WriteByte('-')
		}
	}

	return b.String()
}

// Dedup keeps the first record of every key, preserving order.
func Dedup(frame types.Frame, key MergeKey) types.Frame {
	seen := make(map[string]struct{}, len(frame.Records))
	out := types.Frame{
		Columns: frame.Columns,
		Records: make([]types.FrameRecord, 0, len(frame.Records)),
	}

	for _, rec := range frame.Records {
		k := key.of(rec)
		if _, dup := seen[k]; dup {
			continue
		}

		seen[k] = struct{}{}
		out.Records = append(out.Records, rec)
	}

	return out
}

// Merge concatenates existing then incoming records on the union of their
// columns and drops duplicates under key. Existing records win.
func Merge(existing, incoming types.Frame, key MergeKey) types.Frame {
	columns := types.UnionColumns(existing.Columns, incoming.Columns)

	left := existing.Align(columns)
	right := incoming.Align(columns)

	combined := types.Frame{
		Columns: columns,
		Records: make([]types.FrameRecord, 0, len(left.Records)+len(right.Records)),
	}
	combined.Records = append(combined.Records, left.Records...)
	combined.Records = append(combined.Records, right.Records...)

	return Dedup(combined, key)
}

// MergeIntoFile merges frame into the table at path, creating the file when
// it does not exist, and atomically rewrites it. It returns the stored frame.
func MergeIntoFile(codec Codec, path string, frame types.Frame, key MergeKey) (types.Frame, error) {
	exists, err := Exists(path)
	if err != nil {
		return types.Frame{}, err
	}

	// incoming rows must compare equal to their stored copies
	frame = TruncateTimes(frame, codec.Format().TimePrecision())

	merged := Dedup(frame, key)

	if exists {
		current, err := codec.Read(path)
		if err != nil {
			return types.Frame{}, err
		}

		merged = Merge(current, frame, key)
	}

	if err := WriteAtomic(codec, path, merged); err != nil {
		return types.Frame{}, err
	}

	return merged, nil
}
