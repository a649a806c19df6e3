package marketdata

import (
	"path/filepath"
	"sort"

	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata/writer"
)

// Store reads stored chunk files back into one price table.
type Store struct {
	writer *writer.IncrementalWriter
	codec  tableio.Codec
}

// NewStore reads the files laid out by w.
func NewStore(w *writer.IncrementalWriter) (*Store, error) {
	codec, err := tableio.CodecFor(w.Format())
	if err != nil {
		return nil, err
	}

	return &Store{writer: w, codec: codec}, nil
}

// Files returns the stored chunk files of a ticker, sorted by name.
func (s *Store) Files(ticker, providerName string, interval types.Interval) ([]string, error) {
	pattern := filepath.Join(
		s.writer.Dir(ticker, providerName),
		writer.FilePrefix(providerName, interval)+"*."+s.writer.Format().Extension(),
	)

	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFileReadFailed, err, "invalid pattern %s", pattern)
	}

	sort.Strings(files)

	return files, nil
}

// Load merges every chunk file of a ticker under the ticker and time key
// and returns the rows latest first. Overlapping chunks keep the row of
// the file sorted first.
func (s *Store) Load(ticker, providerName string, interval types.Interval) (types.PriceTable, error) {
	files, err := s.Files(ticker, providerName, interval)
	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no %s %s data stored for %s", providerName, interval, ticker)
	}

	var merged types.Frame

	for _, file := range files {
		frame, err := s.codec.Read(file)
		if err != nil {
			return nil, err
		}

		merged = tableio.Merge(merged, frame, tableio.MergeKeyTickerTime)
	}

	table, err := types.PriceTableFromFrame(merged)
	if err != nil {
		return nil, err
	}

	return table.ForTicker(ticker).SortLatestFirst(), nil
}
