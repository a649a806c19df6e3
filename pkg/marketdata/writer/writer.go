// Package writer persists downloaded price tables as incrementally merged
// table files, one file per ticker, provider, interval and date identifier.
package writer

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"go.uber.org/zap"
)

// Target identifies the table file a batch of rows belongs to.
type Target struct {
	Ticker     string
	Provider   string
	Interval   types.Interval
	Identifier string
}

// MarketDataWriter persists price tables.
type MarketDataWriter interface {
	// Path returns the file a target is stored in.
	Path(target Target) string
	// Write merges table into the target's file and returns the file path.
	Write(target Target, table types.PriceTable) (string, error)
}

// Config controls where and how tables are stored.
type Config struct {
	// DataRoot is the base directory of all data.
	DataRoot string
	// InputRoot is the directory under DataRoot holding downloaded tables.
	InputRoot string
	Format    tableio.Format
	MergeKey  tableio.MergeKey
}

// IncrementalWriter reads the existing file, appends the new batch, drops
// duplicates under the merge key and atomically rewrites the file.
type IncrementalWriter struct {
	config Config
	codec  tableio.Codec
	logger *logger.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIncrementalWriter creates a writer. Format defaults to csv and merge key to all columns.
func NewIncrementalWriter(config Config, log *logger.Logger) (*IncrementalWriter, error) {
	if config.DataRoot == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "data root is required")
	}

	if config.Format == "" {
		config.Format = tableio.FormatCSV
	}

	if config.MergeKey == "" {
		config.MergeKey = tableio.MergeKeyAllColumns
	}

	if _, err := tableio.ParseMergeKey(string(config.MergeKey)); err != nil {
		return nil, err
	}

	codec, err := tableio.CodecFor(config.Format)
	if err != nil {
		return nil, err
	}

	return &IncrementalWriter{
		config: config,
		codec:  codec,
		logger: log.Named("writer"),
		locks:  make(map[string]*sync.Mutex),
	}, nil
}

// Format returns the table format files are written in.
func (w *IncrementalWriter) Format() tableio.Format {
	return w.config.Format
}

// Dir returns the directory holding every file of a ticker and provider.
func (w *IncrementalWriter) Dir(ticker, provider string) string {
	return filepath.Join(w.config.DataRoot, w.config.InputRoot, ticker, provider)
}

// FilePrefix returns the file name prefix shared by every chunk of a
// provider and interval.
func FilePrefix(provider string, interval types.Interval) string {
	return fmt.Sprintf("raw_%s_%s_", provider, interval)
}

// Path returns <data>/<input>/<ticker>/<provider>/raw_<provider>_<interval>_<identifier>.<ext>.
func (w *IncrementalWriter) Path(target Target) string {
	name := FilePrefix(target.Provider, target.Interval) + target.Identifier + "." + w.config.Format.Extension()

	return filepath.Join(w.Dir(target.Ticker, target.Provider), name)
}

// Write validates table and merges it into the target file.
func (w *IncrementalWriter) Write(target Target, table types.PriceTable) (string, error) {
	if target.Ticker == "" || target.Provider == "" || target.Identifier == "" {
		return "", errors.New(errors.ErrCodeMissingParameter, "ticker, provider and identifier are required")
	}

	if err := table.Validate(); err != nil {
		return "", err
	}

	path := w.Path(target)

	stored, err := w.WriteFrame(path, table.ToFrame())
	if err != nil {
		return "", errors.Wrapf(errors.ErrCodeMarketDataWriteFailed, err, "failed to write %s data for %s", target.Provider, target.Ticker)
	}

	w.logger.Debug("Stored price table",
		zap.String("ticker", target.Ticker),
		zap.String("provider", target.Provider),
		zap.String("interval", string(target.Interval)),
		zap.String("path", path),
		zap.Int("incoming_rows", len(table)),
		zap.Int("stored_rows", stored.Len()),
	)

	return path, nil
}

// WriteFrame merges frame into the file at path under the configured merge key.
func (w *IncrementalWriter) WriteFrame(path string, frame types.Frame) (types.Frame, error) {
	return w.MergeFrame(path, frame, w.config.MergeKey)
}

// MergeFrame merges frame into the file at path under key. Writers of the
// same path inside this process are serialized.
func (w *IncrementalWriter) MergeFrame(path string, frame types.Frame, key tableio.MergeKey) (types.Frame, error) {
	lock := w.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	return tableio.MergeIntoFile(w.codec, path, frame, key)
}

// ReplaceFrame overwrites the file at path with frame.
func (w *IncrementalWriter) ReplaceFrame(path string, frame types.Frame) error {
	lock := w.lockFor(path)
	lock.Lock()
	defer lock.Unlock()

	return tableio.WriteAtomic(w.codec, path, frame)
}

func (w *IncrementalWriter) lockFor(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	lock, ok := w.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[path] = lock
	}

	return lock
}
