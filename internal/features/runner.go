package features

import (
	"context"
	"sort"
	"time"

	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"go.uber.org/zap"
)

// PriceSource loads the stored price table of a ticker, latest first.
type PriceSource interface {
	Load(ticker, provider string, interval types.Interval) (types.PriceTable, error)
}

// FrameStore persists feature frames.
type FrameStore interface {
	MergeFrame(path string, frame types.Frame, key tableio.MergeKey) (types.Frame, error)
	ReplaceFrame(path string, frame types.Frame) error
}

// RunnerConfig selects the price data features are computed from and where
// the feature files live.
type RunnerConfig struct {
	Dir      string
	Format   tableio.Format
	Provider string
	Interval types.Interval
	// Force recomputes tickers whose latest record is already up to date.
	Force bool
}

// Runner computes feature records for a list of tickers and persists them
// to the latest and historical feature files.
type Runner struct {
	registry FeatureRegistry
	prices   PriceSource
	store    FrameStore
	config   RunnerConfig
	logger   *logger.Logger
}

// NewRunner creates a runner.
func NewRunner(registry FeatureRegistry, prices PriceSource, store FrameStore, config RunnerConfig, log *logger.Logger) (*Runner, error) {
	if config.Dir == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "features directory is required")
	}

	if config.Provider == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "provider is required")
	}

	if _, err := types.ParseInterval(string(config.Interval)); err != nil {
		return nil, err
	}

	if _, err := tableio.ParseFormat(string(config.Format)); err != nil {
		return nil, err
	}

	return &Runner{
		registry: registry,
		prices:   prices,
		store:    store,
		config:   config,
		logger:   log.Named("features"),
	}, nil
}

// Run computes one record per ticker from its newest stored row. Tickers
// without stored data are skipped. It returns the records it wrote.
func (r *Runner) Run(ctx context.Context, tickers []string) ([]types.FeatureRecord, error) {
	latestPath := LatestPath(r.config.Dir, r.config.Format)

	latest, err := LoadFeatureTable(latestPath, r.config.Format)
	if err != nil {
		return nil, err
	}

	computed := make([]types.FeatureRecord, 0, len(tickers))

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, ok, err := r.computeTicker(ctx, ticker, latest)
		if err != nil {
			return nil, err
		}

		if ok {
			computed = append(computed, record)
		}
	}

	if len(computed) == 0 {
		r.logger.Info("No feature records to write")

		return nil, nil
	}

	historicalPath := HistoricalPath(r.config.Dir, r.config.Format)
	if _, err := r.store.MergeFrame(historicalPath, types.FeatureRecordsToFrame(computed), tableio.MergeKeyTickerTime); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to write %s", historicalPath)
	}

	if err := r.store.ReplaceFrame(latestPath, types.FeatureRecordsToFrame(replaceLatest(latest, computed))); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeFileWriteFailed, err, "failed to write %s", latestPath)
	}

	r.logger.Info("Feature records written",
		zap.Int("records", len(computed)),
		zap.String("latest", latestPath),
		zap.String("historical", historicalPath),
	)

	return computed, nil
}

func (r *Runner) computeTicker(ctx context.Context, ticker string, latest *FeatureTable) (types.FeatureRecord, bool, error) {
	snapshot, err := r.prices.Load(ticker, r.config.Provider, r.config.Interval)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeDataNotFound) {
			r.logger.Warn("No price data, skipping", zap.String("ticker", ticker))

			return types.FeatureRecord{}, false, nil
		}

		return types.FeatureRecord{}, false, err
	}

	rows := snapshot.ForTicker(ticker)
	if len(rows) == 0 {
		r.logger.Warn("No price rows, skipping", zap.String("ticker", ticker))

		return types.FeatureRecord{}, false, nil
	}

	newest := rows[0].Time

	if !r.config.Force {
		if existing, err := latest.Latest(ticker).Get(); err == nil && existing.Time.Equal(newest) {
			r.logger.Info("Features up to date", zap.String("ticker", ticker), zap.Time("time", newest))

			return types.FeatureRecord{}, false, nil
		}
	}

	previousDay, err := r.previousDay(ticker, snapshot, newest)
	if err != nil {
		return types.FeatureRecord{}, false, err
	}

	record, err := ComputeRecord(ctx, r.registry, Input{
		Ticker:      ticker,
		Snapshot:    snapshot,
		PreviousDay: previousDay,
	}, r.logger)
	if err != nil {
		return types.FeatureRecord{}, false, err
	}

	return record, true, nil
}

// previousDay reads the previous session from the snapshot itself for daily
// data and from the stored daily table otherwise.
func (r *Runner) previousDay(ticker string, snapshot types.PriceTable, at time.Time) (types.PriceTable, error) {
	if r.config.Interval.IsDaily() {
		return PreviousDay(snapshot, ticker, at), nil
	}

	daily, err := r.prices.Load(ticker, r.config.Provider, types.IntervalOneDay)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeDataNotFound) {
			return nil, nil
		}

		return nil, err
	}

	return PreviousDay(daily, ticker, at), nil
}

// replaceLatest keeps one record per ticker: the computed one when present,
// the existing newest one otherwise.
func replaceLatest(existing *FeatureTable, computed []types.FeatureRecord) []types.FeatureRecord {
	byTicker := make(map[string]types.FeatureRecord, len(computed))

	for _, rec := range existing.Records() {
		if current, ok := byTicker[rec.Ticker]; !ok || rec.Time.After(current.Time) {
			byTicker[rec.Ticker] = rec
		}
	}

	for _, rec := range computed {
		byTicker[rec.Ticker] = rec
	}

	records := make([]types.FeatureRecord, 0, len(byTicker))
	for _, rec := range byTicker {
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Ticker < records[j].Ticker
	})

	return records
}
