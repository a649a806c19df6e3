package features

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"go.uber.org/zap"
)

// ComputeRecord runs every registered feature against input and attaches the
// values to the newest snapshot row of input.Ticker. A feature failing on its
// input data yields None values; any other failure aborts.
func ComputeRecord(ctx context.Context, registry FeatureRegistry, input Input, log *logger.Logger) (types.FeatureRecord, error) {
	rows := input.Snapshot.ForTicker(input.Ticker)
	if len(rows) == 0 {
		return types.FeatureRecord{}, errors.Newf(errors.ErrCodeMissingReferenceRow, "no rows for %s in snapshot", input.Ticker)
	}

	record := types.FeatureRecord{
		Ticker: input.Ticker,
		Time:   rows[0].Time,
		Values: make(map[string]optional.Option[float64]),
	}

	for _, name := range registry.List() {
		if err := ctx.Err(); err != nil {
			return types.FeatureRecord{}, err
		}

		feature, err := registry.Get(name)
		if err != nil {
			return types.FeatureRecord{}, err
		}

		values, err := feature.Compute(input)
		if err != nil {
			if !errors.IsInvalidInput(err) {
				return types.FeatureRecord{}, errors.Wrapf(errors.ErrCodeFeatureCalculation, err, "feature %s for %s", name, input.Ticker)
			}

			if log != nil {
				log.Warn("Feature skipped",
					zap.String("feature", name),
					zap.String("ticker", input.Ticker),
					zap.Error(err),
				)
			}

			for _, column := range feature.Columns() {
				record.Values[column] = optional.None[float64]()
			}

			continue
		}

		for _, column := range feature.Columns() {
			if v, ok := values[column]; ok {
				record.Values[column] = optional.Some(v)
			} else {
				record.Values[column] = optional.None[float64]()
			}
		}
	}

	return record, nil
}

// PreviousDay returns the daily rows of ticker dated on the latest calendar
// day (UTC) strictly before the day of at.
func PreviousDay(daily types.PriceTable, ticker string, at time.Time) types.PriceTable {
	day := at.UTC().Truncate(24 * time.Hour)

	var (
		best time.Time
		rows types.PriceTable
	)

	for _, row := range daily.ForTicker(ticker) {
		rowDay := row.Time.UTC().Truncate(24 * time.Hour)
		if !rowDay.Before(day) {
			continue
		}

		switch {
		case rowDay.After(best):
			best = rowDay
			rows = types.PriceTable{row}
		case rowDay.Equal(best):
			rows = append(rows, row)
		}
	}

	return rows
}
