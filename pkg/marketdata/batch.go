package marketdata

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Downloader fetches and stores one request.
type Downloader interface {
	Download(ctx context.Context, req DownloadRequest) ([]DownloadResult, error)
}

// CreateDateChunks splits the calendar days of [start, end] into
// consecutive ranges of chunkDays days. The last chunk may be shorter.
func CreateDateChunks(start, end time.Time, chunkDays int) ([]types.DateRange, error) {
	if chunkDays <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "chunk length must be positive, got %d", chunkDays)
	}

	first := truncateDay(start)
	last := truncateDay(end)

	if last.Before(first) {
		return nil, errors.Newf(errors.ErrCodeInvalidDateRange, "end date %s is before start date %s", last.Format(types.DateLayout), first.Format(types.DateLayout))
	}

	var chunks []types.DateRange

	for day := first; !day.After(last); day = day.AddDate(0, 0, chunkDays) {
		chunkEnd := day.AddDate(0, 0, chunkDays-1)
		if chunkEnd.After(last) {
			chunkEnd = last
		}

		chunks = append(chunks, types.DateRange{Start: day, End: chunkEnd})
	}

	return chunks, nil
}

// YearlyPeriods returns one January-to-December range per year in [fromYear, toYear].
func YearlyPeriods(fromYear, toYear int) ([]types.DateRange, error) {
	if toYear < fromYear {
		return nil, errors.Newf(errors.ErrCodeInvalidDateRange, "to year %d is before from year %d", toYear, fromYear)
	}

	periods := make([]types.DateRange, 0, toYear-fromYear+1)

	for year := fromYear; year <= toYear; year++ {
		periods = append(periods, types.DateRange{
			Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		})
	}

	return periods, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BatchConfig controls the worker pool of a BatchRunner.
type BatchConfig struct {
	Workers   int           `validate:"min=1"`
	ChunkDays int           `validate:"min=1"`
	Delay     time.Duration `validate:"min=0"`
}

// BatchRunner downloads long periods as date chunks on a fixed-size pool
// and pauses between periods to stay under the provider rate limit.
type BatchRunner struct {
	downloader Downloader
	config     BatchConfig
	logger     *logger.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewBatchRunner creates a runner over downloader.
func NewBatchRunner(downloader Downloader, config BatchConfig, log *logger.Logger) (*BatchRunner, error) {
	if err := validator.New().Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid batch configuration", err)
	}

	return &BatchRunner{
		downloader: downloader,
		config:     config,
		logger:     log.Named("batch"),
		sleep:      sleepContext,
	}, nil
}

// Run processes periods in order. Within a period every chunk is downloaded
// for all tickers by one worker; the first failure cancels the period and
// is returned. Results are ordered by path.
func (r *BatchRunner) Run(ctx context.Context, tickers []string, periods []types.DateRange) ([]DownloadResult, error) {
	var (
		mu      sync.Mutex
		results []DownloadResult
	)

	for i, period := range periods {
		chunks, err := CreateDateChunks(period.Start, period.End, r.config.ChunkDays)
		if err != nil {
			return results, err
		}

		r.logger.Info("Starting period",
			zap.String("period", period.Identifier()),
			zap.Int("chunks", len(chunks)),
			zap.Int("workers", r.config.Workers),
		)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.config.Workers)

		for _, chunk := range chunks {
			g.Go(func() error {
				chunkResults, err := r.downloader.Download(gctx, DownloadRequest{
					Tickers: tickers,
					Range:   optional.Some(chunk),
				})
				if err != nil {
					return fmt.Errorf("chunk %s: %w", chunk.Identifier(), err)
				}

				mu.Lock()
				results = append(results, chunkResults...)
				mu.Unlock()

				return nil
			})
		}

		if err := g.Wait(); err != nil {
			sortResults(results)

			return results, err
		}

		if i < len(periods)-1 && r.config.Delay > 0 {
			r.logger.Debug("Waiting before next period", zap.Duration("delay", r.config.Delay))

			if err := r.sleep(ctx, r.config.Delay); err != nil {
				sortResults(results)

				return results, err
			}
		}
	}

	sortResults(results)

	return results, nil
}

func sortResults(results []DownloadResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
