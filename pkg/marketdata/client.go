// Package marketdata downloads OHLCV history from a provider and stores it
// as incrementally merged table files.
package marketdata

import (
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata/writer"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

// OnDownloadProgress is called after each ticker with the number of tickers done.
type OnDownloadProgress = func(current float64, total float64, message string)

// ClientConfig holds the configuration for the market data client.
type ClientConfig struct {
	ProviderType   provider.ProviderType `validate:"required,oneof=polygon binance"`
	Interval       types.Interval        `validate:"required,oneof=1min 5min 15min 30min 1hour 4hour 1d"`
	DataRoot       string                `validate:"required"`
	InputRoot      string
	Format         tableio.Format   `validate:"required,oneof=csv ftr parquet"`
	MergeKey       tableio.MergeKey `validate:"omitempty,oneof=all ticker_time"`
	PolygonApiKey  string           `validate:"required_if=ProviderType polygon"`
	BinanceBaseURL string
	ShowProgress   bool
}

// DownloadRequest lists the tickers to fetch and an optional date range.
// Without a range the provider's full history is requested and stored
// under the bulk identifier.
type DownloadRequest struct {
	Tickers []string                          `validate:"required,min=1,dive,required"`
	Range   optional.Option[types.DateRange] `validate:"-"`
}

// DownloadResult describes one stored ticker.
type DownloadResult struct {
	Ticker string
	Path   string
	Rows   int
}

// Client is the market data client responsible for downloading data from providers and storing it using writers.
type Client struct {
	provider     provider.Provider
	writer       writer.MarketDataWriter
	interval     types.Interval
	validate     *validator.Validate
	logger       *logger.Logger
	onProgress   OnDownloadProgress
	showProgress bool
}

// NewClient creates a new market data client with the given configuration.
func NewClient(config ClientConfig, log *logger.Logger, onProgress OnDownloadProgress) (*Client, error) {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid client configuration", err)
	}

	marketProvider, err := provider.NewMarketDataProvider(config.ProviderType, provider.Config{
		PolygonAPIKey:  config.PolygonApiKey,
		BinanceBaseURL: config.BinanceBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", config.ProviderType, err)
	}

	marketWriter, err := writer.NewIncrementalWriter(writer.Config{
		DataRoot:  config.DataRoot,
		InputRoot: config.InputRoot,
		Format:    config.Format,
		MergeKey:  config.MergeKey,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}

	client := NewClientWithProvider(marketProvider, marketWriter, config.Interval, log, onProgress)
	client.showProgress = config.ShowProgress

	return client, nil
}

// NewClientWithProvider creates a client on top of an existing provider and writer.
func NewClientWithProvider(p provider.Provider, w writer.MarketDataWriter, interval types.Interval, log *logger.Logger, onProgress OnDownloadProgress) *Client {
	return &Client{
		provider:   p,
		writer:     w,
		interval:   interval,
		validate:   validator.New(),
		logger:     log.Named("marketdata"),
		onProgress: onProgress,
	}
}

// Interval returns the bar size the client downloads.
func (c *Client) Interval() types.Interval {
	return c.interval
}

// Download fetches each ticker in order with one blocking provider call and
// hands the rows to the writer. It stops at the first failing ticker and
// returns the results stored so far.
func (c *Client) Download(ctx context.Context, req DownloadRequest) ([]DownloadResult, error) {
	if err := c.validate.Struct(req); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download request", err)
	}

	if rng, err := req.Range.Take(); err == nil {
		if err := rng.Validate(); err != nil {
			return nil, err
		}
	}

	identifier := types.RangeIdentifier(req.Range)
	runLog := c.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("provider", c.provider.Name()),
		zap.String("interval", string(c.interval)),
		zap.String("identifier", identifier),
	)

	bar := progressbar.NewOptions(len(req.Tickers),
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", identifier)),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(c.showProgress),
	)

	results := make([]DownloadResult, 0, len(req.Tickers))

	for i, ticker := range req.Tickers {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		table, err := c.fetch(ctx, ticker, req.Range)
		if err != nil {
			runLog.Error("Download failed", zap.String("ticker", ticker), zap.Error(err))

			return results, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to download %s", ticker)
		}

		path, err := c.writer.Write(writer.Target{
			Ticker:     ticker,
			Provider:   c.provider.Name(),
			Interval:   c.interval,
			Identifier: identifier,
		}, table)
		if err != nil {
			return results, err
		}

		results = append(results, DownloadResult{Ticker: ticker, Path: path, Rows: len(table)})

		runLog.Info("Downloaded ticker",
			zap.String("ticker", ticker),
			zap.Int("rows", len(table)),
			zap.String("path", path),
		)

		_ = bar.Add(1)

		if c.onProgress != nil {
			c.onProgress(float64(i+1), float64(len(req.Tickers)), fmt.Sprintf("Downloaded %s", ticker))
		}
	}

	_ = bar.Finish()

	return results, nil
}

// fetch routes daily intervals to the price call and the rest to the chart call.
func (c *Client) fetch(ctx context.Context, ticker string, rng optional.Option[types.DateRange]) (types.PriceTable, error) {
	if c.interval.IsDaily() {
		return c.provider.HistoricalPrice(ctx, ticker, rng)
	}

	return c.provider.HistoricalChart(ctx, c.interval, ticker, rng)
}
