// Package provider adapts external market-data APIs to a common capability:
// historical daily prices and historical intraday charts for one symbol.
package provider

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// ProviderType defines the type of market data provider.
type ProviderType string

const (
	ProviderPolygon ProviderType = "polygon"
	ProviderBinance ProviderType = "binance"
)

// ParseProviderType validates s as a ProviderType.
func ParseProviderType(s string) (ProviderType, error) {
	switch ProviderType(s) {
	case ProviderPolygon, ProviderBinance:
		return ProviderType(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", s)
	}
}

// Provider is the external API boundary of the downloader.
// A call blocks until every row of the requested range has been fetched.
type Provider interface {
	// Name is the provider segment used in stored file paths.
	Name() string
	// HistoricalPrice returns daily bars of symbol. A missing range means
	// the full history the provider serves.
	HistoricalPrice(ctx context.Context, symbol string, rng optional.Option[types.DateRange]) (types.PriceTable, error)
	// HistoricalChart returns intraday bars of symbol at interval.
	HistoricalChart(ctx context.Context, interval types.Interval, symbol string, rng optional.Option[types.DateRange]) (types.PriceTable, error)
}

// Config carries the per-provider settings needed to build a client.
type Config struct {
	PolygonAPIKey string
	// BinanceBaseURL overrides the Binance REST endpoint. Empty means production.
	BinanceBaseURL string
}

// NewMarketDataProvider creates a new market data provider based on the provider type.
func NewMarketDataProvider(providerType ProviderType, config Config) (Provider, error) {
	switch providerType {
	case ProviderBinance:
		return NewBinanceClient(config.BinanceBaseURL)
	case ProviderPolygon:
		return NewPolygonClient(config.PolygonAPIKey)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerType)
	}
}

// resolveWindow converts an optional calendar-day range to an inclusive
// [start, end] instant window. A missing range spans the Unix epoch to now.
func resolveWindow(rng optional.Option[types.DateRange], now time.Time) (time.Time, time.Time, error) {
	r, err := rng.Take()
	if err != nil {
		return time.Unix(0, 0).UTC(), now.UTC(), nil
	}

	if err := r.Validate(); err != nil {
		return time.Time{}, time.Time{}, err
	}

	start := time.Date(r.Start.Year(), r.Start.Month(), r.Start.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(r.End.Year(), r.End.Month(), r.End.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1).Add(-time.Millisecond)

	return start, end, nil
}
