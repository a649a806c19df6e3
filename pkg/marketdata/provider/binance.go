package provider

import (
	"context"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"github.com/shopspring/decimal"
)

// binancePageLimit is the number of klines requested per page.
const binancePageLimit = 1000

type BinanceClient struct {
	client *binance.Client
	now    func() time.Time
}

// NewBinanceClient creates a client for the public kline endpoint. baseURL
// overrides the REST endpoint when not empty.
func NewBinanceClient(baseURL string) (Provider, error) {
	client := binance.NewClient("", "")
	if baseURL != "" {
		client.BaseURL = baseURL
	}

	return &BinanceClient{
		client: client,
		now:    time.Now,
	}, nil
}

func (c *BinanceClient) Name() string {
	return string(ProviderBinance)
}

// HistoricalPrice returns daily klines. Binance publishes no adjusted close.
func (c *BinanceClient) HistoricalPrice(ctx context.Context, symbol string, rng optional.Option[types.DateRange]) (types.PriceTable, error) {
	return c.HistoricalChart(ctx, types.IntervalOneDay, symbol, rng)
}

// HistoricalChart pages through the klines of symbol from the window start,
// restarting each page one millisecond after the last close time.
func (c *BinanceClient) HistoricalChart(ctx context.Context, interval types.Interval, symbol string, rng optional.Option[types.DateRange]) (types.PriceTable, error) {
	binanceInterval, err := binanceInterval(interval)
	if err != nil {
		return nil, err
	}

	start, end, err := resolveWindow(rng, c.now())
	if err != nil {
		return nil, err
	}

	endTimeMillis := end.UnixMilli()
	currentStartTime := start.UnixMilli()

	table := types.PriceTable{}

	for {
		klines, err := c.client.NewKlinesService().
			Symbol(symbol).
			Interval(binanceInterval).
			StartTime(currentStartTime).
			EndTime(endTimeMillis).
			Limit(binancePageLimit).
			Do(ctx)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "failed to fetch klines for %s from Binance", symbol)
		}

		rows, err := klinesToRows(symbol, klines)
		if err != nil {
			return nil, err
		}

		table = append(table, rows...)

		if len(klines) < binancePageLimit {
			break
		}

		currentStartTime = klines[len(klines)-1].CloseTime + 1
		if currentStartTime >= endTimeMillis {
			break
		}
	}

	return table, nil
}

// klinesToRows converts Binance kline data to price rows. The open time is
// the bar timestamp.
func klinesToRows(symbol string, klines []*binance.Kline) (types.PriceTable, error) {
	rows := make(types.PriceTable, 0, len(klines))

	for _, k := range klines {
		values := make([]float64, 5)

		for i, raw := range []string{k.Open, k.High, k.Low, k.Close, k.Volume} {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q for %s", raw, symbol)
			}

			values[i] = d.InexactFloat64()
		}

		rows = append(rows, types.PriceRow{
			Ticker:   symbol,
			Time:     time.UnixMilli(k.OpenTime).UTC(),
			Open:     values[0],
			High:     values[1],
			Low:      values[2],
			Close:    values[3],
			Volume:   optional.Some(values[4]),
			AdjClose: optional.None[float64](),
		})
	}

	return rows, nil
}
