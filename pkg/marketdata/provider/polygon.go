package provider

import (
	"context"
	"time"

	"github.com/moznion/go-optional"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// polygonPageLimit is the largest page the aggregates endpoint serves.
const polygonPageLimit = 50000

// PolygonAggsIterator walks the pages of an aggregates query.
type PolygonAggsIterator interface {
	Next() bool
	Item() models.Agg
	Err() error
}

// PolygonAPIClient is the subset of the Polygon REST client used here.
type PolygonAPIClient interface {
	ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator
}

type polygonRESTClient struct {
	client *polygon.Client
}

func (c *polygonRESTClient) ListAggs(ctx context.Context, params *models.ListAggsParams, options ...models.RequestOption) PolygonAggsIterator {
	return c.client.ListAggs(ctx, params, options...)
}

type PolygonClient struct {
	apiClient PolygonAPIClient
	now       func() time.Time
}

func NewPolygonClient(apiKey string) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "apiKey is required")
	}

	return NewPolygonClientWithAPI(&polygonRESTClient{client: polygon.New(apiKey)}), nil
}

// NewPolygonClientWithAPI creates a client on top of an existing API client.
func NewPolygonClientWithAPI(apiClient PolygonAPIClient) *PolygonClient {
	return &PolygonClient{
		apiClient: apiClient,
		now:       time.Now,
	}
}

func (c *PolygonClient) Name() string {
	return string(ProviderPolygon)
}

// HistoricalPrice fetches unadjusted daily bars and fills AdjClose from a
// second, split and dividend adjusted pass over the same window.
func (c *PolygonClient) HistoricalPrice(ctx context.Context, symbol string, rng optional.Option[types.DateRange]) (types.PriceTable, error) {
	start, end, err := resolveWindow(rng, c.now())
	if err != nil {
		return nil, err
	}

	table, err := c.listAggs(ctx, symbol, 1, models.Day, start, end, false)
	if err != nil {
		return nil, err
	}

	adjusted, err := c.listAggs(ctx, symbol, 1, models.Day, start, end, true)
	if err != nil {
		return nil, err
	}

	adjClose := make(map[int64]float64, len(adjusted))
	for _, row := range adjusted {
		adjClose[row.Time.UnixMilli()] = row.Close
	}

	for i := range table {
		if v, ok := adjClose[table[i].Time.UnixMilli()]; ok {
			table[i].AdjClose = optional.Some(v)
		}
	}

	return table, nil
}

func (c *PolygonClient) HistoricalChart(ctx context.Context, interval types.Interval, symbol string, rng optional.Option[types.DateRange]) (types.PriceTable, error) {
	multiplier, timespan, err := aggregate(interval)
	if err != nil {
		return nil, err
	}

	start, end, err := resolveWindow(rng, c.now())
	if err != nil {
		return nil, err
	}

	return c.listAggs(ctx, symbol, multiplier, timespan, start, end, true)
}

func (c *PolygonClient) listAggs(ctx context.Context, symbol string, multiplier int, timespan models.Timespan, start, end time.Time, adjusted bool) (types.PriceTable, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(start),
		To:         models.Millis(end),
	}.WithAdjusted(adjusted).WithOrder(models.Asc).WithLimit(polygonPageLimit)

	iter := c.apiClient.ListAggs(ctx, params)

	table := types.PriceTable{}

	for iter.Next() {
		agg := iter.Item()
		table = append(table, types.PriceRow{
			Ticker:   symbol,
			Time:     time.Time(agg.Timestamp).UTC(),
			Open:     agg.Open,
			High:     agg.High,
			Low:      agg.Low,
			Close:    agg.Close,
			Volume:   optional.Some(agg.Volume),
			AdjClose: optional.None[float64](),
		})
	}

	if err := iter.Err(); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeMarketDataFetchFailed, err, "error iterating polygon aggregates for %s", symbol)
	}

	return table, nil
}
