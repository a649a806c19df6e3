package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	argoErrors "github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type fakeKline struct {
	openTime  int64
	closeTime int64
	open      string
	high      string
	low       string
	close     string
	volume    string
}

// fakeBinanceServer serves /api/v3/klines from a fixed kline list.
type fakeBinanceServer struct {
	server   *httptest.Server
	klines   []fakeKline
	status   int
	mu       sync.Mutex
	requests []map[string]string
}

func newFakeBinanceServer(klines []fakeKline) *fakeBinanceServer {
	f := &fakeBinanceServer{klines: klines, status: http.StatusOK}

	router := mux.NewRouter()
	router.HandleFunc("/api/v3/klines", f.handleKlines).Methods(http.MethodGet)
	f.server = httptest.NewServer(router)

	return f
}

func (f *fakeBinanceServer) handleKlines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	f.mu.Lock()
	f.requests = append(f.requests, map[string]string{
		"symbol":    query.Get("symbol"),
		"interval":  query.Get("interval"),
		"startTime": query.Get("startTime"),
		"endTime":   query.Get("endTime"),
		"limit":     query.Get("limit"),
	})
	f.mu.Unlock()

	if f.status != http.StatusOK {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"code":-1121,"msg":"Invalid symbol."}`))

		return
	}

	start, _ := strconv.ParseInt(query.Get("startTime"), 10, 64)
	end, _ := strconv.ParseInt(query.Get("endTime"), 10, 64)

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 500
	}

	out := make([][]any, 0, limit)

	for _, k := range f.klines {
		if k.openTime < start || k.openTime > end {
			continue
		}

		out = append(out, []any{
			k.openTime, k.open, k.high, k.low, k.close, k.volume,
			k.closeTime, "0", 1, "0", "0", "0",
		})

		if len(out) == limit {
			break
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (f *fakeBinanceServer) Close() {
	f.server.Close()
}

func hourlyKlines(start time.Time, n int) []fakeKline {
	out := make([]fakeKline, 0, n)

	for i := 0; i < n; i++ {
		open := start.Add(time.Duration(i) * time.Hour)
		price := strconv.Itoa(100 + i%10)

		out = append(out, fakeKline{
			openTime:  open.UnixMilli(),
			closeTime: open.Add(time.Hour).UnixMilli() - 1,
			open:      price + ".10000000",
			high:      price + ".90000000",
			low:       price + ".00000000",
			close:     price + ".50000000",
			volume:    "12.34500000",
		})
	}

	return out
}

type BinanceClientTestSuite struct {
	suite.Suite
}

func TestBinanceClientSuite(t *testing.T) {
	suite.Run(t, new(BinanceClientTestSuite))
}

func (suite *BinanceClientTestSuite) rangeOf(start, end string) optional.Option[types.DateRange] {
	rng, err := types.NewDateRange(start, end)
	suite.Require().NoError(err)

	return optional.Some(rng)
}

func (suite *BinanceClientTestSuite) TestNewBinanceClient() {
	client, err := NewBinanceClient("")
	suite.NoError(err)
	suite.NotNil(client)
	suite.Equal("binance", client.Name())

	custom, err := NewBinanceClient("http://127.0.0.1:1")
	suite.Require().NoError(err)
	suite.Equal("http://127.0.0.1:1", custom.(*BinanceClient).client.BaseURL)
}

func (suite *BinanceClientTestSuite) TestHistoricalChartParsesKlines() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	server := newFakeBinanceServer(hourlyKlines(start, 3))
	defer server.Close()

	client, err := NewBinanceClient(server.server.URL)
	suite.Require().NoError(err)

	table, err := client.HistoricalChart(context.Background(), types.IntervalOneHour, "BTCUSDT", suite.rangeOf("2024-01-01", "2024-01-01"))
	suite.Require().NoError(err)
	suite.Require().Len(table, 3)

	suite.Equal("BTCUSDT", table[0].Ticker)
	suite.True(start.Equal(table[0].Time))
	suite.Equal(100.1, table[0].Open)
	suite.Equal(100.9, table[0].High)
	suite.Equal(100.0, table[0].Low)
	suite.Equal(100.5, table[0].Close)
	suite.Equal(12.345, table[0].Volume.Unwrap())
	suite.True(table[0].AdjClose.IsNone())
	suite.NoError(table.Validate())

	suite.Require().Len(server.requests, 1)
	suite.Equal("1h", server.requests[0]["interval"])
	suite.Equal("BTCUSDT", server.requests[0]["symbol"])
	suite.Equal(strconv.Itoa(binancePageLimit), server.requests[0]["limit"])
}

func (suite *BinanceClientTestSuite) TestHistoricalChartPaginates() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	server := newFakeBinanceServer(hourlyKlines(start, 1500))
	defer server.Close()

	client, err := NewBinanceClient(server.server.URL)
	suite.Require().NoError(err)

	table, err := client.HistoricalChart(context.Background(), types.IntervalOneHour, "BTCUSDT", suite.rangeOf("2024-01-01", "2024-03-31"))
	suite.Require().NoError(err)
	suite.Len(table, 1500)
	suite.Len(server.requests, 2)

	for i := 1; i < len(table); i++ {
		suite.True(table[i].Time.After(table[i-1].Time))
	}
}

func (suite *BinanceClientTestSuite) TestHistoricalPriceUsesDailyInterval() {
	server := newFakeBinanceServer(nil)
	defer server.Close()

	client, err := NewBinanceClient(server.server.URL)
	suite.Require().NoError(err)

	table, err := client.HistoricalPrice(context.Background(), "ETHUSDT", suite.rangeOf("2024-01-01", "2024-01-31"))
	suite.Require().NoError(err)
	suite.Empty(table)

	suite.Require().Len(server.requests, 1)
	suite.Equal("1d", server.requests[0]["interval"])
}

func (suite *BinanceClientTestSuite) TestHistoricalChartServerError() {
	server := newFakeBinanceServer(nil)
	server.status = http.StatusBadRequest
	defer server.Close()

	client, err := NewBinanceClient(server.server.URL)
	suite.Require().NoError(err)

	_, err = client.HistoricalChart(context.Background(), types.IntervalOneMinute, "NOPE", suite.rangeOf("2024-01-01", "2024-01-02"))
	suite.Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataFetchFailed))
}

func (suite *BinanceClientTestSuite) TestHistoricalChartInvalidDecimal() {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	klines := hourlyKlines(start, 1)
	klines[0].close = "not-a-number"

	server := newFakeBinanceServer(klines)
	defer server.Close()

	client, err := NewBinanceClient(server.server.URL)
	suite.Require().NoError(err)

	_, err = client.HistoricalChart(context.Background(), types.IntervalOneHour, "BTCUSDT", suite.rangeOf("2024-01-01", "2024-01-01"))
	suite.Error(err)
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeMarketDataParseFailed))
}

func (suite *BinanceClientTestSuite) TestBinanceInterval() {
	tests := []struct {
		interval types.Interval
		want     string
	}{
		{types.IntervalOneMinute, "1m"},
		{types.IntervalFiveMinutes, "5m"},
		{types.IntervalFifteenMinutes, "15m"},
		{types.IntervalThirtyMinutes, "30m"},
		{types.IntervalOneHour, "1h"},
		{types.IntervalFourHours, "4h"},
		{types.IntervalOneDay, "1d"},
	}

	for _, tc := range tests {
		suite.Run(string(tc.interval), func() {
			got, err := binanceInterval(tc.interval)
			suite.NoError(err)
			suite.Equal(tc.want, got)
		})
	}

	_, err := binanceInterval("2week")
	suite.True(argoErrors.HasCode(err, argoErrors.ErrCodeInvalidInterval))
}

// TestConvertTimespanToBinanceInterval tests the conversion of timespan to Binance interval strings.
func (suite *BinanceClientTestSuite) TestConvertTimespanToBinanceInterval() {
	tests := []struct {
		name       string
		timespan   models.Timespan
		multiplier int
		want       string
		wantErr    bool
		errMsg     string
	}{
		{name: "3 days", timespan: models.Day, multiplier: 3, want: "3d"},
		{name: "1 week", timespan: models.Week, multiplier: 1, want: "1w"},
		{name: "2 weeks - unsupported", timespan: models.Week, multiplier: 2, wantErr: true, errMsg: "unsupported weekly multiplier"},
		{name: "1 month", timespan: models.Month, multiplier: 1, want: "1M"},
		{name: "3 months - unsupported", timespan: models.Month, multiplier: 3, wantErr: true, errMsg: "unsupported monthly multiplier"},
		{name: "quarter - unsupported", timespan: models.Quarter, multiplier: 1, wantErr: true, errMsg: "unsupported timespan"},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			got, err := convertTimespanToBinanceInterval(tc.timespan, tc.multiplier)
			if tc.wantErr {
				suite.Error(err)
				suite.Contains(err.Error(), tc.errMsg)

				return
			}

			suite.NoError(err)
			suite.Equal(tc.want, got)
		})
	}
}
