package mocks

import (
	"math"
	"math/rand"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
)

// PriceGenerator generates realistic OHLCV rows for tests.
type PriceGenerator struct {
	rng *rand.Rand
}

// NewPriceGenerator creates a generator with the given seed.
// Use a fixed seed for reproducible results in tests.
func NewPriceGenerator(seed int64) *PriceGenerator {
	return &PriceGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// PriceGeneratorConfig configures how rows are generated.
type PriceGeneratorConfig struct {
	Ticker    string
	StartTime time.Time
	// Interval is the duration between each bar
	Interval     time.Duration
	Count        int
	InitialPrice float64
	// Volatility controls price movement (0.01 = 1% per bar)
	Volatility float64
	// Trend is the drift factor spread across all bars
	Trend      float64
	VolumeBase float64
	// AdjustmentFactor scales close into AdjClose. Zero leaves AdjClose empty.
	AdjustmentFactor float64
}

// DefaultPriceConfig returns a daily configuration.
func DefaultPriceConfig() PriceGeneratorConfig {
	return PriceGeneratorConfig{
		Ticker:       "TEST",
		StartTime:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:     24 * time.Hour,
		Count:        250,
		InitialPrice: 100.0,
		Volatility:   0.01,
		Trend:        0.0,
		VolumeBase:   10000,
	}
}

// Generate returns Count rows in ascending time order following a
// geometric Brownian motion.
func (g *PriceGenerator) Generate(config PriceGeneratorConfig) types.PriceTable {
	table := make(types.PriceTable, config.Count)
	price := config.InitialPrice
	ts := config.StartTime

	for i := 0; i < config.Count; i++ {
		open := price

		// Box-Muller
		u1 := g.rng.Float64()
		u2 := g.rng.Float64()
		z := math.Sqrt(-2*math.Log(1-u1)) * math.Cos(2*math.Pi*u2)

		closePrice := open * (1 + config.Volatility*z + config.Trend/float64(config.Count))
		if closePrice <= 0 {
			closePrice = open * 0.99
		}

		high := math.Max(open, closePrice) + g.rng.Float64()*config.Volatility*open*0.5
		low := math.Min(open, closePrice) - g.rng.Float64()*config.Volatility*open*0.5

		if low <= 0 {
			low = math.Min(open, closePrice) * 0.99
		}

		row := types.PriceRow{
			Ticker:   config.Ticker,
			Time:     ts,
			Open:     round(open, 4),
			High:     round(high, 4),
			Low:      round(low, 4),
			Close:    round(closePrice, 4),
			Volume:   optional.Some(round(config.VolumeBase*(0.7+g.rng.Float64()*0.6), 2)),
			AdjClose: optional.None[float64](),
		}

		if config.AdjustmentFactor > 0 {
			row.AdjClose = optional.Some(round(row.Close*config.AdjustmentFactor, 4))
		}

		table[i] = row
		price = closePrice
		ts = ts.Add(config.Interval)
	}

	return table
}

// GenerateMultiTicker concatenates the rows of every ticker, varying the
// initial price per ticker.
func (g *PriceGenerator) GenerateMultiTicker(tickers []string, base PriceGeneratorConfig) types.PriceTable {
	var all types.PriceTable

	for _, ticker := range tickers {
		config := base
		config.Ticker = ticker
		config.InitialPrice = base.InitialPrice * (0.8 + g.rng.Float64()*0.4)

		all = append(all, g.Generate(config)...)
	}

	return all
}

func round(val float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(val*pow) / pow
}
