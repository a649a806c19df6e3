package features

import (
	"math"

	"github.com/rxtech-lab/argo-ohlcv/internal/types"
)

// SMA is the mean close of the latest window rows of ticker. Fewer rows
// than window use what is available.
func (g *Generator) SMA(ticker string, snapshot types.PriceTable, window int) (float64, error) {
	rows, err := g.window(ticker, snapshot, window)
	if err != nil {
		return 0, err
	}

	closes, err := g.closes(rows)
	if err != nil {
		return 0, err
	}

	return mean(closes), nil
}

// ATR is the mean true range of the latest window rows of ticker.
//
// The true range of a row is max(high-low, |high-prevClose|, |low-prevClose|)
// where prevClose is the close of the next older row of the same ticker,
// even when that row lies outside the window. The oldest row has no
// previous close and uses high-low.
func (g *Generator) ATR(ticker string, snapshot types.PriceTable, window int) (float64, error) {
	if err := checkWindow(window); err != nil {
		return 0, err
	}

	rows, err := g.rows(ticker, snapshot)
	if err != nil {
		return 0, err
	}

	n := min(window, len(rows))
	ranges := make([]float64, 0, n)

	for i := 0; i < n; i++ {
		row := rows[i]
		tr := row.High - row.Low

		if i+1 < len(rows) {
			prevClose, err := g.closeColumn.Value(rows[i+1])
			if err != nil {
				return 0, err
			}

			tr = math.Max(tr, math.Max(math.Abs(row.High-prevClose), math.Abs(row.Low-prevClose)))
		}

		ranges = append(ranges, tr)
	}

	return mean(ranges), nil
}

// Volatility is the population standard deviation of the latest window closes of ticker.
func (g *Generator) Volatility(ticker string, snapshot types.PriceTable, window int) (float64, error) {
	rows, err := g.window(ticker, snapshot, window)
	if err != nil {
		return 0, err
	}

	closes, err := g.closes(rows)
	if err != nil {
		return 0, err
	}

	return populationStd(closes), nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	m := mean(values)

	variance := 0.0
	for _, v := range values {
		variance += (v - m) * (v - m)
	}

	return math.Sqrt(variance / float64(len(values)))
}
