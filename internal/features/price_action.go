package features

import (
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// CandleFeatures decomposes the latest bar of a ticker.
type CandleFeatures struct {
	// Size is high - low.
	Size float64
	// Body is close - open, negative for a bearish bar.
	Body      float64
	UpperWick float64
	LowerWick float64
}

// BarComposition expresses the candle parts as fractions of the candle size.
type BarComposition struct {
	Body      float64
	UpperWick float64
	LowerWick float64
}

// MADeviation is the relative distance of the latest close and open from a moving average.
type MADeviation struct {
	Close float64
	Open  float64
}

// Candle decomposes the latest row of ticker. A bar whose close is not
// above its open is treated as bearish: the upper wick runs from the open
// and the lower wick from the close.
func (g *Generator) Candle(ticker string, snapshot types.PriceTable) (CandleFeatures, error) {
	rows, err := g.rows(ticker, snapshot)
	if err != nil {
		return CandleFeatures{}, err
	}

	latest := rows[0]

	closePrice, err := g.closeColumn.Value(latest)
	if err != nil {
		return CandleFeatures{}, err
	}

	candle := CandleFeatures{
		Size: latest.High - latest.Low,
		Body: closePrice - latest.Open,
	}

	if closePrice > latest.Open {
		candle.UpperWick = latest.High - closePrice
		candle.LowerWick = latest.Open - latest.Low
	} else {
		candle.UpperWick = latest.High - latest.Open
		candle.LowerWick = closePrice - latest.Low
	}

	return candle, nil
}

// BarComposition divides each candle part by the candle size. A bar with
// high equal to low has no composition.
func (g *Generator) BarComposition(ticker string, snapshot types.PriceTable) (BarComposition, error) {
	candle, err := g.Candle(ticker, snapshot)
	if err != nil {
		return BarComposition{}, err
	}

	if candle.Size == 0 {
		return BarComposition{}, errors.Newf(errors.ErrCodeZeroCandleRange, "latest bar of %s has zero range", ticker)
	}

	return BarComposition{
		Body:      candle.Body / candle.Size,
		UpperWick: candle.UpperWick / candle.Size,
		LowerWick: candle.LowerWick / candle.Size,
	}, nil
}

// PriceMADeviation returns (close - ma) / ma and (open - ma) / ma for the
// latest row of ticker, where ma is the SMA over window.
func (g *Generator) PriceMADeviation(ticker string, snapshot types.PriceTable, window int) (MADeviation, error) {
	ma, err := g.SMA(ticker, snapshot, window)
	if err != nil {
		return MADeviation{}, err
	}

	if ma == 0 {
		return MADeviation{}, errors.Newf(errors.ErrCodeZeroMovingAverage, "%d period moving average of %s is zero", window, ticker)
	}

	rows, err := g.rows(ticker, snapshot)
	if err != nil {
		return MADeviation{}, err
	}

	closePrice, err := g.closeColumn.Value(rows[0])
	if err != nil {
		return MADeviation{}, err
	}

	return MADeviation{
		Close: (closePrice - ma) / ma,
		Open:  (rows[0].Open - ma) / ma,
	}, nil
}
