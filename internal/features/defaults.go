package features

import (
	"fmt"

	"github.com/rxtech-lab/argo-ohlcv/internal/types"
)

// Settings selects the windows of the default feature set.
type Settings struct {
	SMAWindows       []int
	ATRWindow        int
	VolatilityWindow int
	DeviationWindow  int
	// PivotCloseColumn is the previous-day close used for pivot levels.
	PivotCloseColumn CloseColumn
}

// DefaultSettings mirrors the configuration defaults.
func DefaultSettings() Settings {
	return Settings{
		SMAWindows:       []int{20, 50, 200},
		ATRWindow:        14,
		VolatilityWindow: 14,
		DeviationWindow:  20,
		PivotCloseColumn: CloseColumnAdjClose,
	}
}

// funcFeature adapts a function to Feature.
type funcFeature struct {
	name    string
	columns []string
	compute func(Input) (map[string]float64, error)
}

func (f *funcFeature) Name() string {
	return f.name
}

func (f *funcFeature) Columns() []string {
	return f.columns
}

func (f *funcFeature) Compute(input Input) (map[string]float64, error) {
	return f.compute(input)
}

// NewFeature builds a Feature from a compute function.
func NewFeature(name string, columns []string, compute func(Input) (map[string]float64, error)) Feature {
	return &funcFeature{name: name, columns: columns, compute: compute}
}

// NewDefaultRegistry registers every generator calculation:
// sma_<N> per SMA window, candle, bar_composition, pivot_standard,
// ma_deviation_<N>, atr_<N> and volatility_<N>.
func NewDefaultRegistry(gen *Generator, settings Settings) (*Registry, error) {
	r := NewRegistry()

	features := make([]Feature, 0, len(settings.SMAWindows)+6)

	for _, window := range settings.SMAWindows {
		name := fmt.Sprintf("sma_%d", window)
		features = append(features, NewFeature(name, []string{name}, func(in Input) (map[string]float64, error) {
			v, err := gen.SMA(in.Ticker, in.Snapshot, window)
			if err != nil {
				return nil, err
			}

			return map[string]float64{name: v}, nil
		}))
	}

	features = append(features,
		NewFeature("candle", []string{"candle_size", "candle_body", "candle_upper_wick", "candle_lower_wick"}, func(in Input) (map[string]float64, error) {
			c, err := gen.Candle(in.Ticker, in.Snapshot)
			if err != nil {
				return nil, err
			}

			return map[string]float64{
				"candle_size":       c.Size,
				"candle_body":       c.Body,
				"candle_upper_wick": c.UpperWick,
				"candle_lower_wick": c.LowerWick,
			}, nil
		}),
		NewFeature("bar_composition", []string{"bar_body", "bar_upper_wick", "bar_lower_wick"}, func(in Input) (map[string]float64, error) {
			b, err := gen.BarComposition(in.Ticker, in.Snapshot)
			if err != nil {
				return nil, err
			}

			return map[string]float64{
				"bar_body":       b.Body,
				"bar_upper_wick": b.UpperWick,
				"bar_lower_wick": b.LowerWick,
			}, nil
		}),
		pivotFeature(gen, settings.PivotCloseColumn),
		windowFeature("atr", settings.ATRWindow, gen.ATR),
		windowFeature("volatility", settings.VolatilityWindow, gen.Volatility),
		deviationFeature(gen, settings.DeviationWindow),
	)

	for _, f := range features {
		if err := r.Register(f); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func windowFeature(prefix string, window int, calc func(string, types.PriceTable, int) (float64, error)) Feature {
	name := fmt.Sprintf("%s_%d", prefix, window)

	return NewFeature(name, []string{name}, func(in Input) (map[string]float64, error) {
		v, err := calc(in.Ticker, in.Snapshot, window)
		if err != nil {
			return nil, err
		}

		return map[string]float64{name: v}, nil
	})
}

func deviationFeature(gen *Generator, window int) Feature {
	name := fmt.Sprintf("ma_deviation_%d", window)
	closeCol, openCol := name+"_close", name+"_open"

	return NewFeature(name, []string{closeCol, openCol}, func(in Input) (map[string]float64, error) {
		d, err := gen.PriceMADeviation(in.Ticker, in.Snapshot, window)
		if err != nil {
			return nil, err
		}

		return map[string]float64{closeCol: d.Close, openCol: d.Open}, nil
	})
}

func pivotFeature(gen *Generator, closeColumn CloseColumn) Feature {
	columns := []string{"pivot_pp"}
	for i := 1; i <= 4; i++ {
		columns = append(columns, fmt.Sprintf("pivot_r%d", i))
	}

	for i := 1; i <= 4; i++ {
		columns = append(columns, fmt.Sprintf("pivot_s%d", i))
	}

	return NewFeature("pivot_"+string(PivotStandard), columns, func(in Input) (map[string]float64, error) {
		levels, err := gen.PivotRange(in.Ticker, in.PreviousDay, PivotStandard, closeColumn)
		if err != nil {
			return nil, err
		}

		values := map[string]float64{"pivot_pp": levels.PP}
		for i := 0; i < 4; i++ {
			values[fmt.Sprintf("pivot_r%d", i+1)] = levels.Resistance[i]
			values[fmt.Sprintf("pivot_s%d", i+1)] = levels.Support[i]
		}

		return values, nil
	})
}
