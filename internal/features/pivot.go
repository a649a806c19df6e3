package features

import (
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// PivotType names a pivot point formula.
type PivotType string

const PivotStandard PivotType = "standard"

// PivotLevels holds the pivot point and four resistance and support levels.
// Index 0 is R1 / S1.
type PivotLevels struct {
	PP         float64
	Resistance [4]float64
	Support    [4]float64
}

// PivotRange computes the pivot levels of ticker from its single row in
// prevDay, the daily bars of the previous session. closeColumn picks the
// close used for the pivot independently of the generator setting.
// Only the standard formula is supported.
func (g *Generator) PivotRange(ticker string, prevDay types.PriceTable, pivotType PivotType, closeColumn CloseColumn) (PivotLevels, error) {
	if pivotType != PivotStandard {
		return PivotLevels{}, errors.Newf(errors.ErrCodeUnsupportedPivotType, "pivot type %q is not supported", pivotType)
	}

	if _, err := ParseCloseColumn(string(closeColumn)); err != nil {
		return PivotLevels{}, err
	}

	row, err := prevDay.LookupRow(ticker).Get()
	if err != nil {
		return PivotLevels{}, err
	}

	closePrice, err := closeColumn.Value(row)
	if err != nil {
		return PivotLevels{}, err
	}

	return standardPivot(row.High, row.Low, closePrice), nil
}

func standardPivot(high, low, closePrice float64) PivotLevels {
	pp := (high + low + closePrice) / 3
	rng := high - low

	return PivotLevels{
		PP: pp,
		Resistance: [4]float64{
			pp*2 - low,
			pp + rng,
			pp*2 + (high - 2*low),
			pp*3 + (high - 3*low),
		},
		Support: [4]float64{
			pp*2 - high,
			pp - rng,
			pp*2 - (2*high - low),
			pp*3 - (3*high - low),
		},
	}
}
