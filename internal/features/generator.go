// Package features derives technical and price-action values from a price
// snapshot. Snapshots are passed in explicitly, ordered latest first, and
// may hold several tickers; every calculation filters to one ticker.
package features

import (
	"time"

	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
)

// CloseColumn selects which close price a calculation reads.
type CloseColumn string

const (
	CloseColumnClose    CloseColumn = "close"
	CloseColumnAdjClose CloseColumn = "adjClose"
)

// ParseCloseColumn validates s as a CloseColumn.
func ParseCloseColumn(s string) (CloseColumn, error) {
	switch CloseColumn(s) {
	case CloseColumnClose, CloseColumnAdjClose:
		return CloseColumn(s), nil
	default:
		return "", errors.Newf(errors.ErrCodeInvalidParameter, "unknown close column %q", s)
	}
}

// Value reads the selected close of row. A row without an adjusted close is
// a missing-reference error when the adjusted column is selected.
func (c CloseColumn) Value(row types.PriceRow) (float64, error) {
	if c != CloseColumnAdjClose {
		return row.Close, nil
	}

	v, err := row.AdjClose.Take()
	if err != nil {
		return 0, errors.Newf(errors.ErrCodeMissingReferenceRow, "no adjusted close for %s at %s", row.Ticker, row.Time.Format(time.RFC3339))
	}

	return v, nil
}

// Generator computes features with a fixed close column.
type Generator struct {
	closeColumn CloseColumn
}

// NewGenerator creates a generator reading closeColumn. Empty means close.
func NewGenerator(closeColumn CloseColumn) (*Generator, error) {
	if closeColumn == "" {
		closeColumn = CloseColumnClose
	}

	if _, err := ParseCloseColumn(string(closeColumn)); err != nil {
		return nil, err
	}

	return &Generator{closeColumn: closeColumn}, nil
}

// CloseColumn returns the configured close column.
func (g *Generator) CloseColumn() CloseColumn {
	return g.closeColumn
}

// rows returns the snapshot rows of ticker, keeping snapshot order.
func (g *Generator) rows(ticker string, snapshot types.PriceTable) (types.PriceTable, error) {
	rows := snapshot.ForTicker(ticker)
	if len(rows) == 0 {
		return nil, errors.Newf(errors.ErrCodeMissingReferenceRow, "no rows for %s in snapshot", ticker)
	}

	return rows, nil
}

func checkWindow(n int) error {
	if n <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPeriod, "window must be a positive integer, got %d", n)
	}

	return nil
}

// window returns the first n rows of ticker.
func (g *Generator) window(ticker string, snapshot types.PriceTable, n int) (types.PriceTable, error) {
	if err := checkWindow(n); err != nil {
		return nil, err
	}

	rows, err := g.rows(ticker, snapshot)
	if err != nil {
		return nil, err
	}

	return rows.Head(n), nil
}

func (g *Generator) closes(rows types.PriceTable) ([]float64, error) {
	out := make([]float64, 0, len(rows))

	for _, row := range rows {
		v, err := g.closeColumn.Value(row)
		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}

	return out, nil
}
