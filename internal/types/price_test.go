package types

import (
	"math"
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type PriceTestSuite struct {
	suite.Suite
}

func TestPriceSuite(t *testing.T) {
	suite.Run(t, new(PriceTestSuite))
}

func (suite *PriceTestSuite) row(ticker string, day int, close float64) PriceRow {
	return PriceRow{
		Ticker: ticker,
		Time:   time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Open:   close - 1,
		High:   close + 1,
		Low:    close - 2,
		Close:  close,
		Volume: optional.Some(1000.0),
	}
}

func (suite *PriceTestSuite) TestValidateAcceptsWellFormedRow() {
	suite.NoError(suite.row("AAPL", 2, 150).Validate())
}

func (suite *PriceTestSuite) TestValidateRejectsMissingTicker() {
	row := suite.row("", 2, 150)
	err := row.Validate()
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidPriceRow))
	suite.True(errors.IsInvalidInput(err))
}

func (suite *PriceTestSuite) TestValidateRejectsZeroTime() {
	row := suite.row("AAPL", 2, 150)
	row.Time = time.Time{}
	suite.Error(row.Validate())
}

func (suite *PriceTestSuite) TestValidateRejectsHighBelowLow() {
	row := suite.row("AAPL", 2, 150)
	row.High = row.Low - 1
	suite.Error(row.Validate())
}

func (suite *PriceTestSuite) TestValidateRejectsNaN() {
	row := suite.row("AAPL", 2, 150)
	row.Close = math.NaN()
	err := row.Validate()
	suite.Error(err)
	suite.Contains(err.Error(), "non-finite")
}

func (suite *PriceTestSuite) TestForTickerKeepsOrder() {
	table := PriceTable{
		suite.row("AAPL", 3, 12),
		suite.row("MSFT", 3, 300),
		suite.row("AAPL", 2, 10),
		suite.row("AAPL", 1, 8),
	}

	aapl := table.ForTicker("AAPL")
	suite.Len(aapl, 3)
	suite.Equal(12.0, aapl[0].Close)
	suite.Equal(10.0, aapl[1].Close)
	suite.Equal(8.0, aapl[2].Close)

	suite.Empty(table.ForTicker("TSLA"))
}

func (suite *PriceTestSuite) TestHead() {
	table := PriceTable{suite.row("AAPL", 3, 12), suite.row("AAPL", 2, 10)}

	suite.Len(table.Head(1), 1)
	suite.Len(table.Head(5), 2)
	suite.Empty(table.Head(0))
	suite.Empty(table.Head(-1))
}

func (suite *PriceTestSuite) TestSortLatestFirst() {
	table := PriceTable{suite.row("AAPL", 1, 8), suite.row("AAPL", 3, 12), suite.row("AAPL", 2, 10)}

	sorted := table.SortLatestFirst()
	suite.Equal([]float64{12, 10, 8}, []float64{sorted[0].Close, sorted[1].Close, sorted[2].Close})
	// the input is untouched
	suite.Equal(8.0, table[0].Close)
}

func (suite *PriceTestSuite) TestFrameRoundTripKeepsNulls() {
	withAdj := suite.row("AAPL", 2, 150)
	withAdj.AdjClose = optional.Some(149.5)
	noVolume := suite.row("AAPL", 1, 140)
	noVolume.Volume = optional.None[float64]()

	table := PriceTable{withAdj, noVolume}
	frame := table.ToFrame()
	suite.Equal(PriceColumns, frame.Columns)
	suite.Equal(2, frame.Len())

	back, err := PriceTableFromFrame(frame)
	suite.Require().NoError(err)
	suite.Equal(table, back)
	suite.True(back[1].Volume.IsNone())
	suite.Equal(149.5, back[0].AdjClose.Unwrap())
}

func (suite *PriceTestSuite) TestFromFrameMissingRequiredColumn() {
	frame := Frame{
		Columns: []string{ColumnOpen, ColumnHigh, ColumnLow},
		Records: nil,
	}

	_, err := PriceTableFromFrame(frame)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeSchemaMismatch))
}

func (suite *PriceTestSuite) TestFromFrameNullRequiredValue() {
	frame := PriceTable{suite.row("AAPL", 2, 150)}.ToFrame()
	frame.Records[0].Values[3] = optional.None[float64]()

	_, err := PriceTableFromFrame(frame)
	suite.Error(err)
	suite.Contains(err.Error(), "no close value")
}

func (suite *PriceTestSuite) TestFromFrameWithoutOptionalColumns() {
	frame := Frame{
		Columns: []string{ColumnOpen, ColumnHigh, ColumnLow, ColumnClose},
		Records: []FrameRecord{{
			Ticker: "AAPL",
			Time:   time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			Values: []optional.Option[float64]{optional.Some(1.0), optional.Some(2.0), optional.Some(0.5), optional.Some(1.5)},
		}},
	}

	table, err := PriceTableFromFrame(frame)
	suite.Require().NoError(err)
	suite.Len(table, 1)
	suite.True(table[0].Volume.IsNone())
	suite.True(table[0].AdjClose.IsNone())
}
