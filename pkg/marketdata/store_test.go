package marketdata

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/mocks"
	"github.com/rxtech-lab/argo-ohlcv/pkg/errors"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata/writer"
	"github.com/stretchr/testify/suite"
)

type StoreTestSuite struct {
	suite.Suite
	writer *writer.IncrementalWriter
	store  *Store
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (suite *StoreTestSuite) SetupTest() {
	w, err := writer.NewIncrementalWriter(writer.Config{
		DataRoot: suite.T().TempDir(),
		Format:   tableio.FormatFeather,
	}, logger.NewNopLogger())
	suite.Require().NoError(err)

	store, err := NewStore(w)
	suite.Require().NoError(err)

	suite.writer = w
	suite.store = store
}

func (suite *StoreTestSuite) write(interval types.Interval, identifier string, table types.PriceTable) {
	_, err := suite.writer.Write(writer.Target{
		Ticker:     "AAPL",
		Provider:   "polygon",
		Interval:   interval,
		Identifier: identifier,
	}, table)
	suite.Require().NoError(err)
}

func (suite *StoreTestSuite) TestLoadMergesChunksLatestFirst() {
	config := mocks.DefaultPriceConfig()
	config.Ticker = "AAPL"
	config.Count = 20
	history := mocks.NewPriceGenerator(11).Generate(config)

	suite.write(types.IntervalOneDay, "2024-01-01_2024-01-12", history[:12])
	suite.write(types.IntervalOneDay, "2024-01-10_2024-01-20", history[9:])
	suite.write(types.IntervalFiveMinutes, "bulk", history[:3])

	table, err := suite.store.Load("AAPL", "polygon", types.IntervalOneDay)
	suite.Require().NoError(err)
	suite.Require().Len(table, 20)

	suite.True(history[19].Time.Equal(table[0].Time))
	suite.True(history[0].Time.Equal(table[19].Time))

	for i := 1; i < len(table); i++ {
		suite.True(table[i-1].Time.After(table[i].Time))
	}

	files, err := suite.store.Files("AAPL", "polygon", types.IntervalOneDay)
	suite.Require().NoError(err)
	suite.Len(files, 2)
}

func (suite *StoreTestSuite) TestLoadMissingData() {
	_, err := suite.store.Load("AAPL", "polygon", types.IntervalOneDay)
	suite.Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
	suite.True(errors.IsInvalidInput(err))
}

func (suite *StoreTestSuite) TestLoadIgnoresOtherIntervals() {
	suite.write(types.IntervalFifteenMinutes, "bulk", types.PriceTable{{
		Ticker: "AAPL",
		Time:   time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
		Open:   1, High: 2, Low: 1, Close: 2,
	}})

	_, err := suite.store.Load("AAPL", "polygon", types.IntervalOneMinute)
	suite.True(errors.HasCode(err, errors.ErrCodeDataNotFound))
}
