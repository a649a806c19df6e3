package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rxtech-lab/argo-ohlcv/internal/features"
	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/mocks"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata/writer"
	"github.com/stretchr/testify/suite"
)

type FeaturesCmdTestSuite struct {
	suite.Suite
	dir         string
	configPath  string
	featuresDir string
}

func TestFeaturesCmdSuite(t *testing.T) {
	suite.Run(t, new(FeaturesCmdTestSuite))
}

func (suite *FeaturesCmdTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.configPath = filepath.Join(suite.dir, "config.yaml")
	suite.featuresDir = filepath.Join(suite.dir, "out", "features")

	content := fmt.Sprintf(`path:
  data: %s
  features: %s
download:
  provider: polygon
  format: ftr
features:
  format: csv
  sma_windows: [5, 10]
log:
  level: error
`, filepath.Join(suite.dir, "data"), suite.featuresDir)
	suite.Require().NoError(os.WriteFile(suite.configPath, []byte(content), 0644))

	w, err := writer.NewIncrementalWriter(writer.Config{
		DataRoot:  filepath.Join(suite.dir, "data"),
		InputRoot: "input",
		Format:    tableio.FormatFeather,
	}, logger.NewNopLogger())
	suite.Require().NoError(err)

	priceConfig := mocks.DefaultPriceConfig()
	priceConfig.Count = 30
	priceConfig.AdjustmentFactor = 0.98

	for _, ticker := range []string{"AAPL", "MSFT"} {
		priceConfig.Ticker = ticker

		_, err := w.Write(writer.Target{
			Ticker:     ticker,
			Provider:   "polygon",
			Interval:   types.IntervalOneDay,
			Identifier: types.BulkIdentifier,
		}, mocks.NewPriceGenerator(42).Generate(priceConfig))
		suite.Require().NoError(err)
	}
}

func (suite *FeaturesCmdTestSuite) run(args ...string) (string, error) {
	var out bytes.Buffer

	cmd := newCommand()
	cmd.Writer = &out

	err := cmd.Run(context.Background(), append([]string{"features"}, args...))

	return out.String(), err
}

func (suite *FeaturesCmdTestSuite) TestComputeWritesFeatureFiles() {
	out, err := suite.run("compute", "--config", suite.configPath, "--tickers", "AAPL,MSFT")
	suite.Require().NoError(err)
	suite.Contains(out, "AAPL")
	suite.Contains(out, "MSFT")

	dir := suite.featuresDir
	suite.NoDirExists(filepath.Join(suite.dir, "data", suite.featuresDir))

	latest, err := features.LoadFeatureTable(features.LatestPath(dir, tableio.FormatCSV), tableio.FormatCSV)
	suite.Require().NoError(err)
	suite.Equal(2, latest.Len())

	record, err := latest.Latest("AAPL").Get()
	suite.Require().NoError(err)
	suite.True(record.Values["sma_5"].IsSome())
	suite.True(record.Values["sma_10"].IsSome())
	suite.True(record.Values["pivot_pp"].IsSome())

	historical, err := features.LoadFeatureTable(features.HistoricalPath(dir, tableio.FormatCSV), tableio.FormatCSV)
	suite.Require().NoError(err)
	suite.Equal(2, historical.Len())

	// Unchanged prices leave the files untouched unless forced.
	out, err = suite.run("compute", "--config", suite.configPath, "--tickers", "AAPL")
	suite.Require().NoError(err)
	suite.Empty(out)

	out, err = suite.run("compute", "--config", suite.configPath, "--tickers", "AAPL", "--force")
	suite.Require().NoError(err)
	suite.Contains(out, "AAPL")
}

func (suite *FeaturesCmdTestSuite) TestComputeRejectsUnknownInterval() {
	_, err := suite.run("compute", "--config", suite.configPath, "--tickers", "AAPL", "--interval", "2d")
	suite.Error(err)
}

func (suite *FeaturesCmdTestSuite) TestList() {
	out, err := suite.run("list", "--config", suite.configPath)
	suite.Require().NoError(err)
	suite.Contains(out, "sma_5\tsma_5")
	suite.Contains(out, "pivot_standard\t")
	suite.Contains(out, "atr_14")
}

func (suite *FeaturesCmdTestSuite) TestPivotCloseColumnFollowsProvider() {
	tests := []struct {
		name       string
		configured string
		provider   string
		expected   features.CloseColumn
		expectErr  bool
	}{
		{name: "adjusted provider", provider: "polygon", expected: features.CloseColumnAdjClose},
		{name: "unadjusted provider", provider: "binance", expected: features.CloseColumnClose},
		{name: "configured wins", configured: "close", provider: "polygon", expected: features.CloseColumnClose},
		{name: "unknown provider", provider: "fmp", expectErr: true},
		{name: "unknown column", configured: "open", provider: "polygon", expectErr: true},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			column, err := pivotCloseColumn(tc.configured, tc.provider)
			if tc.expectErr {
				suite.Error(err)
				return
			}

			suite.Require().NoError(err)
			suite.Equal(tc.expected, column)
		})
	}
}

func (suite *FeaturesCmdTestSuite) TestBinancePivotsUseClose() {
	content := fmt.Sprintf(`path:
  data: %s
  features: %s
download:
  provider: binance
  format: ftr
features:
  format: csv
  sma_windows: [5]
log:
  level: error
`, filepath.Join(suite.dir, "data"), suite.featuresDir)
	suite.Require().NoError(os.WriteFile(suite.configPath, []byte(content), 0644))

	w, err := writer.NewIncrementalWriter(writer.Config{
		DataRoot:  filepath.Join(suite.dir, "data"),
		InputRoot: "input",
		Format:    tableio.FormatFeather,
	}, logger.NewNopLogger())
	suite.Require().NoError(err)

	priceConfig := mocks.DefaultPriceConfig()
	priceConfig.Ticker = "BTCUSDT"
	priceConfig.Count = 30

	table := mocks.NewPriceGenerator(7).Generate(priceConfig)
	suite.Require().True(table[0].AdjClose.IsNone())

	_, err = w.Write(writer.Target{
		Ticker:     "BTCUSDT",
		Provider:   "binance",
		Interval:   types.IntervalOneDay,
		Identifier: types.BulkIdentifier,
	}, table)
	suite.Require().NoError(err)

	_, err = suite.run("compute", "--config", suite.configPath, "--tickers", "BTCUSDT")
	suite.Require().NoError(err)

	latest, err := features.LoadFeatureTable(features.LatestPath(suite.featuresDir, tableio.FormatCSV), tableio.FormatCSV)
	suite.Require().NoError(err)

	record, err := latest.Latest("BTCUSDT").Get()
	suite.Require().NoError(err)
	suite.True(record.Values["pivot_pp"].IsSome())
}
