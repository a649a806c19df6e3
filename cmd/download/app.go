package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rxtech-lab/argo-ohlcv/internal/config"
	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata/provider"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// app holds what every download command builds from the config file.
type app struct {
	config *config.Config
	logger *logger.Logger
	client *marketdata.Client
}

func newApp(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	clientCfg, err := clientConfig(cfg)
	if err != nil {
		return nil, err
	}

	client, err := marketdata.NewClient(clientCfg, log, nil)
	if err != nil {
		return nil, err
	}

	return &app{config: cfg, logger: log, client: client}, nil
}

func clientConfig(cfg *config.Config) (marketdata.ClientConfig, error) {
	roots, err := cfg.Roots()
	if err != nil {
		return marketdata.ClientConfig{}, err
	}

	return marketdata.ClientConfig{
		ProviderType:   provider.ProviderType(cfg.Download.Provider),
		Interval:       types.Interval(cfg.Download.Interval),
		DataRoot:       roots.Data,
		InputRoot:      roots.Input,
		Format:         tableio.Format(cfg.Download.Format),
		MergeKey:       tableio.MergeKey(cfg.Download.MergeKey),
		PolygonApiKey:  cfg.Download.PolygonAPIKey,
		BinanceBaseURL: cfg.Download.BinanceBaseURL,
		ShowProgress:   !cfg.Download.Quiet,
	}, nil
}

// batchConfig reads the batch settings from cfg, letting set flags win.
func batchConfig(cfg *config.Config, cmd *cli.Command) (marketdata.BatchConfig, error) {
	delay, err := cfg.Download.Delay()
	if err != nil {
		return marketdata.BatchConfig{}, err
	}

	bc := marketdata.BatchConfig{
		Workers:   cfg.Download.Workers,
		ChunkDays: cfg.Download.ChunkDays,
		Delay:     delay,
	}

	if cmd.IsSet("workers") {
		bc.Workers = int(cmd.Int("workers"))
	}

	if cmd.IsSet("chunk-days") {
		bc.ChunkDays = int(cmd.Int("chunk-days"))
	}

	if cmd.IsSet("delay") {
		bc.Delay = cmd.Duration("delay")
	}

	return bc, nil
}

func (a *app) runBatch(ctx context.Context, cmd *cli.Command, tickers []string, periods []types.DateRange) error {
	bc, err := batchConfig(a.config, cmd)
	if err != nil {
		return err
	}

	runner, err := marketdata.NewBatchRunner(a.client, bc, a.logger)
	if err != nil {
		return err
	}

	a.logger.Info("Starting batch download",
		zap.Strings("tickers", tickers),
		zap.Int("periods", len(periods)),
		zap.Int("workers", bc.Workers),
		zap.Int("chunk_days", bc.ChunkDays),
		zap.Duration("delay", bc.Delay),
	)

	results, err := runner.Run(ctx, tickers, periods)
	printResults(cmd, results)

	return err
}

// parseTickers splits comma separated values and drops blanks and repeats.
func parseTickers(values []string) []string {
	seen := make(map[string]bool)

	var tickers []string

	for _, value := range values {
		for _, t := range strings.Split(value, ",") {
			t = strings.TrimSpace(t)
			if t == "" || seen[t] {
				continue
			}

			seen[t] = true
			tickers = append(tickers, t)
		}
	}

	return tickers
}

func rangePeriods(start, end time.Time) ([]types.DateRange, error) {
	rng := types.DateRange{Start: start.UTC(), End: end.UTC()}
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	return []types.DateRange{rng}, nil
}

func schemaJSON() (string, error) {
	cfg, err := config.Default()
	if err != nil {
		return "", err
	}

	return cfg.GenerateSchemaJSON()
}
