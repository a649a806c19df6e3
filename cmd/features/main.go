package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/rxtech-lab/argo-ohlcv/internal/config"
	"github.com/rxtech-lab/argo-ohlcv/internal/features"
	"github.com/rxtech-lab/argo-ohlcv/internal/logger"
	"github.com/rxtech-lab/argo-ohlcv/internal/tableio"
	"github.com/rxtech-lab/argo-ohlcv/internal/types"
	"github.com/rxtech-lab/argo-ohlcv/internal/version"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata/writer"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "features",
		Version: version.GetVersion(),
		Usage:   "Derive technical and price-action features from stored OHLCV data",
		Commands: []*cli.Command{
			{
				Name:  "compute",
				Usage: "Compute the latest feature record of each ticker",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to the YAML configuration file",
						Value:   "config.yaml",
					},
					&cli.StringSliceFlag{
						Name:     "tickers",
						Aliases:  []string{"t"},
						Usage:    "Ticker symbols, repeated or comma separated",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Provider whose stored data is read (defaults to download.provider)",
					},
					&cli.StringFlag{
						Name:  "interval",
						Usage: "Bar interval of the stored data (defaults to download.interval)",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Recompute tickers whose latest record is up to date",
					},
				},
				Action: computeAction,
			},
			{
				Name:   "list",
				Usage:  "List the features computed with the configured settings",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Value: "config.yaml"}},
				Action: listAction,
			},
		},
	}
}

func computeAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	log, err := logger.NewLoggerWithLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	runner, err := newRunner(cfg, cmd, log)
	if err != nil {
		return err
	}

	records, err := runner.Run(ctx, splitTickers(cmd.StringSlice("tickers")))
	if err != nil {
		return err
	}

	for _, rec := range records {
		fmt.Fprintf(cmd.Root().Writer, "%s\t%s\t%d features\n", rec.Ticker, rec.Time.Format("2006-01-02T15:04:05Z07:00"), len(rec.Values))
	}

	return nil
}

func listAction(_ context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	registry, err := newRegistry(cfg, cfg.Download.Provider)
	if err != nil {
		return err
	}

	for _, name := range registry.List() {
		feature, err := registry.Get(name)
		if err != nil {
			return err
		}

		columns := append([]string(nil), feature.Columns()...)
		sort.Strings(columns)
		fmt.Fprintf(cmd.Root().Writer, "%s\t%s\n", name, strings.Join(columns, ","))
	}

	return nil
}

func newRegistry(cfg *config.Config, providerName string) (*features.Registry, error) {
	closeColumn, err := features.ParseCloseColumn(cfg.Features.CloseColumn)
	if err != nil {
		return nil, err
	}

	pivotClose, err := pivotCloseColumn(cfg.Features.PivotCloseColumn, providerName)
	if err != nil {
		return nil, err
	}

	gen, err := features.NewGenerator(closeColumn)
	if err != nil {
		return nil, err
	}

	return features.NewDefaultRegistry(gen, features.Settings{
		SMAWindows:       cfg.Features.SMAWindows,
		ATRWindow:        cfg.Features.ATRWindow,
		VolatilityWindow: cfg.Features.VolatilityWindow,
		DeviationWindow:  cfg.Features.DeviationWindow,
		PivotCloseColumn: pivotClose,
	})
}

// pivotCloseColumn returns configured, or the provider's best close when unset.
func pivotCloseColumn(configured, providerName string) (features.CloseColumn, error) {
	if configured != "" {
		return features.ParseCloseColumn(configured)
	}

	info, err := marketdata.GetProviderInfo(providerName)
	if err != nil {
		return "", err
	}

	if info.AdjustedClose {
		return features.CloseColumnAdjClose, nil
	}

	return features.CloseColumnClose, nil
}

func newRunner(cfg *config.Config, cmd *cli.Command, log *logger.Logger) (*features.Runner, error) {
	providerName := cfg.Download.Provider
	if cmd.IsSet("provider") {
		providerName = cmd.String("provider")
	}

	registry, err := newRegistry(cfg, providerName)
	if err != nil {
		return nil, err
	}

	roots, err := cfg.Roots()
	if err != nil {
		return nil, err
	}

	priceWriter, err := writer.NewIncrementalWriter(writer.Config{
		DataRoot:  roots.Data,
		InputRoot: roots.Input,
		Format:    tableio.Format(cfg.Download.Format),
	}, log)
	if err != nil {
		return nil, err
	}

	store, err := marketdata.NewStore(priceWriter)
	if err != nil {
		return nil, err
	}

	featureFormat := tableio.Format(cfg.Features.Format)

	featureWriter, err := writer.NewIncrementalWriter(writer.Config{
		DataRoot: roots.Features,
		Format:   featureFormat,
		MergeKey: tableio.MergeKeyTickerTime,
	}, log)
	if err != nil {
		return nil, err
	}

	interval := cfg.Download.Interval
	if cmd.IsSet("interval") {
		interval = cmd.String("interval")
	}

	parsedInterval, err := types.ParseInterval(interval)
	if err != nil {
		return nil, err
	}

	return features.NewRunner(registry, store, featureWriter, features.RunnerConfig{
		Dir:      roots.Features,
		Format:   featureFormat,
		Provider: providerName,
		Interval: parsedInterval,
		Force:    cmd.Bool("force"),
	}, log)
}

func splitTickers(values []string) []string {
	var tickers []string

	for _, value := range values {
		for _, t := range strings.Split(value, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tickers = append(tickers, t)
			}
		}
	}

	return tickers
}
