package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/rxtech-lab/argo-ohlcv/internal/version"
	"github.com/rxtech-lab/argo-ohlcv/pkg/marketdata"
	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	configFlag := &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the YAML configuration file",
		Value:   "config.yaml",
	}

	tickersFlag := &cli.StringSliceFlag{
		Name:     "tickers",
		Aliases:  []string{"t"},
		Usage:    "Ticker symbols, repeated or comma separated",
		Required: true,
	}

	batchFlags := []cli.Flag{
		&cli.IntFlag{
			Name:  "chunk-days",
			Usage: "Days per download chunk (overrides download.chunk_days)",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "Concurrent chunk downloads (overrides download.workers)",
		},
		&cli.DurationFlag{
			Name:  "delay",
			Usage: "Pause between periods (overrides download.batch_delay)",
		},
	}

	return &cli.Command{
		Name:    "download",
		Version: version.GetVersion(),
		Usage:   "Download historical OHLCV data into incremental table files",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Download a date range, or the full history when no range is given",
				Flags: append([]cli.Flag{
					configFlag,
					tickersFlag,
					&cli.TimestampFlag{
						Name:    "start",
						Aliases: []string{"s"},
						Usage:   "Start date in `YYYY-MM-DD` format",
						Config: cli.TimestampConfig{
							Timezone: time.UTC,
							Layouts:  []string{time.DateOnly},
						},
					},
					&cli.TimestampFlag{
						Name:    "end",
						Aliases: []string{"e"},
						Usage:   "End date in `YYYY-MM-DD` format. Defaults to today.",
						Config: cli.TimestampConfig{
							Timezone: time.UTC,
							Layouts:  []string{time.DateOnly},
						},
					},
				}, batchFlags...),
				Action: runAction,
			},
			{
				Name:  "years",
				Usage: "Download whole calendar years, one period per year",
				Flags: append([]cli.Flag{
					configFlag,
					tickersFlag,
					&cli.IntFlag{
						Name:     "from-year",
						Usage:    "First year to download",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "to-year",
						Usage: "Last year to download. Defaults to the current year.",
					},
				}, batchFlags...),
				Action: yearsAction,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema of the configuration file",
				Action: schemaAction,
			},
			{
				Name:   "providers",
				Usage:  "List the supported market data providers",
				Action: providersAction,
			},
		},
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.logger.Sync()

	tickers := parseTickers(cmd.StringSlice("tickers"))

	if !cmd.IsSet("start") {
		if cmd.IsSet("end") {
			return fmt.Errorf("--end requires --start")
		}

		results, err := app.client.Download(ctx, marketdata.DownloadRequest{Tickers: tickers})
		printResults(cmd, results)

		return err
	}

	end := time.Now().UTC()
	if cmd.IsSet("end") {
		end = cmd.Timestamp("end")
	}

	periods, err := rangePeriods(cmd.Timestamp("start"), end)
	if err != nil {
		return err
	}

	return app.runBatch(ctx, cmd, tickers, periods)
}

func yearsAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer app.logger.Sync()

	toYear := time.Now().UTC().Year()
	if cmd.IsSet("to-year") {
		toYear = int(cmd.Int("to-year"))
	}

	periods, err := marketdata.YearlyPeriods(int(cmd.Int("from-year")), toYear)
	if err != nil {
		return err
	}

	return app.runBatch(ctx, cmd, parseTickers(cmd.StringSlice("tickers")), periods)
}

func schemaAction(_ context.Context, cmd *cli.Command) error {
	schema, err := schemaJSON()
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.Root().Writer, schema)

	return err
}

func providersAction(_ context.Context, cmd *cli.Command) error {
	for _, name := range marketdata.GetSupportedProviders() {
		info, err := marketdata.GetProviderInfo(name)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.Root().Writer, "%-8s %-12s auth=%-5t adjusted=%-5t %s\n",
			info.Name, info.DisplayName, info.RequiresAuth, info.AdjustedClose, info.Description)
	}

	return nil
}

func printResults(cmd *cli.Command, results []marketdata.DownloadResult) {
	for _, r := range results {
		fmt.Fprintf(cmd.Root().Writer, "%s\t%d rows\t%s\n", r.Ticker, r.Rows, r.Path)
	}
}
