package main

import (
	"fmt"
	"time"

	"github.com/fxnlabs/accelbench/internal/bench"
	"github.com/fxnlabs/accelbench/internal/config"
	"github.com/fxnlabs/accelbench/internal/metrics"
	"github.com/fxnlabs/accelbench/internal/report"
	"github.com/fxnlabs/accelbench/internal/results"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

func runCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run benchmark suites on the selected devices",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "suite",
				Usage: "Suites to run: compute, memory, transfer, latency (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "device",
				Usage: "Device filter: index, class, backend or name substring (repeatable)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Run mode: quick, standard or full",
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "Explicit workload size overriding the sweep",
			},
			&cli.StringFlag{
				Name:  "export",
				Usage: "Write results as JSON to this path",
			},
			&cli.StringFlag{
				Name:  "metrics-out",
				Usage: "Write Prometheus metrics in text format to this path",
			},
		},
		Action: func(c *cli.Context) error {
			applyRunFlags(c, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			var (
				engine *bench.Engine
				m      *metrics.Metrics
				log    *zap.Logger
			)
			return withApp(c.Context, cfg, func() error {
				return runBenchmarks(c, cfg, engine, m, log)
			}, &engine, &m, &log)
		},
	}
}

func applyRunFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("suite") {
		cfg.Run.Suites = c.StringSlice("suite")
	}
	if c.IsSet("device") {
		cfg.Run.Devices = c.StringSlice("device")
	}
	if c.IsSet("mode") {
		cfg.Run.Mode = c.String("mode")
	}
	if c.IsSet("size") {
		cfg.Run.Size = c.Int("size")
	}
	if c.IsSet("export") {
		cfg.Run.Export = c.String("export")
	}
	if c.IsSet("metrics-out") {
		cfg.Metrics.Output = c.String("metrics-out")
	}
}

func runBenchmarks(c *cli.Context, cfg *config.Config, engine *bench.Engine, m *metrics.Metrics, log *zap.Logger) error {
	out := c.App.Writer
	fmt.Fprintln(out, report.Banner())

	started := time.Now().UTC()
	rep, err := engine.Run(bench.OptionsFromConfig(cfg))
	if err != nil {
		return err
	}

	fmt.Fprintln(out, report.Devices(rep.Devices))
	fmt.Fprint(out, report.Results(rep.Results))
	fmt.Fprintln(out, report.Count(rep.Results))

	if path := cfg.Run.Export; path != "" {
		run := results.Run{
			Timestamp: started,
			Mode:      string(cfg.Mode()),
			Devices:   rep.Devices,
			Results:   rep.Results,
		}
		if err := results.Export(path, run); err != nil {
			return err
		}
		log.Info("Results exported", zap.String("path", path))
	}
	if path := cfg.Metrics.Output; path != "" {
		if err := m.WriteTextfile(path); err != nil {
			return err
		}
		log.Info("Metrics written", zap.String("path", path))
	}
	return nil
}
