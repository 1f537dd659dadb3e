package main

import (
	"fmt"
	"os"

	"github.com/fxnlabs/accelbench/internal/config"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	var configPath, verbosity string
	cfg := config.Default()

	return &cli.App{
		Name:  "accelbench",
		Usage: "Benchmark and cross-check compute accelerators",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to the YAML configuration (defaults are used when empty)",
				EnvVars:     []string{"ACCELBENCH_CONFIG"},
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "verbosity",
				Usage:       "Log level: debug, info, warn or error",
				Destination: &verbosity,
			},
		},
		Before: func(c *cli.Context) error {
			if configPath != "" {
				loaded, err := config.LoadConfig(configPath)
				if err != nil {
					return err
				}
				*cfg = *loaded
			}
			if verbosity != "" {
				cfg.Logger.Verbosity = verbosity
			}
			return nil
		},
		Commands: []*cli.Command{
			runCommand(cfg),
			devicesCommand(cfg),
			initCommand(),
		},
	}
}
