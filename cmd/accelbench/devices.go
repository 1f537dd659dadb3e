package main

import (
	"fmt"

	"github.com/fxnlabs/accelbench/internal/config"
	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/report"
	"github.com/urfave/cli/v2"
)

func devicesCommand(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "devices",
		Usage: "List the devices available to a run",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "device",
				Usage: "Device filter: index, class, backend or name substring (repeatable)",
			},
		},
		Action: func(c *cli.Context) error {
			filter := cfg.Run.Devices
			if c.IsSet("device") {
				filter = c.StringSlice("device")
			}

			var manager *gpu.Manager
			return withApp(c.Context, cfg, func() error {
				devices, err := manager.Devices(filter)
				if err != nil {
					return err
				}
				profiles := make([]gpu.Profile, 0, len(devices))
				for _, d := range devices {
					profiles = append(profiles, d.Profile)
				}
				fmt.Fprintln(c.App.Writer, report.Devices(profiles))
				return nil
			}, &manager)
		},
	}
}
