package main

import (
	"context"

	"github.com/fxnlabs/accelbench/internal/bench"
	"github.com/fxnlabs/accelbench/internal/config"
	"github.com/fxnlabs/accelbench/internal/gpu"
	"github.com/fxnlabs/accelbench/internal/logger"
	"github.com/fxnlabs/accelbench/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// module wires configuration, logging, metrics, devices and the engine.
func module(cfg *config.Config) fx.Option {
	return fx.Options(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			metrics.NewMetrics,
			newManager,
			newEngine,
		),
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: log.Named("fx")}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
	)
}

func newLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Logger.Verbosity, cfg.Logger.Format)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(func() {
		// Sync fails on terminals; nothing is lost by ignoring it.
		_ = log.Sync()
	}))
	return log, nil
}

func newManager(cfg *config.Config, log *zap.Logger) (*gpu.Manager, error) {
	var backends []gpu.Backend
	if cfg.CPU.Enabled {
		backends = append(backends, gpu.NewCPUBackend(log, cfg.CPU.Workers))
	}
	if devices := cfg.SimDevices(); len(devices) > 0 {
		backends = append(backends, gpu.NewSimulatedBackend(log, devices, gpu.SimOptions{
			Workers: cfg.Simulated.Workers,
		}))
	}
	return gpu.NewManager(log, backends...)
}

func newEngine(manager *gpu.Manager, log *zap.Logger, m *metrics.Metrics) *bench.Engine {
	return bench.NewEngine(manager, log, m)
}

// withApp starts the dependency graph, hands the populated targets to fn and
// stops the graph afterwards.
func withApp(ctx context.Context, cfg *config.Config, fn func() error, targets ...any) error {
	app := fx.New(module(cfg), fx.Populate(targets...))
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	runErr := fn()
	if err := app.Stop(ctx); err != nil && runErr == nil {
		return err
	}
	return runErr
}
