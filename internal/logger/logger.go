package logger

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds a zap logger at verbosity. format "json" selects the production
// encoder; "console" (or empty) selects the human readable development encoder.
func New(verbosity, format string) (*zap.Logger, error) {
	var config zap.Config
	switch format {
	case "json":
		config = zap.NewProductionConfig()
	case "", "console":
		config = zap.NewDevelopmentConfig()
		config.DisableStacktrace = true
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	level, err := zap.ParseAtomicLevel(verbosity)
	if err != nil {
		return nil, err
	}
	config.Level = level
	return config.Build()
}
