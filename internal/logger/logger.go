// Package logger builds the service zap logger and carries it through contexts.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// envConfigs maps APP_ENV to a base zap config.
var envConfigs = map[string]func() zap.Config{
	"prod":   prodConfig,
	"local":  consoleConfig,
	"dev":    consoleConfig,
	"docker": consoleConfig,
	"test":   testConfig,
}

func prodConfig() zap.Config {
	c := zap.NewProductionConfig()
	c.EncoderConfig.TimeKey = "ts"
	c.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return c
}

func consoleConfig() zap.Config {
	c := zap.NewDevelopmentConfig()
	c.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return c
}

func testConfig() zap.Config {
	c := zap.NewDevelopmentConfig()
	c.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	return c
}

// NewLogger creates the logger for env: JSON in prod, colored console elsewhere.
// A non-empty level (debug, info, warn, error) replaces the environment default.
func NewLogger(env string, level ...string) (*zap.Logger, error) {
	build, ok := envConfigs[env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %q for logger", env)
	}
	cfg := build()

	if len(level) > 0 && level[0] != "" {
		lvl, err := zapcore.ParseLevel(level[0])
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level[0], err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build(zap.AddStacktrace(zapcore.ErrorLevel))
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return l.With(zap.String("service", "realitycheck")), nil
}
