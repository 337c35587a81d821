package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-audience-dashboard/pkg/config"
)

// newLogger builds the process logger from the log section. The console format
// uses zap's development encoder.
func newLogger(cfg config.Log) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("audiencectl: log level: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

// loadConfig reads the config file and applies the global flag overrides.
func (c *cli) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return config.Config{}, err
	}
	if c.LogLevel != "" {
		cfg.Log.Level = c.LogLevel
	}
	if c.LogFmt != "" {
		cfg.Log.Format = c.LogFmt
	}
	return cfg, nil
}
