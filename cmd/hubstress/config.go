package main

import (
	"flag"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config controls a stress run. Environment variables set the defaults;
// command-line flags override them.
type Config struct {
	Backend    string        `env:"HUBSTRESS_BACKEND"`
	Workers    int           `env:"HUBSTRESS_WORKERS"     envDefault:"8"`
	Iterations int           `env:"HUBSTRESS_ITERATIONS"  envDefault:"1000"`
	MaxHandles int           `env:"HUBSTRESS_MAX_HANDLES" envDefault:"0"`
	Timeout    time.Duration `env:"HUBSTRESS_TIMEOUT"     envDefault:"30s"`
	LogLevel   slog.Level    `env:"HUBSTRESS_LOG_LEVEL"   envDefault:"info"`
}

// loadConfig parses the environment, then args.
func loadConfig(args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("hubstress", flag.ContinueOnError)
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "HAL backend name (empty picks the best available)")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "concurrent workers")
	fs.IntVar(&cfg.Iterations, "iterations", cfg.Iterations, "create/drop cycles per worker")
	fs.IntVar(&cfg.MaxHandles, "max-handles", cfg.MaxHandles, "per-kind handle limit (0 for unbounded)")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "abort the run after this long")
	fs.TextVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.Workers < 1 {
		return Config{}, fmt.Errorf("workers must be positive, got %d", cfg.Workers)
	}
	if cfg.Iterations < 0 {
		return Config{}, fmt.Errorf("iterations must not be negative, got %d", cfg.Iterations)
	}
	return cfg, nil
}
