// Command hubstress hammers a hub from many goroutines and reports its
// final state.
//
// Usage:
//
//	hubstress [-backend noop] [-workers 8] [-iterations 1000] [-max-handles 0]
//
// Every flag can also be set through a HUBSTRESS_* environment variable.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/gogpu/hub"
	"github.com/gogpu/hub/backend"
	_ "github.com/gogpu/hub/backend/noop"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		slog.Error("hubstress: config", "err", err)
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	hub.SetLogger(log)
	backend.Discover()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("hubstress: failed", "err", err)
		os.Exit(1)
	}
}
