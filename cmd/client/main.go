package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fieldvisits/internal/client/cli"
	"github.com/dmitrijs2005/fieldvisits/internal/client/config"
	"github.com/dmitrijs2005/fieldvisits/internal/client/metrics"
	"github.com/dmitrijs2005/fieldvisits/internal/logging"
)

func main() {

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("%v", err)
	}

	logger, closer, err := logging.NewFileLogger(logging.FileOptions{Path: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer closer.Close()

	m := metrics.New()

	app, err := cli.NewApp(cfg, logger, m)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		app.Run(ctx)
	}()

	// The REPL may be blocked reading stdin; a signal does not wait for it.
	select {
	case <-done:
	case <-ctx.Done():
		logger.Info(ctx, "interrupted")
	}

	if cfg.MetricsFile != "" {
		if err := m.WriteToTextfile(cfg.MetricsFile); err != nil {
			log.Printf("write metrics: %v", err)
		}
	}
}
