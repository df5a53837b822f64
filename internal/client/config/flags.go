package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/flagx"
)

var ownFlags = []string{"-a", "-i", "-t", "-l", "-v", "-m", "-b", "-g", "-e"}

// parseFlags overlays cfg with the flags it owns; everything else in args
// is left for other components. Intervals are given in whole seconds.
func parseFlags(cfg *Config, args []string) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	probeInterval := fs.Int("i", int(cfg.SessionProbeInterval.Seconds()), "session probe interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "backend request timeout (in seconds)")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file path")
	fs.StringVar(&cfg.LogLevel, "v", cfg.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&cfg.MetricsFile, "m", cfg.MetricsFile, "metrics textfile written on exit")
	fs.StringVar(&cfg.Attachments.Bucket, "b", cfg.Attachments.Bucket, "attachments bucket")
	fs.StringVar(&cfg.Attachments.Region, "g", cfg.Attachments.Region, "attachments bucket region")
	fs.StringVar(&cfg.Attachments.Endpoint, "e", cfg.Attachments.Endpoint, "S3-compatible endpoint URL")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		panic(err)
	}

	cfg.SessionProbeInterval = time.Duration(*probeInterval) * time.Second
	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
}
