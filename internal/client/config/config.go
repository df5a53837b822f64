package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds runtime settings for the field visits CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - SessionProbeInterval: how often an authenticated screen re-validates the session.
//   - RequestTimeout: upper bound for a single backend call.
//   - LogFile, LogLevel: rotating JSON log destination and threshold; no file means no logs.
//   - MetricsFile: Prometheus textfile written on exit; empty disables it.
//   - Attachments: object storage holding visit attachments.
type Config struct {
	ServerEndpointAddr   string        `validate:"required,hostname_port"`
	SessionProbeInterval time.Duration `validate:"gte=1s"`
	RequestTimeout       time.Duration `validate:"gte=100ms"`
	LogFile              string
	LogLevel             string `validate:"oneof=debug info warn error"`
	MetricsFile          string
	Attachments          AttachmentsConfig
}

// AttachmentsConfig points at the S3-compatible bucket with visit
// attachments. Keys are accepted from the JSON file only.
type AttachmentsConfig struct {
	Bucket    string
	Region    string
	Endpoint  string `validate:"omitempty,url"`
	AccessKey string `validate:"required_with=SecretKey"`
	SecretKey string `validate:"required_with=AccessKey"`
	LinkTTL   time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.SessionProbeInterval = 300 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.LogLevel = "info"
	c.Attachments.Region = "us-east-1"
	c.Attachments.LinkTTL = 15 * time.Minute
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseFlags(cfg, args)
	return cfg
}
