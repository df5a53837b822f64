package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fieldvisits/internal/flagx"
	"github.com/dmitrijs2005/fieldvisits/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations are timex.Duration,
// so "300s" and integer nanoseconds both work.
type JsonConfig struct {
	ServerEndpointAddr   string          `json:"server_endpoint_addr"`
	SessionProbeInterval timex.Duration  `json:"session_probe_interval"`
	RequestTimeout       timex.Duration  `json:"request_timeout"`
	LogFile              string          `json:"log_file"`
	LogLevel             string          `json:"log_level"`
	MetricsFile          string          `json:"metrics_file"`
	Attachments          JsonAttachments `json:"attachments"`
}

type JsonAttachments struct {
	Bucket    string         `json:"bucket"`
	Region    string         `json:"region"`
	Endpoint  string         `json:"endpoint"`
	AccessKey string         `json:"access_key"`
	SecretKey string         `json:"secret_key"`
	LinkTTL   timex.Duration `json:"link_ttl"`
}

// parseJson overlays cfg with the file named by -c/-config in args. Only
// fields present in the file replace the current values. Read and decode
// errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerEndpointAddr, jc.ServerEndpointAddr)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.MetricsFile, jc.MetricsFile)
	if jc.SessionProbeInterval.Duration > 0 {
		cfg.SessionProbeInterval = jc.SessionProbeInterval.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}

	a := &cfg.Attachments
	setString(&a.Bucket, jc.Attachments.Bucket)
	setString(&a.Region, jc.Attachments.Region)
	setString(&a.Endpoint, jc.Attachments.Endpoint)
	setString(&a.AccessKey, jc.Attachments.AccessKey)
	setString(&a.SecretKey, jc.Attachments.SecretKey)
	if jc.Attachments.LinkTTL.Duration > 0 {
		a.LinkTTL = jc.Attachments.LinkTTL.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
