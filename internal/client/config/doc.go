// Package config loads runtime configuration for the field visits CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the backend gRPC endpoint
//	-i int      session probe interval (seconds)
//	-t int      backend request timeout (seconds)
//	-l string   log file; logging is off without one
//	-v string   log level
//	-m string   metrics textfile written on exit
//	-b string   attachments bucket
//	-g string   attachments region
//	-e string   S3-compatible endpoint
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "session_probe_interval": "300s",
//	  "request_timeout": "10s",
//	  "log_file": "/var/log/fieldvisits/cli.log",
//	  "log_level": "info",
//	  "metrics_file": "/var/lib/node_exporter/fieldvisits.prom",
//	  "attachments": {
//	    "bucket": "visit-files",
//	    "region": "eu-central-1",
//	    "endpoint": "http://127.0.0.1:9000",
//	    "access_key": "...",
//	    "secret_key": "...",
//	    "link_ttl": "15m"
//	  }
//	}
//
// Storage keys can only come from the JSON file so they never show up in
// the process list. Environment variables are not read.
package config
