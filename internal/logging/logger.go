// Package logging defines the structured logger used across the client.
// SlogLogger is the only real implementation; NewFileLogger points it at a
// rotating file, and Nop discards everything.
package logging

import "context"

// Logger is a context-aware, structured logger. Args are key/value pairs:
//
//	log.Info(ctx, "screen entered", "screen", name)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	// Components tag themselves with With("module", ...).
	With(args ...any) Logger
}
