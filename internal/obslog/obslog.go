// Package obslog threads a zerolog.Logger through context.Context so every
// component logs through the same structured sink instead of the global
// logger, keeping each test (and each workspace operation) independently
// attachable to its own buffer.
package obslog

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
)

type ctxKey struct{}

// New builds the default process logger: leveled, RFC3339 timestamps, writing
// to w (os.Stderr in production, a bytes.Buffer in tests).
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Default is a convenience logger for call sites that run before a request
// context exists (process startup, flag parsing).
func Default() zerolog.Logger {
	return New(os.Stderr, zerolog.InfoLevel)
}

// With attaches a logger to ctx, returning the derived context.
func With(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From returns the logger attached to ctx, or a disabled logger if none was
// attached (never nil, never panics).
func From(ctx context.Context) zerolog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(zerolog.Logger); ok {
		return l
	}
	return zerolog.Nop()
}
