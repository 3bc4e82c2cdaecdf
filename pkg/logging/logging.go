// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"
	"log/slog"
	"os"
)

// contextKey is how we find [*slog.Logger] in a [context.Context].
type contextKey struct{}

// LevelEnvVar is the environment variable a kernel process reads to pick
// the default log level for the fallback logger FromContext returns when
// no logger has been attached to ctx — e.g. a goroutine spawned outside the
// dispatcher's per-message context, or code that runs before
// cmd/llmkernel attaches its logger with NewContext.
const LevelEnvVar = "LLMKERNEL_LOG_LEVEL"

// NewContext returns a new [context.Context], derived from ctx, which carries the provided [*slog.Logger].
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns a [slog.Logger] from ctx.
//
// If no [*slog.Logger] is found, this returns a JSON logger at the level
// named by LevelEnvVar (info by default). The shell/control/stdin channel
// handlers, the hook bus, and the session expiration sweep all fall back to
// this logger when invoked without a request-scoped context attached.
func FromContext(ctx context.Context) *slog.Logger {
	if v := ctx.Value(contextKey{}); v != nil {
		return v.(*slog.Logger)
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: defaultLevel(),
	}))
}

func defaultLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(os.Getenv(LevelEnvVar))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
