// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package logging provides context-based structured logging for the kernel process, built on Go's standard slog package.
//
// cmd/llmkernel installs one *slog.Logger into the root context at process
// startup; every component that handles a shell/control/stdin message,
// fires a hook, or sweeps expired sessions pulls that logger back out of
// its request-scoped context rather than taking a logger as a constructor
// argument.
//
// # Basic Usage
//
// Installing the kernel's root logger (cmd/llmkernel/main.go):
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//		Level: slog.LevelInfo,
//	}))
//
//	ctx := logging.NewContext(context.Background(), logger)
//
// Recovering it inside a dispatcher handler:
//
//	logger := logging.FromContext(ctx)
//	logger.Info("session created", "session_id", sess.ID.String(), "tenant_id", sess.TenantID)
//
// # Integration with the Dispatcher and Protocol Router
//
// kernel/dispatcher.go pulls the logger out of the per-message context to
// report shell-channel request handling, and protocol/router.go uses it to
// warn on malformed or undelimited ZeroMQ frames:
//
//	func (d *Dispatcher) handleExecuteRequest(ctx context.Context, msg wire.Message) {
//		logger := logging.FromContext(ctx)
//		logger.Info("execute_request received", "msg_id", msg.Header.MsgID)
//
//		// ... dispatch to scripthost.Host.Execute
//	}
//
// # Default Behavior
//
// When no logger is found in the context, FromContext returns a JSON logger
// writing to stdout at the level named by the LLMKERNEL_LOG_LEVEL
// environment variable (info if unset or unparseable). This keeps logging
// working for code paths that run before cmd/llmkernel attaches its own
// handler, or in a goroutine spawned off the runtime's global scheduler
// (see internal/goruntime and the runtime package) without inheriting a
// request context.
//
// # Structured Logging
//
// The package leverages Go's slog for structured logging with key-value pairs:
//
//	logger := logging.FromContext(ctx)
//	logger.Info("execute_request completed",
//		"msg_id", msg.Header.MsgID,
//		"session_id", sessionID,
//		"duration", duration,
//		"status", "ok",
//	)
//
// # Logger Configuration
//
// Configure loggers with different handlers and options:
//
//	// JSON handler for production kernels
//	jsonHandler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
//		Level:     slog.LevelInfo,
//		AddSource: true,
//	})
//
//	// Text handler for local kernel debugging
//	textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//		Level: slog.LevelDebug,
//	})
//
//	logger := slog.New(jsonHandler)
//	ctx := logging.NewContext(ctx, logger)
//
// # Context Propagation
//
// Loggers propagate from the kernel's root context down through every
// per-message context the dispatcher derives for a shell/control/stdin
// request:
//
//	func (k *Kernel) handleMessage(ctx context.Context, msg wire.Message) {
//		logger := logging.FromContext(ctx) // root logger from cmd/llmkernel
//		ctx = logging.NewContext(ctx, logger.With("msg_id", msg.Header.MsgID))
//
//		d.dispatch(ctx, msg) // sees the msg_id-scoped logger
//	}
//
// # Best Practices
//
//  1. Attach the kernel's root logger once, in cmd/llmkernel, before Start
//  2. Use structured logging with consistent key names (session_id, msg_id, global)
//  3. Include the originating channel and message type in dispatcher log lines
//  4. Use appropriate log levels (Debug for hook/replay internals, Info for lifecycle)
//  5. Never log session state values or hook payload contents verbatim — they may carry secrets
//
// # Thread Safety
//
// The logging package is safe for concurrent use. Multiple goroutines can safely
// access loggers from context without additional synchronization.
package logging
