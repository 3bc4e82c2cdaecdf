// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package scripthost

import (
	"context"

	"github.com/go-a2a/llmkernel/debug"
	"github.com/go-a2a/llmkernel/types"
)

// ExecutionStatus is the outcome of a single Execute call.
type ExecutionStatus string

const (
	StatusOK    ExecutionStatus = "ok"
	StatusError ExecutionStatus = "error"
	StatusAbort ExecutionStatus = "abort"
)

// ExecuteResult is what an Engine returns from one Execute call, before
// the Host stamps it with an execution_count.
type ExecuteResult struct {
	Status          ExecutionStatus
	UserExpressions map[string]types.Value
	Payload         []types.Value
	ErrorName       string
	ErrorValue      string
	Traceback       []string
}

// CompletionResult answers a complete request.
type CompletionResult struct {
	Matches     []string
	CursorStart int
	CursorEnd   int
	Metadata    map[string]types.Value
	Status      string
}

// InspectResult answers an inspect request.
type InspectResult struct {
	Found    bool
	Data     map[string]types.Value
	Metadata map[string]types.Value
	Status   string
}

// IsCompleteStatus classifies whether a code fragment parses as a
// complete statement.
type IsCompleteStatus string

const (
	IsCompleteComplete   IsCompleteStatus = "complete"
	IsCompleteIncomplete IsCompleteStatus = "incomplete"
	IsCompleteInvalid    IsCompleteStatus = "invalid"
	IsCompleteUnknown    IsCompleteStatus = "unknown"
)

// IsCompleteResult answers an is_complete request; Indent is the
// suggested continuation indent when Status is Incomplete.
type IsCompleteResult struct {
	Status IsCompleteStatus
	Indent string
}

// StreamChunk is one piece of incremental output from StreamEngine's
// StreamExecute.
type StreamChunk struct {
	Text string
	Done bool
	Err  error
}

// Engine is the seam a concrete script language binding implements. The
// kernel ships none; scripthost.Host only ever drives one through this
// interface.
type Engine interface {
	// Name identifies the engine for logging and kernel_info replies.
	Name() string

	// Execute runs code to completion, polling io.Signal at its own
	// suspension points. Returning a kernelerr.Cancelled-classified error
	// (or honoring io.Signal.IsInterrupted by returning a StatusAbort
	// result) is how an interrupted execution reports itself.
	Execute(ctx context.Context, code string, io *IOContext) (ExecuteResult, error)

	// Complete returns identifier completions for code at cursorPos.
	Complete(ctx context.Context, code string, cursorPos int) (CompletionResult, error)

	// Inspect returns introspection data (docstring, type, signature) for
	// the identifier at cursorPos. detail is 0 or 1, matching Jupyter's
	// detail_level.
	Inspect(ctx context.Context, code string, cursorPos, detail int) (InspectResult, error)

	// IsComplete reports whether code parses as a complete statement.
	IsComplete(ctx context.Context, code string) (IsCompleteResult, error)

	// InstallDebugHook arms hook to observe line/call/return events for
	// the duration of the next Execute call. A nil hook disarms
	// debugging. Engines that cannot support debugging return
	// kernelerr.Permanent.
	InstallDebugHook(hook *debug.Hook) error
}

// StreamEngine is implemented by engines that can additionally stream
// output incrementally rather than only returning it as captured stdout
// at the end of Execute.
type StreamEngine interface {
	Engine
	StreamExecute(ctx context.Context, code string, io *IOContext) (<-chan StreamChunk, error)
}
