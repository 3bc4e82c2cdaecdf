// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package scripthost

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/go-a2a/llmkernel/debug"
	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/pkg/logging"
	"github.com/go-a2a/llmkernel/runtime"
	"github.com/go-a2a/llmkernel/types"
)

// ExecuteReply is what Execute returns, matching Jupyter's
// execute_reply content shape.
type ExecuteReply struct {
	Status          ExecutionStatus
	ExecutionCount  int64
	UserExpressions map[string]types.Value
	Payload         []types.Value
	ErrorName       string
	ErrorValue      string
	Traceback       []string
}

// Host drives one Engine for a kernel or session, owning the execution
// counter, the debug state cache, and the debug hook installer. One Host
// exists per script engine instance; whether that is per-kernel or
// per-session is the caller's policy, not Host's.
type Host struct {
	engine Engine

	execCount atomic.Int64

	mu         sync.Mutex
	debugState *debug.State
	debugArmed bool
}

// New constructs a Host over engine. engine must not be nil.
func New(engine Engine) *Host {
	return &Host{
		engine:     engine,
		debugState: debug.NewState(),
	}
}

// Engine returns the underlying engine, for callers that need
// engine-specific functionality (e.g. a StreamEngine type assertion).
func (h *Host) Engine() Engine {
	return h.engine
}

// DebugState returns the host's debug cache, shared with the REPL/debug
// adapter for breakpoint and watch management.
func (h *Host) DebugState() *debug.State {
	return h.debugState
}

// ArmDebug installs a debug hook over the engine's line/call/return
// events, backed by cond for condition evaluation. onPause is called
// whenever the engine reports a breakpoint or step-completion pause.
func (h *Host) ArmDebug(cond debug.ConditionEvaluator, onPause func(debug.PauseEvent)) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	hook := debug.NewHook(h.debugState, cond, onPause)
	if err := h.engine.InstallDebugHook(hook); err != nil {
		return err
	}
	h.debugArmed = true
	return nil
}

// DisarmDebug removes the installed debug hook, if any.
func (h *Host) DisarmDebug() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.debugArmed {
		return nil
	}
	if err := h.engine.InstallDebugHook(nil); err != nil {
		return err
	}
	h.debugArmed = false
	return nil
}

// Execute runs code on the engine, stamping the result with a
// monotonically increasing execution_count. silent suppresses nothing at
// this layer (the dispatcher decides whether to broadcast iopub output);
// it is threaded through so a caller building ExecuteReply's payload can
// honor Jupyter's store_history semantics.
func (h *Host) Execute(ctx context.Context, code string, silent bool, io *IOContext) (ExecuteReply, error) {
	logger := logging.FromContext(ctx)

	if io.Signal != nil && io.Signal.IsInterrupted() {
		return ExecuteReply{Status: StatusAbort, ExecutionCount: h.execCount.Load()}, nil
	}

	count := h.execCount.Add(1)

	// Execution runs on the process-wide I/O runtime's worker pool rather
	// than the caller's goroutine, so a panicking engine never takes down
	// the dispatcher loop that called Execute. The task keeps running past
	// a Wait timeout/cancellation, since interrupt is signaled through
	// io.Signal at the engine's own suspension points, not by context
	// cancellation.
	task := runtime.SpawnNamed(runtime.Global(), "scripthost.execute", func(taskCtx context.Context) (ExecuteResult, error) {
		return h.engine.Execute(logging.NewContext(taskCtx, logger), code, io)
	})
	result, err := task.Wait(ctx)
	if err != nil {
		if kernelerr.Is(err, kernelerr.Cancelled) {
			logger.Info("scripthost: execution interrupted", "execution_count", count)
			return ExecuteReply{Status: StatusAbort, ExecutionCount: count}, nil
		}
		return ExecuteReply{}, err
	}

	if io.Signal != nil && io.Signal.IsInterrupted() && result.Status != StatusAbort {
		result.Status = StatusAbort
	}

	return ExecuteReply{
		Status:          result.Status,
		ExecutionCount:  count,
		UserExpressions: result.UserExpressions,
		Payload:         result.Payload,
		ErrorName:       result.ErrorName,
		ErrorValue:      result.ErrorValue,
		Traceback:       result.Traceback,
	}, nil
}

// StreamExecute is Execute's streaming counterpart, available only when
// the underlying engine implements StreamEngine.
func (h *Host) StreamExecute(ctx context.Context, code string, io *IOContext) (<-chan StreamChunk, int64, error) {
	se, ok := h.engine.(StreamEngine)
	if !ok {
		return nil, 0, kernelerr.Newf(kernelerr.Permanent, "scripthost: engine %q does not support streaming execution", h.engine.Name())
	}
	count := h.execCount.Add(1)
	ch, err := se.StreamExecute(ctx, code, io)
	return ch, count, err
}

// Complete delegates to the engine unchanged; it carries no
// execution-count state.
func (h *Host) Complete(ctx context.Context, code string, cursorPos int) (CompletionResult, error) {
	return h.engine.Complete(ctx, code, cursorPos)
}

// Inspect delegates to the engine unchanged.
func (h *Host) Inspect(ctx context.Context, code string, cursorPos, detail int) (InspectResult, error) {
	return h.engine.Inspect(ctx, code, cursorPos, detail)
}

// IsComplete delegates to the engine unchanged.
func (h *Host) IsComplete(ctx context.Context, code string) (IsCompleteResult, error) {
	return h.engine.IsComplete(ctx, code)
}

// ExecutionCount returns the current execution counter without
// incrementing it.
func (h *Host) ExecutionCount() int64 {
	return h.execCount.Load()
}
