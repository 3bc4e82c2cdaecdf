// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package repl

import (
	"sync"

	"github.com/go-a2a/llmkernel/debug"
	"github.com/go-a2a/llmkernel/kernelerr"
)

// RequestKind discriminates DebugRequest's variants.
type RequestKind int

const (
	ReqNavigateStack RequestKind = iota
	ReqGetStackTrace
	ReqSetBreakpoint
	ReqRemoveBreakpoint
	ReqAddWatch
	ReqEvaluateWatches
	ReqStep
	ReqContinue
)

// DebugRequest is the capability interface's request sum type; only the
// fields relevant to Kind are read.
type DebugRequest struct {
	Kind RequestKind

	FrameIndex int // NavigateStack

	Source    string // SetBreakpoint, RemoveBreakpoint
	Line      int
	Condition string

	WatchName string // AddWatch
	WatchExpr string

	Step debug.StepMode // Step
}

// DebugResponse is the capability interface's response sum type.
type DebugResponse struct {
	Kind       RequestKind
	Frames     []debug.Frame
	Watches    map[string]debug.WatchResult
	Breakpoint *debug.Breakpoint
}

// Adapter is the debug-capability interface the REPL exposes over a
// running script's debug.State: process a request, report what it
// supports, and identify itself.
type Adapter interface {
	ProcessDebugRequest(req DebugRequest) (DebugResponse, error)
	Capabilities() []string
	Name() string
}

// HostAdapter is the Adapter implementation backed by a script execution
// host's debug.State. It caches the current stack, refreshed by OnPause
// whenever the engine reports a pause, so NavigateStack and
// GetStackTrace never need to re-enter the engine.
type HostAdapter struct {
	state    *debug.State
	condEval debug.ConditionEvaluator
	watchEval debug.WatchEvaluator

	mu    sync.RWMutex
	stack []debug.Frame
}

// NewHostAdapter builds an Adapter over state. watchEval evaluates
// watches for ReqEvaluateWatches; condEval is stored, but no request kind
// calls it.
func NewHostAdapter(state *debug.State, condEval debug.ConditionEvaluator, watchEval debug.WatchEvaluator) *HostAdapter {
	return &HostAdapter{state: state, condEval: condEval, watchEval: watchEval}
}

// OnPause refreshes the cached stack and the debug state's frame
// bookkeeping whenever the engine reports a pause (breakpoint hit or
// step completion). The onPause callback passed to
// scripthost.Host.ArmDebug calls it with the paused frame.
func (a *HostAdapter) OnPause(frames []debug.Frame) {
	a.mu.Lock()
	a.stack = frames
	a.mu.Unlock()

	a.state.SetStackDepth(len(frames))
	a.state.SetFrameIndex(0)
	if len(frames) > 0 {
		a.state.SetVariables(frames[0].Locals)
	}
}

// Capabilities lists every request kind this adapter supports.
func (a *HostAdapter) Capabilities() []string {
	return []string{
		"navigateStack", "getStackTrace", "setBreakpoint", "removeBreakpoint",
		"addWatch", "evaluateWatches", "step", "continue",
	}
}

// Name identifies the adapter.
func (a *HostAdapter) Name() string { return "llmkernel-debug-adapter" }

// ProcessDebugRequest dispatches req to the matching debug.State
// operation.
func (a *HostAdapter) ProcessDebugRequest(req DebugRequest) (DebugResponse, error) {
	switch req.Kind {
	case ReqNavigateStack:
		a.mu.RLock()
		frames := a.stack
		a.mu.RUnlock()
		if req.FrameIndex < 0 || req.FrameIndex >= len(frames) {
			return DebugResponse{}, kernelerr.Newf(kernelerr.Validation, "repl: frame index %d out of range (have %d frames)", req.FrameIndex, len(frames))
		}
		a.state.SetFrameIndex(req.FrameIndex)
		a.state.SetVariables(frames[req.FrameIndex].Locals)
		return DebugResponse{Kind: req.Kind, Frames: []debug.Frame{frames[req.FrameIndex]}}, nil

	case ReqGetStackTrace:
		a.mu.RLock()
		frames := append([]debug.Frame(nil), a.stack...)
		a.mu.RUnlock()
		return DebugResponse{Kind: req.Kind, Frames: frames}, nil

	case ReqSetBreakpoint:
		bp := a.state.SetBreakpoint(req.Source, req.Line, req.Condition)
		return DebugResponse{Kind: req.Kind, Breakpoint: bp}, nil

	case ReqRemoveBreakpoint:
		a.state.RemoveBreakpoint(req.Source, req.Line)
		return DebugResponse{Kind: req.Kind}, nil

	case ReqAddWatch:
		a.state.AddWatch(req.WatchName, req.WatchExpr)
		return DebugResponse{Kind: req.Kind}, nil

	case ReqEvaluateWatches:
		results := a.state.EvaluateWatches(a.watchEval, a.currentFrame())
		return DebugResponse{Kind: req.Kind, Watches: results}, nil

	case ReqStep:
		a.state.SetStepMode(req.Step, a.state.StackDepth())
		return DebugResponse{Kind: req.Kind}, nil

	case ReqContinue:
		a.state.SetStepMode(debug.StepNone, a.state.StackDepth())
		return DebugResponse{Kind: req.Kind}, nil

	default:
		return DebugResponse{}, kernelerr.Newf(kernelerr.Validation, "repl: unknown debug request kind %d", req.Kind)
	}
}

func (a *HostAdapter) currentFrame() debug.Frame {
	a.mu.RLock()
	defer a.mu.RUnlock()
	idx := a.state.FrameIndex()
	if idx >= 0 && idx < len(a.stack) {
		return a.stack[idx]
	}
	return debug.Frame{}
}
