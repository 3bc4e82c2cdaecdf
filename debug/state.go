// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package debug

import (
	"sync"
	"sync/atomic"

	"github.com/go-a2a/llmkernel/types"
)

// conditionResult is a cached condition evaluation, valid only as long as
// generation matches State.generation.
type conditionResult struct {
	generation uint64
	hit        bool
	err        error
}

// watchCacheEntry is a cached watch evaluation, valid only as long as
// generation matches State.generation.
type watchCacheEntry struct {
	generation uint64
	result     WatchResult
}

// State is the per-script debug cache described by the debug adapter: a
// breakpoint set, a generation-invalidated condition and watch result
// cache, step mode, current frame index, and a variable snapshot. One
// State exists per running script; the script execution host's debug hook
// installer consults it on every line/call/return event.
type State struct {
	mu sync.RWMutex

	breakpoints map[breakpointKey]*Breakpoint
	conditions  map[breakpointKey]conditionResult

	watches      map[string]*Watch
	watchResults map[string]watchCacheEntry

	generation atomic.Uint64

	stepMode     StepMode
	preStepMode  StepMode
	stackDepth   int
	stepBaseline int
	frameIndex   int

	variables map[string]types.Value
}

// NewState constructs an empty debug cache.
func NewState() *State {
	return &State{
		breakpoints:  make(map[breakpointKey]*Breakpoint),
		conditions:   make(map[breakpointKey]conditionResult),
		watches:      make(map[string]*Watch),
		watchResults: make(map[string]watchCacheEntry),
		variables:    make(map[string]types.Value),
	}
}

// SetBreakpoint installs or replaces the breakpoint at (source, line).
// condition may be empty for an unconditional breakpoint. Replacing a
// breakpoint's condition drops its cached result, since a stale cache
// entry would otherwise answer for the wrong condition.
func (s *State) SetBreakpoint(source string, line int, condition string) *Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	bp := &Breakpoint{Source: source, Line: line, Condition: condition}
	key := bp.key()
	s.breakpoints[key] = bp
	delete(s.conditions, key)
	return bp
}

// RemoveBreakpoint deletes the breakpoint at (source, line), if any.
func (s *State) RemoveBreakpoint(source string, line int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := breakpointKey{source: source, line: line}
	delete(s.breakpoints, key)
	delete(s.conditions, key)
}

// HasBreakpoint is the fast-path hit test: a cheap set-membership check
// with no condition evaluation. Callers on the hot execution path should
// call this first and only fall back to ShouldPause when it returns true.
func (s *State) HasBreakpoint(source string, line int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.breakpoints[breakpointKey{source: source, line: line}]
	return ok
}

// Breakpoints returns a snapshot of every installed breakpoint.
func (s *State) Breakpoints() []Breakpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Breakpoint, 0, len(s.breakpoints))
	for _, bp := range s.breakpoints {
		out = append(out, *bp)
	}
	return out
}

// ShouldPause runs the slow-path half of the two-tier breakpoint test: it
// assumes HasBreakpoint has already returned true for (source, line), and
// decides whether execution should actually stop there. An unconditional
// breakpoint always stops. A conditional breakpoint's result is cached
// against the current generation; a cache hit at the current generation
// skips calling eval entirely.
func (s *State) ShouldPause(source string, line int, eval ConditionEvaluator, frame Frame) (bool, error) {
	s.mu.Lock()
	bp, ok := s.breakpoints[breakpointKey{source: source, line: line}]
	if !ok {
		s.mu.Unlock()
		return false, nil
	}
	if !bp.HasCondition() {
		s.mu.Unlock()
		return true, nil
	}

	gen := s.generation.Load()
	key := bp.key()
	if cached, ok := s.conditions[key]; ok && cached.generation == gen {
		s.mu.Unlock()
		return cached.hit, cached.err
	}
	s.mu.Unlock()

	hit, err := eval(bp, frame)

	s.mu.Lock()
	s.conditions[key] = conditionResult{generation: gen, hit: hit, err: err}
	s.mu.Unlock()

	return hit, err
}

// InvalidateConditions bumps the generation counter, discarding every
// cached condition and watch result. Hook.OnVariableWrite calls this on
// every variable write a paused script's frame makes, since a write can
// change any condition or watch's outcome.
func (s *State) InvalidateConditions() {
	s.generation.Add(1)
}

// Generation returns the current generation counter, mostly for tests.
func (s *State) Generation() uint64 {
	return s.generation.Load()
}

// AddWatch installs or replaces a named watch expression.
func (s *State) AddWatch(name, expression string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.watches[name] = &Watch{Name: name, Expression: expression}
	delete(s.watchResults, name)
}

// RemoveWatch deletes a named watch, if any.
func (s *State) RemoveWatch(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.watches, name)
	delete(s.watchResults, name)
}

// Watches returns a snapshot of every installed watch.
func (s *State) Watches() []Watch {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Watch, 0, len(s.watches))
	for _, w := range s.watches {
		out = append(out, *w)
	}
	return out
}

// EvaluateWatches evaluates every installed watch against frame, using the
// cached result for any watch whose last evaluation is still at the
// current generation.
func (s *State) EvaluateWatches(eval WatchEvaluator, frame Frame) map[string]WatchResult {
	s.mu.Lock()
	gen := s.generation.Load()
	watches := make([]Watch, 0, len(s.watches))
	for _, w := range s.watches {
		watches = append(watches, *w)
	}
	cached := make(map[string]WatchResult, len(watches))
	pending := watches[:0:0]
	for _, w := range watches {
		if entry, ok := s.watchResults[w.Name]; ok && entry.generation == gen {
			cached[w.Name] = entry.result
			continue
		}
		pending = append(pending, w)
	}
	s.mu.Unlock()

	results := make(map[string]WatchResult, len(watches))
	for name, r := range cached {
		results[name] = r
	}

	if len(pending) == 0 {
		return results
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range pending {
		v, err := eval(w.Expression, frame)
		r := WatchResult{Value: v, Err: err}
		s.watchResults[w.Name] = watchCacheEntry{generation: gen, result: r}
		results[w.Name] = r
	}
	return results
}

// SetStepMode arms mode, saving the previously armed mode so a later
// RestorePreStepMode can revert to it. baseline is the stack depth the
// step was armed from; Over and Out compare later StackDepth calls
// against it to decide when the step has completed.
func (s *State) SetStepMode(mode StepMode, baseline int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.preStepMode = s.stepMode
	s.stepMode = mode
	s.stepBaseline = baseline
}

// StepMode returns the currently armed step mode.
func (s *State) StepMode() StepMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stepMode
}

// StepBaseline returns the stack depth SetStepMode was armed at.
func (s *State) StepBaseline() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stepBaseline
}

// RestorePreStepMode reverts to the mode that was armed before the most
// recent SetStepMode call, clearing the saved mode back to StepNone so a
// second restore is a no-op.
func (s *State) RestorePreStepMode() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepMode = s.preStepMode
	s.preStepMode = StepNone
}

// SetStackDepth records the paused script's current call-stack depth.
func (s *State) SetStackDepth(depth int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stackDepth = depth
}

// StackDepth returns the last recorded call-stack depth.
func (s *State) StackDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stackDepth
}

// SetFrameIndex records which frame of the paused stack is selected for
// inspection (NavigateStack).
func (s *State) SetFrameIndex(idx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameIndex = idx
}

// FrameIndex returns the currently selected frame index.
func (s *State) FrameIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frameIndex
}

// SetVariables replaces the cached variable snapshot for the currently
// selected frame.
func (s *State) SetVariables(vars map[string]types.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variables = vars
}

// Variables returns the cached variable snapshot.
func (s *State) Variables() map[string]types.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.variables
}
