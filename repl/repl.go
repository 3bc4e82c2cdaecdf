// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package repl

import (
	"sync"

	"github.com/go-a2a/llmkernel/debug"
	"github.com/go-a2a/llmkernel/types"
)

// REPL is the line-oriented front-end's session state: a working
// directory, a variable snapshot, a bounded history, the breakpoint set
// (via the shared debug.State), and an optional attached debug adapter.
type REPL struct {
	mu         sync.RWMutex
	workingDir string
	variables  map[string]types.Value

	history    *History
	debugState *debug.State
	adapter    Adapter
}

// New constructs a REPL rooted at workingDir with its own debug.State.
func New(workingDir string) *REPL {
	return &REPL{
		workingDir: workingDir,
		variables:  make(map[string]types.Value),
		history:    NewHistory(),
		debugState: debug.NewState(),
	}
}

// WorkingDir returns the REPL's current working directory.
func (r *REPL) WorkingDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.workingDir
}

// SetWorkingDir changes the REPL's working directory.
func (r *REPL) SetWorkingDir(dir string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workingDir = dir
}

// Variables returns a snapshot of the REPL's variable bindings.
func (r *REPL) Variables() map[string]types.Value {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]types.Value, len(r.variables))
	for k, v := range r.variables {
		out[k] = v
	}
	return out
}

// SetVariable binds name to value in the REPL's variable snapshot.
func (r *REPL) SetVariable(name string, value types.Value) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// History returns the REPL's input history.
func (r *REPL) History() *History {
	return r.history
}

// DebugState returns the debug cache backing this REPL's breakpoints and
// watches, shared with whatever script execution host the REPL drives.
func (r *REPL) DebugState() *debug.State {
	return r.debugState
}

// Breakpoints returns every breakpoint currently set.
func (r *REPL) Breakpoints() []debug.Breakpoint {
	return r.debugState.Breakpoints()
}

// AttachDebugAdapter installs a debug_context for this REPL. Until one is
// attached, DebugAdapter reports false.
func (r *REPL) AttachDebugAdapter(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapter = a
}

// DebugAdapter returns the attached adapter, if any.
func (r *REPL) DebugAdapter() (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.adapter, r.adapter != nil
}

// Submit records line in history, matching a line-oriented front-end
// accepting one line of input at a time. It resets the navigation
// cursor the way any freshly inserted line does.
func (r *REPL) Submit(line string) {
	r.history.Add(line)
}
