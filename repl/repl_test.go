// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package repl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/go-a2a/llmkernel/debug"
	"github.com/go-a2a/llmkernel/repl"
	"github.com/go-a2a/llmkernel/types"
)

func TestREPLTracksWorkingDirAndVariables(t *testing.T) {
	r := repl.New("/tmp/session")
	assert.Equal(t, "/tmp/session", r.WorkingDir())

	r.SetWorkingDir("/tmp/other")
	assert.Equal(t, "/tmp/other", r.WorkingDir())

	r.SetVariable("x", types.Number(42))
	v, _ := r.Variables()["x"].AsNumber()
	assert.Equal(t, float64(42), v)
}

func TestREPLSubmitRecordsHistory(t *testing.T) {
	r := repl.New("/tmp")
	r.Submit("print(1)")
	r.Submit("print(2)")
	assert.Equal(t, []string{"print(1)", "print(2)"}, r.History().Entries())
}

func TestREPLBreakpointsReflectDebugState(t *testing.T) {
	r := repl.New("/tmp")
	r.DebugState().SetBreakpoint("main.lua", 1, "")
	assert.Len(t, r.Breakpoints(), 1)
}

func TestREPLDebugAdapterAttachment(t *testing.T) {
	r := repl.New("/tmp")
	_, ok := r.DebugAdapter()
	assert.False(t, ok)

	a := repl.NewHostAdapter(r.DebugState(), nil, func(expr string, frame debug.Frame) (types.Value, error) {
		return types.Null(), nil
	})
	r.AttachDebugAdapter(a)

	got, ok := r.DebugAdapter()
	assert.True(t, ok)
	assert.Same(t, a, got)
}
