// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package scripthost

import (
	"io"
	"sync/atomic"
)

// SignalHandler is the interrupt flag an Engine polls at its own
// suspension points. A true reading must cause the current execution to
// stop and report StatusAbort.
type SignalHandler struct {
	interrupted atomic.Bool
}

// NewSignalHandler returns a cleared signal handler.
func NewSignalHandler() *SignalHandler {
	return &SignalHandler{}
}

// Interrupt sets the flag. Safe to call from any goroutine, in particular
// the dispatcher handling a concurrent interrupt_request on the control
// channel while Execute runs on the shell channel.
func (s *SignalHandler) Interrupt() {
	s.interrupted.Store(true)
}

// IsInterrupted reports the current flag state.
func (s *SignalHandler) IsInterrupted() bool {
	return s.interrupted.Load()
}

// Reset clears the flag, called by the kernel dispatcher before starting
// a new execution so a prior interrupt never leaks into the next request.
// Host.Execute does not call it.
func (s *SignalHandler) Reset() {
	s.interrupted.Store(false)
}

// IOContext is the abstract I/O an Engine is handed for the duration of
// one Execute call. Stdout and Stderr are plain io.Writers so the Host can
// route them to iopub stream messages, a buffer, or a test sink without
// the Engine knowing which.
type IOContext struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Signal *SignalHandler
}

// NewIOContext builds an IOContext over the given streams with a fresh,
// cleared signal handler.
func NewIOContext(stdout, stderr io.Writer, stdin io.Reader) *IOContext {
	return &IOContext{
		Stdout: stdout,
		Stderr: stderr,
		Stdin:  stdin,
		Signal: NewSignalHandler(),
	}
}
