// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package scripthost

import (
	"io"
	"sync"
)

// CaptureWriter is an output capture shim to put in place of an engine's
// own print/write primitive; Host does not install one itself. Every
// write forwards to the underlying stream
// and, if set, to a debug sink and a subscriber callback — used to mirror
// output into a debug console or a live-tailing test without disturbing
// the primary stdout/stderr routing.
type CaptureWriter struct {
	mu         sync.Mutex
	underlying io.Writer
	sink       io.Writer
	subscriber func(line string)
}

// NewCaptureWriter wraps underlying, the stream output ultimately reaches
// (an iopub stream publisher, a buffer, or os.Stdout in a standalone
// REPL).
func NewCaptureWriter(underlying io.Writer) *CaptureWriter {
	return &CaptureWriter{underlying: underlying}
}

// SetSink installs or clears a secondary writer every line is also
// forwarded to, such as a debug console mirroring captured output.
func (w *CaptureWriter) SetSink(sink io.Writer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sink = sink
}

// SetSubscriber installs or clears a callback invoked with each formatted
// line, in addition to the underlying write.
func (w *CaptureWriter) SetSubscriber(fn func(line string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscriber = fn
}

// Write implements io.Writer, forwarding p to the underlying stream, the
// sink (if any), and the subscriber (if any). A failure writing to the
// sink never prevents the underlying write from being reported.
func (w *CaptureWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	sink := w.sink
	subscriber := w.subscriber
	w.mu.Unlock()

	if sink != nil {
		_, _ = sink.Write(p)
	}
	if subscriber != nil {
		subscriber(string(p))
	}
	return w.underlying.Write(p)
}
