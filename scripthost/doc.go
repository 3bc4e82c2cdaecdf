// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package scripthost owns a script engine instance per kernel (or per
// session, depending on configuration) and exposes the Jupyter-shaped
// execute/complete/inspect/is_complete contract over it. It never
// implements a script language itself — Engine is the seam a concrete
// language binding plugs into, matching the kernel's guarantee that it
// does not prescribe the script language's type system.
//
// Every execution gets a request-scoped IOContext whose stdout/stderr are
// abstract streams the caller routes wherever it likes (iopub stream
// messages, a buffer, a test sink), plus a SignalHandler the engine polls
// at its own suspension points to honor an interrupt. When a debug session
// is armed, a Host installs a debug.Hook over the engine's
// line/call/return events. The package also provides CaptureWriter, an
// output capture shim for an engine's print/write primitive; Host does
// not install it.
package scripthost
