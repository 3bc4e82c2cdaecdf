// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package llmkernel is the root of a programmable, Jupyter-wire-protocol
// compatible kernel that hosts a pluggable script execution engine and
// gives it durable state, hooked lifecycle events, sessions, artifacts, a
// global capability registry, and a REPL/debug front-end.
//
// The kernel itself never implements a scripting language: [scripthost.Engine]
// is the seam a concrete language binding plugs into. Everything else —
// the I/O runtime in [runtime], the storage backends in [storage] and its
// subpackages, the state manager in [state], the hook and event buses in
// [hooks] and [events], the session and artifact stores in [session] and
// [artifact], the global registry in [registry], the wire protocol in
// [protocol] and [protocol/wire], the top-level dispatch loop in [kernel],
// and the debug/REPL layer in [debug] and [repl] — is implemented here and
// composed by [cmd/llmkernel]'s main package.
package llmkernel
