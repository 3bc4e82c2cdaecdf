// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package repl is the line-oriented front-end and debug-capability
// adapter: a working directory, a variable snapshot, a bounded history
// with O(1) bidirectional navigation, and an optional debug adapter over
// a debug.State shared with the script execution host. History persists
// to a file that tolerates corruption by discarding itself rather than
// failing the process.
package repl
