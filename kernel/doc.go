// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package kernel is the top-level orchestration loop: it acquires a
// kernel id, selects ports, writes a connection file to the discovery
// directory, binds the five protocol channels, and serves shell and
// control requests until shutdown. It routes each request by msg_type to
// the script execution host, brackets every reply with busy/idle on
// iopub, and honors interrupt and shutdown requests.
//
// kernel.Discovery implements the companion client side: scanning the
// discovery directory for connection files, probing each with a
// heartbeat ping, and removing the files of kernels that no longer
// answer.
package kernel
