// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package protocol implements the five-channel Jupyter-compatible
// transport over ZeroMQ: shell (router), iopub (pub), stdin (router),
// control (router), and heartbeat (rep). It binds sockets from a
// wire.ConnectionInfo, verifies and signs every frame via
// protocol/wire, and enforces the iopub busy/stream/reply/idle ordering
// guarantee around a single request.
package protocol
