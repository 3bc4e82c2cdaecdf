// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package runtime is the kernel's single process-wide cooperative
// scheduler. [NewResource] builds a resource on a [Runtime] (the shared one
// is [Global]) so that it is constructed and used within the lifetime of
// one scheduler, never an ephemeral one that can vanish out from under it.
// The kernel's own ZMQ sockets (protocol.Router.Bind) and sqlite store
// (sqlitekv.Open) are built directly, not through NewResource.
//
// Task scheduling itself is grounded on the internal/pyasyncio primitives:
// [Spawn] wraps [pyasyncio.CreateTask] with admission to a fixed
// worker pool, and [BlockOn] refuses to run when called from
// inside that pool, where blocking the calling goroutine would starve a
// worker and deadlock the runtime.
package runtime
