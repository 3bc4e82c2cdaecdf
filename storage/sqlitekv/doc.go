// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitekv is a durable KVStore and AgentStateStore backed by
// modernc.org/sqlite, a CGo-free SQLite driver for database/sql. It is the
// backend to reach for when the kernel must survive a process restart
// without requiring an external database.
package sqlitekv
