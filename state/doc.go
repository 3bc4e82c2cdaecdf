// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package state is the typed front-end for storage.KVStore; it does not
// use storage.AgentStateStore. Every write carries a types.Class, which
// selects which phases of the write pipeline run: validation, hook
// invocation, redaction, and persistence. Ephemeral writes never reach
// the backend at all.
//
// The package also owns schema migration: registered transforms are
// applied step by step under a MigrationPlan, producing a MigrationResult
// that tracks status, progress, and any warnings or errors encountered.
package state
