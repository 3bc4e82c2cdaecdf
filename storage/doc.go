// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package storage defines the backend traits every durable kernel
// component is built on: a KV store, an agent/workflow state store, an
// artifact store, a session store, an event-log store, and a vector
// store. Concrete backends live in subpackages — memstore (in-memory,
// implements every trait except the vector store), sqlitekv (modernc.org/sqlite-backed KV and
// agent state), and vectorstore (qdrant/go-client-backed, with an
// in-memory fallback).
//
// Tenant isolation is not advisory. Every trait method takes a
// types.Scope or an id that already encodes one, and an implementation
// MUST treat a cross-tenant id as not found rather than returning the
// foreign row. [HealthChecker] and [StatsProvider] are satisfied by every
// backend so the kernel dispatcher can report liveness uniformly.
package storage
