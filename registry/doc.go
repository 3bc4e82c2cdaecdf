// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry builds the dependency-ordered set of capability
// globals (Agent, Tool, Workflow, Session, State, Provider, JSON,
// Streaming, Debug, Hook, Event) injected into a fresh script context, and
// hosts the GlobalContext bag shared globals use to publish and find one
// another's backing services.
package registry
