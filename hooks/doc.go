// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package hooks is the named-extension-point registry and dispatcher
// every capability boundary in the kernel fires through. Hooks register
// at a named point with a priority (see types.Priority); Bus.Fire runs
// every hook registered for a point in priority order and aggregates
// their results with types.AggregateHookResults.
//
// Each hook's execution is wrapped in a sony/gobreaker circuit breaker so
// a misbehaving hook degrades to a no-op (Continue) instead of wedging
// every future call through that point; a null breaker exists for tests
// that want hooks to run unconditionally.
package hooks
