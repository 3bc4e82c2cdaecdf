// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package hooks

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/go-a2a/llmkernel/types"
)

// Handle identifies a registration returned by Bus.Register, used to
// unregister it later.
type Handle struct {
	point string
	id    types.ID
}

// Bus is the hook registry and dispatcher. Registration is copy-on-write:
// Register and Unregister replace the slice for a point under a write
// lock, while Fire reads the current slice under a read lock, so readers
// never block each other.
type Bus struct {
	mu    sync.RWMutex
	byPt  map[string][]registration
	cbs   map[types.ID]*gobreaker.CircuitBreaker[types.HookResult]
	nullCB bool // when true, hooks run without circuit-breaker wrapping
}

type registration struct {
	descriptor types.HookDescriptor
	replayable bool
}

// New constructs an empty Bus. Every hook's execution is wrapped in its
// own circuit breaker; pass NewNull for tests that want hooks to run
// unconditionally.
func New() *Bus {
	return &Bus{
		byPt: make(map[string][]registration),
		cbs:  make(map[types.ID]*gobreaker.CircuitBreaker[types.HookResult]),
	}
}

// NewNull constructs a Bus whose circuit breaker is a non-blocking
// null implementation: hooks always run, never bypassed.
func NewNull() *Bus {
	b := New()
	b.nullCB = true
	return b
}

// Register adds a hook at the given point, returning a handle for later
// unregistration. descriptor.ID is assigned if it is the nil ID.
func (b *Bus) Register(descriptor types.HookDescriptor, replayable bool) Handle {
	if descriptor.ID.IsNil() {
		descriptor.ID = types.NewID()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	existing := b.byPt[descriptor.Point]
	next := make([]registration, len(existing), len(existing)+1)
	copy(next, existing)
	next = append(next, registration{descriptor: descriptor, replayable: replayable})
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].descriptor.Priority < next[j].descriptor.Priority
	})
	b.byPt[descriptor.Point] = next

	if !b.nullCB {
		b.cbs[descriptor.ID] = gobreaker.NewCircuitBreaker[types.HookResult](gobreaker.Settings{
			Name:        descriptor.Name,
			MaxRequests: 1,
			Interval:    0,
			Timeout:     5 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		})
	}

	return Handle{point: descriptor.Point, id: descriptor.ID}
}

// Unregister removes the hook identified by handle.
func (b *Bus) Unregister(handle Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	existing := b.byPt[handle.point]
	next := make([]registration, 0, len(existing))
	for _, r := range existing {
		if r.descriptor.ID != handle.id {
			next = append(next, r)
		}
	}
	b.byPt[handle.point] = next
	delete(b.cbs, handle.id)
}

// List returns the hooks registered at point in priority order. If point
// is empty, every registered hook across every point is returned.
func (b *Bus) List(point string) []types.HookDescriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []types.HookDescriptor
	if point != "" {
		for _, r := range b.byPt[point] {
			out = append(out, r.descriptor)
		}
		return out
	}
	for _, regs := range b.byPt {
		for _, r := range regs {
			out = append(out, r.descriptor)
		}
	}
	return out
}

// Fire runs every hook registered at point, in priority order, and
// aggregates their results per types.AggregateHookResults: any Cancel
// short-circuits the remaining hooks. A hook whose circuit breaker is
// open is skipped as if it had returned Continue.
func (b *Bus) Fire(ctx context.Context, point string, payload types.Value) (types.HookResult, error) {
	b.mu.RLock()
	regs := append([]registration(nil), b.byPt[point]...)
	b.mu.RUnlock()

	results := make([]types.HookResult, 0, len(regs))
	for _, r := range regs {
		result, err := b.runOne(r, payload)
		if err != nil {
			// A breaker trip or internal error degrades to Continue; the
			// hook is bypassed rather than failing the operation it guards.
			results = append(results, types.ContinueResult())
			continue
		}
		results = append(results, result)
		if result.Kind == types.Cancel {
			break
		}
	}
	return types.AggregateHookResults(results), nil
}

func (b *Bus) runOne(r registration, payload types.Value) (types.HookResult, error) {
	if b.nullCB {
		return r.descriptor.Fn(payload)
	}

	b.mu.RLock()
	cb := b.cbs[r.descriptor.ID]
	b.mu.RUnlock()
	if cb == nil {
		return r.descriptor.Fn(payload)
	}

	return cb.Execute(func() (types.HookResult, error) {
		return r.descriptor.Fn(payload)
	})
}

// ReplayID returns a stable identifier for replaying hook execution at
// point against payload, derived deterministically so the same
// (point, payload) pair always yields the same id.
func ReplayID(point string, payload types.Value) (types.ID, error) {
	data, err := marshalForReplay(payload)
	if err != nil {
		return types.Nil, err
	}
	return types.NewDeterministicID(types.RootNamespace, fmt.Sprintf("%s:%s", point, data)), nil
}
