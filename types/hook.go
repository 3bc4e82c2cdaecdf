// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"math"
)

// Priority orders hook execution. Lower values execute first; Highest is
// math.MinInt32 so it always sorts before every built-in bucket.
type Priority int32

const (
	PriorityHighest Priority = math.MinInt32
	PriorityHigh    Priority = -100
	PriorityNormal  Priority = 0
	PriorityLow     Priority = 100
	PriorityLowest  Priority = math.MaxInt32
)

// IsHigherThan reports whether p executes before other.
func (p Priority) IsHigherThan(other Priority) bool { return p < other }

// IsLowerThan reports whether p executes after other.
func (p Priority) IsLowerThan(other Priority) bool { return p > other }

// DistanceFrom returns the absolute priority-value distance between p and
// other.
func (p Priority) DistanceFrom(other Priority) uint32 {
	d := int64(p) - int64(other)
	if d < 0 {
		d = -d
	}
	return uint32(d)
}

// Builder starts a PriorityBuilder anchored at p.
func (p Priority) Builder() PriorityBuilder { return PriorityBuilder{base: int64(p)} }

// PriorityBucket groups priorities for display and coarse filtering.
type PriorityBucket int

const (
	BucketCritical PriorityBucket = iota
	BucketHigh
	BucketNormal
	BucketLow
	BucketLowest
)

// Name returns the bucket's display name.
func (b PriorityBucket) Name() string {
	switch b {
	case BucketCritical:
		return "Critical"
	case BucketHigh:
		return "High"
	case BucketNormal:
		return "Normal"
	case BucketLow:
		return "Low"
	case BucketLowest:
		return "Lowest"
	default:
		return "Normal"
	}
}

// BucketOf classifies p into its display bucket. Each bucket spans 50
// priority units above the boundary constant it is named for, mirroring
// the bucket widths used for hook introspection and profiling reports.
func BucketOf(p Priority) PriorityBucket {
	switch {
	case int64(p) <= int64(PriorityHighest)+50:
		return BucketCritical
	case int64(p) <= int64(PriorityHigh)+50:
		return BucketHigh
	case int64(p) <= int64(PriorityNormal)+50:
		return BucketNormal
	case int64(p) <= int64(PriorityLow)+50:
		return BucketLow
	default:
		return BucketLowest
	}
}

// PriorityBuilder derives priorities relative to a base value, saturating
// at the int32 range instead of overflowing.
type PriorityBuilder struct {
	base int64
}

// NewPriorityBuilder starts a builder from an arbitrary base value.
func NewPriorityBuilder(base int32) PriorityBuilder { return PriorityBuilder{base: int64(base)} }

// Offset returns a priority offset from the base by offset, positive
// offsets executing later.
func (b PriorityBuilder) Offset(offset int32) Priority {
	return saturatingPriority(b.base + int64(offset))
}

// Before returns a priority that executes distance units earlier than the
// base.
func (b PriorityBuilder) Before(distance uint32) Priority {
	return saturatingPriority(b.base - int64(distance))
}

// After returns a priority that executes distance units later than the
// base.
func (b PriorityBuilder) After(distance uint32) Priority {
	return saturatingPriority(b.base + int64(distance))
}

func saturatingPriority(v int64) Priority {
	switch {
	case v < math.MinInt32:
		return Priority(math.MinInt32)
	case v > math.MaxInt32:
		return Priority(math.MaxInt32)
	default:
		return Priority(v)
	}
}

// HookResult is what a hook callback returns to the dispatcher, and
// determines both whether the operation continues and whether the
// payload the hook saw gets replaced for downstream hooks.
type HookResult struct {
	Kind      HookResultKind
	Payload   Value // set when Kind is Modified; the replacement payload
	CancelMsg string // set when Kind is Cancel; surfaced to the caller
}

// HookResultKind discriminates HookResult.
type HookResultKind int

const (
	// Continue runs the next hook unchanged.
	Continue HookResultKind = iota
	// Modified replaces the payload seen by subsequent hooks and the
	// eventual operation.
	Modified
	// Cancel aborts the operation; no further hooks run.
	Cancel
	// Skip opts this hook out without affecting other hooks or the payload.
	Skip
)

// String returns the kind name used in log fields.
func (k HookResultKind) String() string {
	switch k {
	case Continue:
		return "Continue"
	case Modified:
		return "Modified"
	case Cancel:
		return "Cancel"
	case Skip:
		return "Skip"
	default:
		return "Continue"
	}
}

// ContinueResult is the common case: run the next hook unchanged.
func ContinueResult() HookResult { return HookResult{Kind: Continue} }

// ModifiedResult replaces the payload for subsequent hooks.
func ModifiedResult(v Value) HookResult { return HookResult{Kind: Modified, Payload: v} }

// CancelResult aborts the operation with a reason surfaced to the caller.
func CancelResult(reason string) HookResult { return HookResult{Kind: Cancel, CancelMsg: reason} }

// SkipResult opts this hook out of the aggregation.
func SkipResult() HookResult { return HookResult{Kind: Skip} }

// AggregateHookResults folds an ordered list of per-hook results into the
// single decision the dispatcher acts on: any Cancel short-circuits the
// whole chain; otherwise the last Modified result wins; otherwise the
// operation continues with its original payload. Skip results never
// influence the outcome.
func AggregateHookResults(results []HookResult) HookResult {
	final := ContinueResult()
	for _, r := range results {
		switch r.Kind {
		case Cancel:
			return r
		case Modified:
			final = r
		case Continue, Skip:
			// no effect on the running aggregate
		}
	}
	return final
}

// HookDescriptor is the registration record a hook provides to the bus:
// its identity, where in the priority order it runs, and the callback
// itself. The callback signature is intentionally payload-agnostic
// (Value in, HookResult out) so the same descriptor type serves every
// hook point in the kernel.
type HookDescriptor struct {
	ID       ID
	Name     string
	Priority Priority
	// Point names the hook point this descriptor is registered for, e.g.
	// "state.before_write" or "session.before_suspend".
	Point string
	Fn     func(payload Value) (HookResult, error)
}
