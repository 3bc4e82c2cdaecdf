// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package hooks

import (
	"runtime"
	"sync"
	"time"
)

// Workload classifies the operation a hook is measured against, each
// carrying its own overhead budget.
type Workload int

const (
	WorkloadMicro Workload = iota
	WorkloadLight
	WorkloadMedium
	WorkloadHeavy
)

// overheadBudget is the fraction of workload duration hook execution may
// consume before the sampler backs off its rate, tightest for the
// smallest workloads where fixed hook overhead is most visible.
var overheadBudget = map[Workload]float64{
	WorkloadMicro:  0.01,
	WorkloadLight:  0.03,
	WorkloadMedium: 0.05,
	WorkloadHeavy:  0.10,
}

// ProfilerReport is the point-in-time snapshot a Profiler exposes.
type ProfilerReport struct {
	OverheadPercent      float64
	SamplesCollected     int64
	WorkloadDuration     time.Duration
	CurrentSampleRateHz  float64
	MemoryAllocatedBytes uint64
}

// Profiler samples hook execution overhead at an adaptive rate: when
// observed overhead exceeds its workload's budget, the sample rate is
// reduced toward floorHz rather than continuing to pay full measurement
// cost on every call.
type Profiler struct {
	mu sync.Mutex

	workload  Workload
	rateHz    float64
	floorHz   float64
	samples   int64
	hookNanos int64
	wallNanos int64
}

// NewProfiler starts a profiler for workload sampling at initialHz,
// never backing off below floorHz.
func NewProfiler(workload Workload, initialHz, floorHz float64) *Profiler {
	return &Profiler{workload: workload, rateHz: initialHz, floorHz: floorHz}
}

// ShouldSample reports whether the next hook call should be measured,
// consulting the current adaptive rate.
func (p *Profiler) ShouldSample(tick int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rateHz <= 0 {
		return false
	}
	interval := int64(1.0 / p.rateHz)
	if interval <= 0 {
		return true
	}
	return tick%interval == 0
}

// Record adds one measured sample and adapts the sample rate if the
// observed overhead has crossed the workload's budget.
func (p *Profiler) Record(hookElapsed, wallElapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.samples++
	p.hookNanos += hookElapsed.Nanoseconds()
	p.wallNanos += wallElapsed.Nanoseconds()

	if p.wallNanos == 0 {
		return
	}
	overhead := float64(p.hookNanos) / float64(p.wallNanos)
	if overhead > overheadBudget[p.workload] {
		p.rateHz = max(p.rateHz/2, p.floorHz)
	}
}

// Report returns a snapshot of the profiler's accumulated state.
func (p *Profiler) Report() ProfilerReport {
	p.mu.Lock()
	defer p.mu.Unlock()

	var overhead float64
	if p.wallNanos > 0 {
		overhead = float64(p.hookNanos) / float64(p.wallNanos) * 100
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return ProfilerReport{
		OverheadPercent:      overhead,
		SamplesCollected:     p.samples,
		WorkloadDuration:     time.Duration(p.wallNanos),
		CurrentSampleRateHz:  p.rateHz,
		MemoryAllocatedBytes: mem.Alloc,
	}
}
