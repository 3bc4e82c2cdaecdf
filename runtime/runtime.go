// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-a2a/llmkernel/internal/goruntime"
	"github.com/go-a2a/llmkernel/internal/pool"
	"github.com/go-a2a/llmkernel/internal/pyasyncio"
	"github.com/go-a2a/llmkernel/kernelerr"
)

// DefaultWorkers is the worker-pool size used when NumWorkers is zero or
// negative, matching the machine's parallelism.
var DefaultWorkers = runtime.GOMAXPROCS(0)

type insideKeyType struct{}

var insideKey insideKeyType

// Runtime is the process-wide cooperative scheduler. Obtain the shared
// handle with [Global], which constructs it once per process; [New] builds
// independent instances for tests.
type Runtime struct {
	sem       chan struct{}
	startedAt time.Time

	resourcesCreated atomic.Int64
	tasksSpawned     atomic.Int64
}

var (
	globalOnce sync.Once
	globalRT   *Runtime
)

// Global returns the shared runtime handle, constructing it with
// DefaultWorkers on first call. Every subsequent call returns the same
// handle; initialization never fails after the first success.
func Global() *Runtime {
	globalOnce.Do(func() {
		globalRT = New(DefaultWorkers)
	})
	return globalRT
}

// New constructs an independent Runtime with a worker pool of the given
// size. Production code should use [Global]; New exists for tests that
// need isolation from the process-wide singleton.
func New(workers int) *Runtime {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Runtime{
		sem:       make(chan struct{}, workers),
		startedAt: time.Now(),
	}
}

// NewResource runs builder on the runtime's scheduler and returns its
// result. The returned resource is safe to use from any goroutine that
// later calls into the runtime, because it was constructed within this
// scheduler's lifetime rather than a caller-local one.
func NewResource[T any](rt *Runtime, builder func(context.Context) (T, error)) (T, error) {
	ctx := context.WithValue(context.Background(), insideKey, rt)
	v, err := runOnWorker(rt, ctx, builder)
	if err == nil {
		rt.resourcesCreated.Add(1)
	}
	return v, err
}

// Spawn schedules fn to run on the runtime's worker pool and returns a
// handle for awaiting its result. Spawn never blocks the caller: if every
// worker is busy, fn's admission to a worker queues inside the returned
// task rather than blocking Spawn itself.
func Spawn[T any](rt *Runtime, fn func(context.Context) (T, error)) *pyasyncio.Task[T] {
	rt.tasksSpawned.Add(1)
	return pyasyncio.CreateTask(context.Background(), func(ctx context.Context) (T, error) {
		return runOnWorker(rt, ctx, fn)
	})
}

// SpawnNamed is Spawn with a name attached for debugging and monitoring.
func SpawnNamed[T any](rt *Runtime, name string, fn func(context.Context) (T, error)) *pyasyncio.Task[T] {
	rt.tasksSpawned.Add(1)
	return pyasyncio.CreateNamedTask(context.Background(), name, func(ctx context.Context) (T, error) {
		return runOnWorker(rt, ctx, fn)
	})
}

// runOnWorker admits fn to the worker-pool semaphore, tags the context so
// a nested BlockOn call can detect it is already inside the runtime, runs
// fn, and recovers a panic into an error so a spawned task's failure
// never poisons the runtime.
func runOnWorker[T any](rt *Runtime, ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	rt.sem <- struct{}{}
	defer func() { <-rt.sem }()

	ctx = context.WithValue(ctx, insideKey, rt)

	defer func() {
		if r := recover(); r != nil {
			err = kernelerr.Newf(kernelerr.Internal, "runtime: task panicked: %v\n%s", r, captureStack())
		}
	}()
	return fn(ctx)
}

// captureStack renders the calling goroutine's stack using goruntime's
// frame-pointer walker, for attaching to a panic's Internal error without
// paying for runtime.Stack's full buffer-growing allocation dance.
func captureStack() string {
	pc := make([]uintptr, 32)
	n := goruntime.Callers(3, pc)

	b := pool.String.Get()
	defer func() {
		b.Reset()
		pool.String.Put(b)
	}()
	for _, p := range pc[:n] {
		b.WriteString(goruntime.Name(p))
		b.WriteByte('\n')
	}
	return b.String()
}

// BlockOn runs fn to completion on the calling goroutine and returns its
// result. Calling BlockOn from a context already inside the runtime (a
// goroutine running on one of its workers) fails immediately with a
// deadlock-prevention error instead of blocking that worker, which would
// eventually starve the pool.
func BlockOn[T any](ctx context.Context, rt *Runtime, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if existing, ok := ctx.Value(insideKey).(*Runtime); ok && existing == rt {
		return zero, kernelerr.Newf(kernelerr.Internal,
			"runtime: BlockOn called from within the runtime; this would deadlock the worker pool")
	}
	return fn(ctx)
}

// Stats is a point-in-time snapshot of the runtime's counters.
type Stats struct {
	ResourcesCreated int64
	TasksSpawned     int64
	Uptime           time.Duration
	Workers          int
}

// Stats returns a snapshot of the runtime's counters.
func (rt *Runtime) Stats() Stats {
	return Stats{
		ResourcesCreated: rt.resourcesCreated.Load(),
		TasksSpawned:     rt.tasksSpawned.Load(),
		Uptime:           time.Since(rt.startedAt),
		Workers:          cap(rt.sem),
	}
}
