// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package pool provides strongly-typed object pooling with generic support and predefined pools for common types.
//
// The pool package wraps [sync.Pool] behind a generic [Pool][T], giving
// callers type-safe Get/Put without a type assertion at every call site.
// It ships two ready-made instances, Buffer and String, for the kernel's
// own buffer-heavy hot paths.
//
// # Basic Usage
//
// Creating a pool for a custom type:
//
//	type scratch struct {
//		data []byte
//	}
//
//	scratchPool := pool.New(func() *scratch {
//		return &scratch{data: make([]byte, 0, 4096)}
//	})
//
//	s := scratchPool.Get()
//	defer scratchPool.Put(s)
//
// # In the Kernel: Panic Stack Rendering
//
// runtime.captureStack (in the top-level runtime package) reuses a
// [*strings.Builder] from [String] every time a task's recovered panic
// needs its stack trace rendered into the resulting kernelerr.Internal
// error, instead of allocating a fresh builder per panic:
//
//	func captureStack() string {
//		pc := make([]uintptr, 32)
//		n := goruntime.Callers(3, pc)
//
//		b := pool.String.Get()
//		defer func() {
//			b.Reset()
//			pool.String.Put(b)
//		}()
//		for _, p := range pc[:n] {
//			b.WriteString(goruntime.Name(p))
//			b.WriteByte('\n')
//		}
//		return b.String()
//	}
//
// # Thread Safety
//
// All pool operations are safe for concurrent use from multiple
// goroutines, inheriting sync.Pool's own concurrency guarantees.
//
// # Best Practices
//
//  1. Always Reset the pooled object before returning it with Put
//  2. Put inside a defer so a panic between Get and use doesn't leak the slot
//  3. Never read from an object after it has been Put back
//  4. Only pool objects whose construction cost justifies the bookkeeping —
//     a *strings.Builder reused on every panic-recovery path qualifies; a
//     bare int or empty struct does not
package pool
