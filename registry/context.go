// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import "sync"

// GlobalContext is the shared bag of backing services a set of injected
// globals publish to and discover each other through. A bridge is any
// singleton service one or more globals need: a SessionManager the
// Session and Artifact globals both use, for instance.
type GlobalContext struct {
	mu       sync.RWMutex
	bridges  map[string]any
	creating map[string]*sync.Once
}

// NewGlobalContext constructs an empty GlobalContext.
func NewGlobalContext() *GlobalContext {
	return &GlobalContext{
		bridges:  make(map[string]any),
		creating: make(map[string]*sync.Once),
	}
}

// SetBridge publishes v under name, overwriting any existing bridge of the
// same name.
func (g *GlobalContext) SetBridge(name string, v any) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.bridges[name] = v
}

// GetBridge retrieves the bridge published under name.
func (g *GlobalContext) GetBridge(name string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	v, ok := g.bridges[name]
	return v, ok
}

// GetOrCreate returns the bridge already published under name, or calls
// factory exactly once to construct and publish it. Concurrent callers
// racing on the same name block on the same factory call rather than
// constructing duplicate instances.
func GetOrCreate[T any](g *GlobalContext, name string, factory func() (T, error)) (T, error) {
	g.mu.Lock()
	once, ok := g.creating[name]
	if !ok {
		once = &sync.Once{}
		g.creating[name] = once
	}
	g.mu.Unlock()

	var zero T
	var createErr error
	once.Do(func() {
		v, err := factory()
		if err != nil {
			createErr = err
			return
		}
		g.SetBridge(name, v)
	})
	if createErr != nil {
		return zero, createErr
	}

	v, ok := g.GetBridge(name)
	if !ok {
		return zero, createErr
	}
	typed, ok := v.(T)
	if !ok {
		return zero, createErr
	}
	return typed, nil
}
