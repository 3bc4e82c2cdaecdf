// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"sort"

	deepcopy "github.com/tiendc/go-deepcopy"

	"github.com/go-a2a/llmkernel/kernelerr"
)

// Well-known global names. A registration is not required to use one of
// these, but every built-in injected capability does.
const (
	GlobalAgent     = "Agent"
	GlobalTool      = "Tool"
	GlobalWorkflow  = "Workflow"
	GlobalSession   = "Session"
	GlobalState     = "State"
	GlobalProvider  = "Provider"
	GlobalJSON      = "JSON"
	GlobalStreaming = "Streaming"
	GlobalDebug     = "Debug"
	GlobalHook      = "Hook"
	GlobalEvent     = "Event"
)

// Inject installs a global's capability into gctx. It is called once per
// fresh script context, in the registry's dependency order.
type Inject func(gctx *GlobalContext) error

// Global describes one capability injectable into a script context.
type Global struct {
	Name         string
	Description  string
	Dependencies []string
	Required     bool
	Version      string
	Inject       Inject
}

// Builder accumulates Global registrations before Build performs the
// dependency-ordered topological sort.
type Builder struct {
	globals map[string]Global
	order   []string // registration order, used to break sort ties deterministically
}

// NewBuilder constructs an empty Builder.
func NewBuilder() *Builder {
	return &Builder{globals: make(map[string]Global)}
}

// Register adds g to the builder. Registering the same name twice replaces
// the earlier registration.
func (b *Builder) Register(g Global) {
	if _, exists := b.globals[g.Name]; !exists {
		b.order = append(b.order, g.Name)
	}
	b.globals[g.Name] = g
}

// Build performs the dependency-ordered topological sort and returns an
// immutable Registry. A missing required dependency or a dependency cycle
// fails the build with a named error.
func (b *Builder) Build() (*Registry, error) {
	for _, g := range b.globals {
		for _, dep := range g.Dependencies {
			if _, ok := b.globals[dep]; !ok {
				return nil, kernelerr.Newf(kernelerr.Validation, "registry: %s depends on unregistered global %q", g.Name, dep)
			}
		}
	}

	const (
		white = 0 // unvisited
		gray  = 1 // in progress
		black = 2 // done
	)
	color := make(map[string]int, len(b.globals))
	var sorted []string

	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return kernelerr.Newf(kernelerr.Validation, "registry: circular dependency detected at global %q", name)
		}
		color[name] = gray
		g := b.globals[name]
		deps := append([]string(nil), g.Dependencies...)
		sort.Strings(deps)
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[name] = black
		sorted = append(sorted, name)
		return nil
	}

	for _, name := range b.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	globals := make([]Global, 0, len(sorted))
	byName := make(map[string]Global, len(sorted))
	for _, name := range sorted {
		// Deep-copy each Global so the Builder's caller mutating a
		// Dependencies slice after Build can't reach into the now-immutable
		// Registry.
		var g Global
		if err := deepcopy.Copy(&g, b.globals[name]); err != nil {
			return nil, kernelerr.New(kernelerr.Internal, err)
		}
		globals = append(globals, g)
		byName[name] = g
	}

	return &Registry{globals: globals, byName: byName}, nil
}

// Registry is the immutable, dependency-ordered set of globals produced by
// Builder.Build.
type Registry struct {
	globals []Global
	byName  map[string]Global
}

// Globals returns every registered global in injection order: a global
// always appears after everything it depends on.
func (r *Registry) Globals() []Global {
	return append([]Global(nil), r.globals...)
}

// Get looks up a global by name.
func (r *Registry) Get(name string) (Global, bool) {
	g, ok := r.byName[name]
	return g, ok
}

// InjectAll runs every global's Inject routine, in order, against gctx.
// It stops at the first error, wrapped to name the offending global.
func (r *Registry) InjectAll(gctx *GlobalContext) error {
	for _, g := range r.globals {
		if g.Inject == nil {
			continue
		}
		if err := g.Inject(gctx); err != nil {
			return fmt.Errorf("registry: injecting %s: %w", g.Name, err)
		}
	}
	return nil
}
