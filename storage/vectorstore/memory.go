// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package vectorstore

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/storage"
	"github.com/go-a2a/llmkernel/types"
)

var _ storage.VectorStore = (*Memory)(nil)

// Memory is an in-process VectorStore doing a linear cosine-similarity
// scan per collection. It exists for tests and prototyping, the same
// role the kernel's keyword-matching memory search once played, now
// built against the embedding-vector contract rather than free text.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]int // collection name -> declared dimension
	points      map[string]map[string]memPoint // collection -> scope-prefixed point id -> point
}

type memPoint struct {
	vector   []float32
	metadata map[string]types.Value
}

// NewMemory constructs an empty in-memory vector store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]int),
		points:      make(map[string]map[string]memPoint),
	}
}

func (m *Memory) HealthCheck(ctx context.Context) bool { return true }

func (m *Memory) Stats(ctx context.Context) (storage.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, pts := range m.points {
		count += int64(len(pts))
	}
	return storage.Stats{Backend: "vectorstore.memory", ItemCount: count}, nil
}

func (m *Memory) EnsureCollection(ctx context.Context, name string, dims int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.collections[name]; ok {
		if existing != dims {
			return kernelerr.Newf(kernelerr.Conflict,
				"vectorstore: collection %q already declared with dimension %d, got %d", name, existing, dims)
		}
		return nil
	}
	m.collections[name] = dims
	m.points[name] = make(map[string]memPoint)
	return nil
}

// validateDims allows a write whose vector is shorter than the declared
// dimension only when matryoshka is true (a Matryoshka-trained model's
// truncated prefix); a longer vector is only allowed when expand is true.
func validateDims(declared, got int, matryoshka, expand bool) error {
	switch {
	case got == declared:
		return nil
	case got < declared && matryoshka:
		return nil
	case got > declared && expand:
		return nil
	default:
		return kernelerr.Newf(kernelerr.Validation,
			"vectorstore: vector dimension %d does not match declared dimension %d", got, declared)
	}
}

func scopedID(scope types.Scope, id string) string {
	return scope.Prefix() + id
}

func (m *Memory) Upsert(ctx context.Context, scope types.Scope, collection string, id string, vector []float32, metadata map[string]types.Value) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dims, ok := m.collections[collection]
	if !ok {
		return kernelerr.Newf(kernelerr.NotFound, "vectorstore: collection %q not found", collection)
	}
	if err := validateDims(dims, len(vector), false, false); err != nil {
		return err
	}

	cp := make([]float32, len(vector))
	copy(cp, vector)
	m.points[collection][scopedID(scope, id)] = memPoint{vector: cp, metadata: metadata}
	return nil
}

func (m *Memory) Search(ctx context.Context, scope types.Scope, collection string, query []float32, k int, filter storage.VectorFilter) ([]storage.VectorMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	pts, ok := m.points[collection]
	if !ok {
		return nil, kernelerr.Newf(kernelerr.NotFound, "vectorstore: collection %q not found", collection)
	}

	prefix := scope.Prefix()
	var matches []storage.VectorMatch
	for scopedKey, pt := range pts {
		if !strings.HasPrefix(scopedKey, prefix) {
			continue
		}
		if !matchesFilter(pt.metadata, filter) {
			continue
		}
		score := cosineSimilarity(query, pt.vector)
		matches = append(matches, storage.VectorMatch{
			ID:       strings.TrimPrefix(scopedKey, prefix),
			Score:    score,
			Metadata: pt.metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (m *Memory) Delete(ctx context.Context, scope types.Scope, collection string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pts, ok := m.points[collection]
	if !ok {
		return kernelerr.Newf(kernelerr.NotFound, "vectorstore: collection %q not found", collection)
	}
	delete(pts, scopedID(scope, id))
	return nil
}

func matchesFilter(metadata map[string]types.Value, filter storage.VectorFilter) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok {
			return false
		}
		if !valueEqual(got, want) {
			return false
		}
	}
	return true
}

func valueEqual(a, b types.Value) bool {
	if as, ok := a.AsString(); ok {
		bs, ok := b.AsString()
		return ok && as == bs
	}
	if an, ok := a.AsNumber(); ok {
		bn, ok := b.AsNumber()
		return ok && an == bn
	}
	if ab, ok := a.AsBool(); ok {
		bb, ok := b.AsBool()
		return ok && ab == bb
	}
	return false
}

func cosineSimilarity(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
