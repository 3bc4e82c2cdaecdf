// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/storage"
	"github.com/go-a2a/llmkernel/types"
)

// DefaultCompressionThreshold is the payload size, in bytes, above which
// Manager.Store compresses the payload before handing it to the backing
// store.
const DefaultCompressionThreshold = 4096

// Manager stores and retrieves artifacts, adding sequence assignment and
// transparent compression on top of a storage.ArtifactStore.
type Manager struct {
	store     storage.ArtifactStore
	threshold int

	enc *zstd.Encoder
	dec *zstd.Decoder

	mu   sync.Mutex
	seqs map[types.ID]*atomic.Int64 // session id -> next sequence counter
}

// Option configures a Manager at construction time.
type Option func(*Manager)

// WithCompressionThreshold overrides DefaultCompressionThreshold.
func WithCompressionThreshold(bytes int) Option {
	return func(m *Manager) { m.threshold = bytes }
}

// New constructs a Manager backed by store.
func New(store storage.ArtifactStore, opts ...Option) (*Manager, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, kernelerr.New(kernelerr.Internal, err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, kernelerr.New(kernelerr.Internal, err)
	}

	m := &Manager{
		store:     store,
		threshold: DefaultCompressionThreshold,
		enc:       enc,
		dec:       dec,
		seqs:      make(map[types.ID]*atomic.Int64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Close releases the Manager's compressor resources.
func (m *Manager) Close() {
	m.enc.Close()
	m.dec.Close()
}

// StoreOptions configures Manager.Store.
type StoreOptions struct {
	Name     string
	MimeType string
	Type     types.ArtifactType
	Tags     []string
	Metadata map[string]types.Value
}

// Store writes payload as a new artifact belonging to sessionID,
// transparently compressing it when it is larger than Manager's compression
// threshold. The returned Artifact's Size is always the original,
// uncompressed length.
func (m *Manager) Store(ctx context.Context, scope types.Scope, sessionID types.ID, payload []byte, opts StoreOptions) (types.Artifact, error) {
	seq, err := m.nextSequence(ctx, scope, sessionID)
	if err != nil {
		return types.Artifact{}, err
	}

	stored := payload
	compressed := false
	if len(payload) > m.threshold {
		stored = m.enc.EncodeAll(payload, make([]byte, 0, len(payload)))
		compressed = true
	}

	art := types.Artifact{
		ID: types.ArtifactID{
			SessionID: sessionID,
			Sequence:  seq,
		},
		Type:       opts.Type,
		Name:       opts.Name,
		MimeType:   opts.MimeType,
		Size:       int64(len(payload)),
		Compressed: compressed,
		Tags:       opts.Tags,
		CreatedAt:  time.Now(),
		Metadata:   opts.Metadata,
	}

	id, err := m.store.StoreArtifact(ctx, scope, art, stored)
	if err != nil {
		return types.Artifact{}, err
	}
	art.ID = id
	return art, nil
}

// Get retrieves an artifact, transparently decompressing its payload if it
// was stored compressed.
func (m *Manager) Get(ctx context.Context, scope types.Scope, id types.ArtifactID) (types.Artifact, []byte, error) {
	art, payload, err := m.store.GetArtifact(ctx, scope, id)
	if err != nil {
		return types.Artifact{}, nil, err
	}
	if !art.Compressed {
		return art, payload, nil
	}
	raw, err := m.dec.DecodeAll(payload, make([]byte, 0, art.Size))
	if err != nil {
		return types.Artifact{}, nil, kernelerr.New(kernelerr.Internal, err)
	}
	return art, raw, nil
}

// Delete removes an artifact.
func (m *Manager) Delete(ctx context.Context, scope types.Scope, id types.ArtifactID) error {
	return m.store.DeleteArtifact(ctx, scope, id)
}

// QueryOptions narrows ListBySession's results. A zero-valued field in
// each pair is not applied as a filter.
type QueryOptions struct {
	Type    types.ArtifactType
	HasType bool
	Tag     string
	MinSize int64
	MaxSize int64 // zero means no upper bound
}

// ListBySession returns sessionID's artifacts, optionally filtered by
// opts.
func (m *Manager) ListBySession(ctx context.Context, scope types.Scope, sessionID types.ID, opts QueryOptions) ([]types.Artifact, error) {
	all, err := m.store.ListSessionArtifacts(ctx, scope, sessionID)
	if err != nil {
		return nil, err
	}

	out := make([]types.Artifact, 0, len(all))
	for _, a := range all {
		if opts.HasType && a.Type != opts.Type {
			continue
		}
		if opts.Tag != "" && !a.HasTag(opts.Tag) {
			continue
		}
		if opts.MinSize > 0 && a.Size < opts.MinSize {
			continue
		}
		if opts.MaxSize > 0 && a.Size > opts.MaxSize {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// Stats returns sessionID's aggregate storage statistics.
func (m *Manager) Stats(ctx context.Context, scope types.Scope, sessionID types.ID) (storage.ArtifactStorageStats, error) {
	return m.store.GetStorageStats(ctx, scope, sessionID)
}

func (m *Manager) nextSequence(ctx context.Context, scope types.Scope, sessionID types.ID) (int64, error) {
	m.mu.Lock()
	counter, ok := m.seqs[sessionID]
	if !ok {
		existing, err := m.store.ListSessionArtifacts(ctx, scope, sessionID)
		if err != nil {
			m.mu.Unlock()
			return 0, err
		}
		counter = &atomic.Int64{}
		counter.Store(int64(len(existing)))
		m.seqs[sessionID] = counter
	}
	m.mu.Unlock()

	return counter.Add(1), nil
}
