// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package memstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/storage"
	"github.com/go-a2a/llmkernel/types"
)

// Store is a single in-memory backend implementing every storage.* trait
// except VectorStore.
// All state lives behind one mutex; this module favors correctness and
// simple tenant-isolation reasoning over fine-grained locking, since
// memstore's purpose is tests and small deployments, not throughput.
type Store struct {
	mu sync.RWMutex

	kv map[string][]byte // scope-prefixed key -> value

	agentStates map[string]agentState // scope-prefixed key -> state

	workflows map[string]storage.WorkflowState // scope-prefixed workflow id -> state

	sessions map[string]types.Session // scope-prefixed session id -> session

	events []storage.Event // append-only log, filtered by scope on read

	// artifacts indexes metadata by scope-prefixed artifact key.
	artifacts map[string]artifactEntry
	// blobs is keyed by content hash alone (content-addressed, shared
	// across sessions); refCount tracks how many artifact entries point at
	// it so deletion can free it exactly when the last reference goes away.
	blobs map[string]blob

	lastWriteAt time.Time
}

type agentState struct {
	data     []byte
	version  int64
	checksum string
}

type artifactEntry struct {
	meta        types.Artifact
	contentHash string
}

type blob struct {
	data     []byte
	refCount int
}

var (
	_ storage.KVStore            = (*Store)(nil)
	_ storage.AgentStateStore    = (*Store)(nil)
	_ storage.WorkflowStateStore = (*Store)(nil)
	_ storage.SessionStore       = (*Store)(nil)
	_ storage.ArtifactStore      = (*Store)(nil)
	_ storage.EventLogStore      = (*Store)(nil)
)

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		kv:          make(map[string][]byte),
		agentStates: make(map[string]agentState),
		workflows:   make(map[string]storage.WorkflowState),
		sessions:    make(map[string]types.Session),
		artifacts:   make(map[string]artifactEntry),
		blobs:       make(map[string]blob),
	}
}

func scopedKey(scope types.Scope, key string) string {
	return scope.Prefix() + key
}

func checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HealthCheck always reports healthy; memstore has no external dependency
// that can fail independently of the process itself.
func (s *Store) HealthCheck(ctx context.Context) bool { return true }

// Stats returns a snapshot across every trait's data held in this store.
func (s *Store) Stats(ctx context.Context) (storage.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totalBytes int64
	for _, v := range s.kv {
		totalBytes += int64(len(v))
	}
	for _, b := range s.blobs {
		totalBytes += int64(len(b.data))
	}
	return storage.Stats{
		Backend:     "memstore",
		ItemCount:   int64(len(s.kv) + len(s.artifacts) + len(s.sessions) + len(s.workflows)),
		TotalBytes:  totalBytes,
		LastWriteAt: s.lastWriteAt,
	}, nil
}

// --- KVStore ---

func (s *Store) Get(ctx context.Context, scope types.Scope, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.kv[scopedKey(scope, key)]
	if !ok {
		return nil, kernelerr.Newf(kernelerr.NotFound, "memstore: key %q not found", key)
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *Store) Set(ctx context.Context, scope types.Scope, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]byte, len(value))
	copy(cp, value)
	s.kv[scopedKey(scope, key)] = cp
	s.lastWriteAt = time.Now()
	return nil
}

func (s *Store) Delete(ctx context.Context, scope types.Scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.kv, scopedKey(scope, key))
	return nil
}

func (s *Store) ListKeys(ctx context.Context, scope types.Scope, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	full := scopedKey(scope, prefix)
	var out []string
	for k := range s.kv {
		if strings.HasPrefix(k, full) {
			out = append(out, strings.TrimPrefix(k, scope.Prefix()))
		}
	}
	return out, nil
}

// --- AgentStateStore ---

func (s *Store) Save(ctx context.Context, scope types.Scope, agentKey string, data []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopedKey(scope, agentKey)
	next := s.agentStates[key].version + 1
	cp := make([]byte, len(data))
	copy(cp, data)
	s.agentStates[key] = agentState{data: cp, version: next, checksum: checksum(cp)}
	s.lastWriteAt = time.Now()
	return next, nil
}

func (s *Store) Load(ctx context.Context, scope types.Scope, agentKey string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.agentStates[scopedKey(scope, agentKey)]
	if !ok {
		return nil, kernelerr.Newf(kernelerr.NotFound, "memstore: agent state %q not found", agentKey)
	}
	if checksum(st.data) != st.checksum {
		return nil, kernelerr.Newf(kernelerr.Internal, "memstore: checksum mismatch for agent state %q", agentKey)
	}
	out := make([]byte, len(st.data))
	copy(out, st.data)
	return out, nil
}

// --- WorkflowStateStore ---

func (s *Store) SaveState(ctx context.Context, scope types.Scope, state storage.WorkflowState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workflows[scopedKey(scope, state.WorkflowID)] = state
	s.lastWriteAt = time.Now()
	return nil
}

func (s *Store) LoadState(ctx context.Context, scope types.Scope, workflowID string) (storage.WorkflowState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.workflows[scopedKey(scope, workflowID)]
	if !ok {
		return storage.WorkflowState{}, kernelerr.Newf(kernelerr.NotFound, "memstore: workflow %q not found", workflowID)
	}
	return st, nil
}

// --- SessionStore ---

func (s *Store) CreateSession(ctx context.Context, scope types.Scope, session types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopedKey(scope, session.ID.String())
	if _, exists := s.sessions[key]; exists {
		return kernelerr.Newf(kernelerr.Conflict, "memstore: session %s already exists", session.ID)
	}
	s.sessions[key] = session
	s.lastWriteAt = time.Now()
	return nil
}

func (s *Store) GetSession(ctx context.Context, scope types.Scope, id types.ID) (types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[scopedKey(scope, id.String())]
	if !ok {
		return types.Session{}, kernelerr.Newf(kernelerr.NotFound, "memstore: session %s not found", id)
	}
	return sess, nil
}

func (s *Store) UpdateSession(ctx context.Context, scope types.Scope, session types.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopedKey(scope, session.ID.String())
	if _, ok := s.sessions[key]; !ok {
		return kernelerr.Newf(kernelerr.NotFound, "memstore: session %s not found", session.ID)
	}
	s.sessions[key] = session
	s.lastWriteAt = time.Now()
	return nil
}

func (s *Store) DeleteSession(ctx context.Context, scope types.Scope, id types.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, scopedKey(scope, id.String()))
	return nil
}

func (s *Store) ListActiveSessions(ctx context.Context, scope types.Scope) ([]types.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []types.Session
	prefix := scope.Prefix()
	for k, sess := range s.sessions {
		if strings.HasPrefix(k, prefix) && sess.Status == types.SessionActive {
			out = append(out, sess)
		}
	}
	return out, nil
}

func (s *Store) CleanupExpired(ctx context.Context, scope types.Scope, now time.Time) ([]types.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := scope.Prefix()
	var expired []types.ID
	for k, sess := range s.sessions {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if sess.IsTerminal() {
			continue
		}
		if sess.IsExpired(now) {
			sess.Status = types.SessionExpired
			s.sessions[k] = sess
			expired = append(expired, sess.ID)
		}
	}
	return expired, nil
}

// --- ArtifactStore ---

func (s *Store) StoreArtifact(ctx context.Context, scope types.Scope, artifact types.Artifact, payload []byte) (types.ArtifactID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash := checksum(payload)
	artifact.ID.ContentHash = hash

	key := scopedKey(scope, artifact.ID.String())
	if _, exists := s.artifacts[key]; exists {
		return artifact.ID, kernelerr.Newf(kernelerr.Conflict, "memstore: artifact %s already exists", artifact.ID)
	}

	if b, ok := s.blobs[hash]; ok {
		b.refCount++
		s.blobs[hash] = b
	} else {
		cp := make([]byte, len(payload))
		copy(cp, payload)
		s.blobs[hash] = blob{data: cp, refCount: 1}
	}

	s.artifacts[key] = artifactEntry{meta: artifact, contentHash: hash}
	s.lastWriteAt = time.Now()
	return artifact.ID, nil
}

func (s *Store) GetArtifact(ctx context.Context, scope types.Scope, id types.ArtifactID) (types.Artifact, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.artifacts[scopedKey(scope, id.String())]
	if !ok {
		return types.Artifact{}, nil, kernelerr.Newf(kernelerr.NotFound, "memstore: artifact %s not found", id)
	}
	b, ok := s.blobs[entry.contentHash]
	if !ok {
		return types.Artifact{}, nil, kernelerr.Newf(kernelerr.Internal, "memstore: missing blob for artifact %s", id)
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return entry.meta, out, nil
}

func (s *Store) DeleteArtifact(ctx context.Context, scope types.Scope, id types.ArtifactID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scopedKey(scope, id.String())
	entry, ok := s.artifacts[key]
	if !ok {
		return kernelerr.Newf(kernelerr.NotFound, "memstore: artifact %s not found", id)
	}
	delete(s.artifacts, key)

	if b, ok := s.blobs[entry.contentHash]; ok {
		b.refCount--
		if b.refCount <= 0 {
			delete(s.blobs, entry.contentHash)
		} else {
			s.blobs[entry.contentHash] = b
		}
	}
	return nil
}

func (s *Store) ListSessionArtifacts(ctx context.Context, scope types.Scope, sessionID types.ID) ([]types.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := scope.Prefix()
	var out []types.Artifact
	for k, entry := range s.artifacts {
		if strings.HasPrefix(k, prefix) && entry.meta.ID.SessionID == sessionID {
			out = append(out, entry.meta)
		}
	}
	return out, nil
}

func (s *Store) GetStorageStats(ctx context.Context, scope types.Scope, sessionID types.ID) (storage.ArtifactStorageStats, error) {
	artifacts, err := s.ListSessionArtifacts(ctx, scope, sessionID)
	if err != nil {
		return storage.ArtifactStorageStats{}, err
	}
	stats := storage.ArtifactStorageStats{Count: int64(len(artifacts))}
	for _, a := range artifacts {
		stats.TotalBytes += a.Size
	}
	return stats, nil
}

// --- EventLogStore ---

func (s *Store) StoreEvent(ctx context.Context, scope types.Scope, ev storage.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ev.Topic = scope.Prefix() + ev.Topic
	s.events = append(s.events, ev)
	s.lastWriteAt = time.Now()
	return nil
}

func (s *Store) GetEventsByCorrelationID(ctx context.Context, scope types.Scope, correlationID string) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := scope.Prefix()
	var out []storage.Event
	for _, ev := range s.events {
		if strings.HasPrefix(ev.Topic, prefix) && ev.CorrelationID == correlationID {
			out = append(out, stripScope(ev, prefix))
		}
	}
	return out, nil
}

func (s *Store) GetEventsByPattern(ctx context.Context, scope types.Scope, pattern string) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := scope.Prefix()
	var out []storage.Event
	for _, ev := range s.events {
		if !strings.HasPrefix(ev.Topic, prefix) {
			continue
		}
		topic := strings.TrimPrefix(ev.Topic, prefix)
		if matchesPattern(pattern, topic) {
			out = append(out, stripScope(ev, prefix))
		}
	}
	return out, nil
}

func (s *Store) GetEventsByTimeRange(ctx context.Context, scope types.Scope, from, to time.Time) ([]storage.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := scope.Prefix()
	var out []storage.Event
	for _, ev := range s.events {
		if strings.HasPrefix(ev.Topic, prefix) && !ev.OccurredAt.Before(from) && !ev.OccurredAt.After(to) {
			out = append(out, stripScope(ev, prefix))
		}
	}
	return out, nil
}

func stripScope(ev storage.Event, prefix string) storage.Event {
	ev.Topic = strings.TrimPrefix(ev.Topic, prefix)
	return ev
}

// matchesPattern implements the exact/prefix-wildcard/global dispatch
// pattern also used by the event bus: "*" matches everything, "a.*"
// matches "a." followed by anything, anything else must match exactly.
func matchesPattern(pattern, topic string) bool {
	if pattern == "*" {
		return true
	}
	if strings.HasSuffix(pattern, ".*") {
		return strings.HasPrefix(topic, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == topic
}
