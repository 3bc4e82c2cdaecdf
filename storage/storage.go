// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"context"
	"time"

	"github.com/go-a2a/llmkernel/types"
)

// Stats is the generic point-in-time snapshot every backend reports.
type Stats struct {
	Backend     string
	ItemCount   int64
	TotalBytes  int64
	LastWriteAt time.Time
}

// HealthChecker is satisfied by every storage backend.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// StatsProvider is satisfied by every storage backend.
type StatsProvider interface {
	Stats(ctx context.Context) (Stats, error)
}

// KVStore is a tenant-scoped key/value trait.
type KVStore interface {
	HealthChecker
	StatsProvider

	Get(ctx context.Context, scope types.Scope, key string) ([]byte, error)
	Set(ctx context.Context, scope types.Scope, key string, value []byte) error
	Delete(ctx context.Context, scope types.Scope, key string) error
	ListKeys(ctx context.Context, scope types.Scope, prefix string) ([]string, error)
}

// AgentStateStore persists opaque, checksummed, auto-versioned blobs keyed
// by an agent identity.
type AgentStateStore interface {
	HealthChecker
	StatsProvider

	// Save writes data under agentKey, assigning it the next version and a
	// checksum recomputed on every save.
	Save(ctx context.Context, scope types.Scope, agentKey string, data []byte) (version int64, err error)
	// Load reads the latest version under agentKey, verifying its checksum.
	// A checksum mismatch is a kernelerr.Internal error, never silently
	// returned as valid data.
	Load(ctx context.Context, scope types.Scope, agentKey string) ([]byte, error)
}

// WorkflowStatus is the lifecycle state of a persisted workflow run.
type WorkflowStatus int

const (
	WorkflowPending WorkflowStatus = iota
	WorkflowRunning
	WorkflowCompleted
	WorkflowFailed
)

// String returns the status name.
func (s WorkflowStatus) String() string {
	switch s {
	case WorkflowPending:
		return "Pending"
	case WorkflowRunning:
		return "Running"
	case WorkflowCompleted:
		return "Completed"
	case WorkflowFailed:
		return "Failed"
	default:
		return "Pending"
	}
}

// WorkflowState is the persisted snapshot of one workflow run.
type WorkflowState struct {
	WorkflowID  string
	Name        string
	Status      WorkflowStatus
	CurrentStep int
	StateData   map[string]types.Value
	StartedAt   time.Time
	CompletedAt time.Time
}

// WorkflowStateStore persists WorkflowState snapshots keyed by workflow id.
type WorkflowStateStore interface {
	HealthChecker
	StatsProvider

	SaveState(ctx context.Context, scope types.Scope, state WorkflowState) error
	LoadState(ctx context.Context, scope types.Scope, workflowID string) (WorkflowState, error)
}

// ArtifactStorageStats is the per-session stats the artifact store reports
// alongside the generic Stats snapshot.
type ArtifactStorageStats struct {
	Count      int64
	TotalBytes int64
}

// ArtifactStore persists content-addressed, deduplicated artifact blobs.
type ArtifactStore interface {
	HealthChecker
	StatsProvider

	// StoreArtifact deduplicates by content hash: storing identical bytes
	// twice in the same session increments a reference count rather than
	// writing the blob again.
	StoreArtifact(ctx context.Context, scope types.Scope, artifact types.Artifact, payload []byte) (types.ArtifactID, error)
	GetArtifact(ctx context.Context, scope types.Scope, id types.ArtifactID) (types.Artifact, []byte, error)
	DeleteArtifact(ctx context.Context, scope types.Scope, id types.ArtifactID) error
	ListSessionArtifacts(ctx context.Context, scope types.Scope, sessionID types.ID) ([]types.Artifact, error)
	GetStorageStats(ctx context.Context, scope types.Scope, sessionID types.ID) (ArtifactStorageStats, error)
}

// SessionStore persists Session metadata records.
type SessionStore interface {
	HealthChecker
	StatsProvider

	CreateSession(ctx context.Context, scope types.Scope, session types.Session) error
	GetSession(ctx context.Context, scope types.Scope, id types.ID) (types.Session, error)
	UpdateSession(ctx context.Context, scope types.Scope, session types.Session) error
	DeleteSession(ctx context.Context, scope types.Scope, id types.ID) error
	ListActiveSessions(ctx context.Context, scope types.Scope) ([]types.Session, error)
	// CleanupExpired marks every session past its ExpiresAt as Expired and
	// returns the ids it transitioned.
	CleanupExpired(ctx context.Context, scope types.Scope, now time.Time) ([]types.ID, error)
}

// Event is the persisted record an event-log store holds, distinct from
// the live event.Event the hub publishes: it carries the fields the log
// needs to answer correlation/pattern/time-range queries.
type Event struct {
	ID            types.ID
	Topic         string
	CorrelationID string
	Payload       types.Value
	OccurredAt    time.Time
}

// EventLogStore persists a time-partitioned, queryable event log.
type EventLogStore interface {
	HealthChecker
	StatsProvider

	StoreEvent(ctx context.Context, scope types.Scope, ev Event) error
	GetEventsByCorrelationID(ctx context.Context, scope types.Scope, correlationID string) ([]Event, error)
	GetEventsByPattern(ctx context.Context, scope types.Scope, pattern string) ([]Event, error)
	GetEventsByTimeRange(ctx context.Context, scope types.Scope, from, to time.Time) ([]Event, error)
}

// VectorMatch is one ranked result from VectorStore.Search.
type VectorMatch struct {
	ID       string
	Score    float32
	Metadata map[string]types.Value
}

// VectorFilter narrows a search to metadata matching every key/value pair.
type VectorFilter map[string]types.Value

// VectorStore upserts and searches embeddings. Dimensions are declared on
// index creation. vectorstore.Memory rejects every write whose vector
// length differs from the declared dimension; this interface has no way
// to allow a Matryoshka reduction or an expansion. vectorstore.Qdrant
// does no dimension check of its own.
type VectorStore interface {
	HealthChecker
	StatsProvider

	EnsureCollection(ctx context.Context, name string, dims int) error
	Upsert(ctx context.Context, scope types.Scope, collection string, id string, vector []float32, metadata map[string]types.Value) error
	Search(ctx context.Context, scope types.Scope, collection string, query []float32, k int, filter VectorFilter) ([]VectorMatch, error)
	Delete(ctx context.Context, scope types.Scope, collection string, id string) error
}
