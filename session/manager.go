// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/go-a2a/llmkernel/hooks"
	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/pkg/logging"
	"github.com/go-a2a/llmkernel/storage"
	"github.com/go-a2a/llmkernel/types"
)

// Hook points fired during the session lifecycle.
const (
	PointCreate   = "session.create"
	PointSuspend  = "session.suspend"
	PointResume   = "session.resume"
	PointComplete = "session.complete"
)

// DefaultExpirationSweepInterval is how often Manager.StartExpirationSweep
// runs CleanupExpired when the caller does not override it.
const DefaultExpirationSweepInterval = time.Hour

// CreateOptions configures Manager.Create.
type CreateOptions struct {
	TenantID string
	TTL      time.Duration // zero means never expires
	Metadata map[string]types.Value
}

// Manager owns the session lifecycle: creation, suspend/resume, completion,
// and a periodic expiration sweep. It keeps a cache of sessions it believes
// are Active so Suspend/Resume/Complete don't need a round trip to the
// store just to check the current status, and it feeds that cache into a
// SecurityManager so cross-session access checks stay current.
type Manager struct {
	store storage.SessionStore
	hooks *hooks.Bus
	sec   *SecurityManager

	mu    sync.RWMutex
	cache map[types.ID]types.Session

	cron    *cron.Cron
	sweepID cron.EntryID
}

// New constructs a Manager. bus may be nil, in which case lifecycle hooks
// are never fired. The SecurityManager defaults to strict isolation; use
// WithSecurityManager to override.
func New(store storage.SessionStore, bus *hooks.Bus) *Manager {
	return &Manager{
		store: store,
		hooks: bus,
		sec:   NewSecurityManager(true),
		cache: make(map[types.ID]types.Session),
	}
}

// WithSecurityManager replaces the Manager's SecurityManager, returning the
// same Manager for chaining at construction time.
func (m *Manager) WithSecurityManager(sec *SecurityManager) *Manager {
	m.sec = sec
	return m
}

// Security returns the Manager's SecurityManager for cross-session access
// checks performed by other components (state, artifact).
func (m *Manager) Security() *SecurityManager { return m.sec }

// CompleteAllActive completes every session this Manager currently
// believes is Active or Suspended for tenantID, used by the kernel
// dispatcher's shutdown path to end every session it owns before exiting.
// A session already Completed or Expired is left untouched.
func (m *Manager) CompleteAllActive(ctx context.Context, tenantID string) error {
	m.mu.RLock()
	var ids []types.ID
	for id, sess := range m.cache {
		if sess.TenantID == tenantID && (sess.Status == types.SessionActive || sess.Status == types.SessionSuspended) {
			ids = append(ids, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range ids {
		if _, err := m.Complete(ctx, tenantID, id); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) fire(ctx context.Context, point string, sess types.Session) (types.HookResult, error) {
	if m.hooks == nil {
		return types.ContinueResult(), nil
	}
	payload, err := sessionPayload(sess)
	if err != nil {
		return types.HookResult{}, err
	}
	return m.hooks.Fire(ctx, point, payload)
}

func sessionPayload(sess types.Session) (types.Value, error) {
	obj := map[string]types.Value{
		"id":     types.String(sess.ID.String()),
		"tenant": types.String(sess.TenantID),
		"status": types.Number(float64(sess.Status)),
	}
	return types.Object(obj), nil
}

// Create begins a new session. It runs the PointCreate hook before
// persisting anything; a Cancel result aborts creation with no storage
// side effect (cancel-rollback). On success the session is persisted
// Active and tracked in the active cache.
func (m *Manager) Create(ctx context.Context, opts CreateOptions) (types.Session, error) {
	now := time.Now()
	sess := types.Session{
		ID:        types.NewID(),
		TenantID:  opts.TenantID,
		Status:    types.SessionPending,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  opts.Metadata,
	}
	if opts.TTL > 0 {
		sess.ExpiresAt = now.Add(opts.TTL)
	}

	result, err := m.fire(ctx, PointCreate, sess)
	if err != nil {
		return types.Session{}, err
	}
	if result.Kind == types.Cancel {
		return types.Session{}, kernelerr.Newf(kernelerr.PermissionDenied, "session: create cancelled: %s", result.CancelMsg)
	}

	if !sess.Status.CanTransitionTo(types.SessionActive) {
		return types.Session{}, kernelerr.Newf(kernelerr.Internal, "session: %s cannot transition Pending->Active", sess.ID)
	}
	sess.Status = types.SessionActive
	sess.UpdatedAt = time.Now()

	scope := types.Tenant(sess.TenantID)
	if err := m.store.CreateSession(ctx, scope, sess); err != nil {
		return types.Session{}, err
	}

	m.mu.Lock()
	m.cache[sess.ID] = sess
	m.mu.Unlock()
	m.sec.RegisterSession(sess.ID, sess.TenantID)

	logging.FromContext(ctx).Info("session created", "session_id", sess.ID.String(), "tenant_id", sess.TenantID)
	return sess, nil
}

// Suspend transitions id from Active to Suspended. Calling Suspend on an
// already Suspended session is a no-op success (idempotent).
func (m *Manager) Suspend(ctx context.Context, tenantID string, id types.ID) (types.Session, error) {
	return m.transition(ctx, tenantID, id, types.SessionSuspended, PointSuspend, false)
}

// Resume transitions id from Suspended back to Active. Calling Resume on an
// already Active session is a no-op success (idempotent).
func (m *Manager) Resume(ctx context.Context, tenantID string, id types.ID) (types.Session, error) {
	return m.transition(ctx, tenantID, id, types.SessionActive, PointResume, true)
}

func (m *Manager) transition(ctx context.Context, tenantID string, id types.ID, next types.SessionStatus, point string, activate bool) (types.Session, error) {
	sess, err := m.get(ctx, tenantID, id)
	if err != nil {
		return types.Session{}, err
	}
	if sess.Status == next {
		return sess, nil // idempotent
	}
	if !sess.Status.CanTransitionTo(next) {
		return types.Session{}, kernelerr.Newf(kernelerr.Conflict, "session: %s cannot transition %v->%v", id, sess.Status, next)
	}

	sess.Status = next
	sess.UpdatedAt = time.Now()
	if _, err := m.fire(ctx, point, sess); err != nil {
		return types.Session{}, err
	}

	if err := m.store.UpdateSession(ctx, types.Tenant(tenantID), sess); err != nil {
		return types.Session{}, err
	}

	m.mu.Lock()
	m.cache[id] = sess
	m.mu.Unlock()
	m.sec.SetActive(id, activate)

	return sess, nil
}

// Complete transitions id to the terminal Completed state, fires the
// PointComplete hook, persists the change, and removes id from the
// security table (it can never again be the target of a cross-session
// access check).
func (m *Manager) Complete(ctx context.Context, tenantID string, id types.ID) (types.Session, error) {
	sess, err := m.get(ctx, tenantID, id)
	if err != nil {
		return types.Session{}, err
	}
	if !sess.Status.CanTransitionTo(types.SessionCompleted) {
		return types.Session{}, kernelerr.Newf(kernelerr.Conflict, "session: %s cannot complete from %v", id, sess.Status)
	}

	sess.Status = types.SessionCompleted
	sess.UpdatedAt = time.Now()
	if _, err := m.fire(ctx, PointComplete, sess); err != nil {
		return types.Session{}, err
	}

	if err := m.store.UpdateSession(ctx, types.Tenant(tenantID), sess); err != nil {
		return types.Session{}, err
	}

	m.mu.Lock()
	m.cache[id] = sess
	m.mu.Unlock()
	m.sec.UnregisterSession(id)

	return sess, nil
}

// Save persists sess as-is, bypassing lifecycle hooks. Used for full
// snapshot writes (e.g. metadata updates that don't change status).
func (m *Manager) Save(ctx context.Context, sess types.Session) error {
	if err := m.store.UpdateSession(ctx, types.Tenant(sess.TenantID), sess); err != nil {
		return err
	}
	m.mu.Lock()
	m.cache[sess.ID] = sess
	m.mu.Unlock()
	return nil
}

// Load reads a session's current snapshot, consulting the in-process cache
// before the store.
func (m *Manager) Load(ctx context.Context, tenantID string, id types.ID) (types.Session, error) {
	return m.get(ctx, tenantID, id)
}

func (m *Manager) get(ctx context.Context, tenantID string, id types.ID) (types.Session, error) {
	m.mu.RLock()
	if sess, ok := m.cache[id]; ok {
		m.mu.RUnlock()
		return sess, nil
	}
	m.mu.RUnlock()

	sess, err := m.store.GetSession(ctx, types.Tenant(tenantID), id)
	if err != nil {
		return types.Session{}, err
	}
	m.mu.Lock()
	m.cache[id] = sess
	m.mu.Unlock()
	return sess, nil
}

// StartExpirationSweep schedules a periodic CleanupExpired run against
// scope using robfig/cron. An interval of zero uses
// DefaultExpirationSweepInterval. Calling it twice replaces the previous
// schedule.
func (m *Manager) StartExpirationSweep(ctx context.Context, scope types.Scope, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultExpirationSweepInterval
	}

	if m.cron != nil {
		m.cron.Remove(m.sweepID)
	} else {
		m.cron = cron.New()
	}

	spec := "@every " + interval.String()
	id, err := m.cron.AddFunc(spec, func() {
		expired, err := m.store.CleanupExpired(ctx, scope, time.Now())
		if err != nil {
			logging.FromContext(ctx).Error("session expiration sweep failed", "error", err)
			return
		}
		m.mu.Lock()
		for _, id := range expired {
			if sess, ok := m.cache[id]; ok {
				sess.Status = types.SessionExpired
				m.cache[id] = sess
			}
		}
		m.mu.Unlock()
		for _, id := range expired {
			m.sec.UnregisterSession(id)
		}
	})
	if err != nil {
		return kernelerr.New(kernelerr.Internal, err)
	}
	m.sweepID = id
	m.cron.Start()
	return nil
}

// StopExpirationSweep stops the scheduled sweep started by
// StartExpirationSweep, if any.
func (m *Manager) StopExpirationSweep() {
	if m.cron != nil {
		m.cron.Stop()
	}
}
