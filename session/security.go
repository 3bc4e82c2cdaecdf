// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"sync"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/types"
)

// sessionRecord is what the SecurityManager remembers about a registered
// session, independent of the full types.Session record the store holds.
type sessionRecord struct {
	tenantID string
	active   bool
}

// SecurityManager enforces cross-session access isolation. Strict mode (the
// default) denies every cross-session access, even between two sessions of
// the same tenant: a caller may only touch its own session. Non-strict mode
// additionally allows access to another session in the same tenant, but
// only while that session is Active.
type SecurityManager struct {
	mu       sync.RWMutex
	strict   bool
	sessions map[types.ID]sessionRecord
}

// NewSecurityManager constructs a SecurityManager. Pass strict=true for the
// spec's default posture.
func NewSecurityManager(strict bool) *SecurityManager {
	return &SecurityManager{
		strict:   strict,
		sessions: make(map[types.ID]sessionRecord),
	}
}

// RegisterSession makes id visible to cross-session access checks under
// tenantID, marked active.
func (m *SecurityManager) RegisterSession(id types.ID, tenantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = sessionRecord{tenantID: tenantID, active: true}
}

// UnregisterSession removes id from the access table; after this call it
// can no longer be the target of a cross-session access.
func (m *SecurityManager) UnregisterSession(id types.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// SetActive updates whether id is currently Active, consulted by non-strict
// access checks (a Suspended or Completed session is never a valid
// cross-session target).
func (m *SecurityManager) SetActive(id types.ID, active bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.sessions[id]; ok {
		rec.active = active
		m.sessions[id] = rec
	}
}

// CanAccessSession reports whether a caller acting as requester may access
// target. A session can always access itself.
func (m *SecurityManager) CanAccessSession(requester types.ID, requesterTenant string, target types.ID) bool {
	if requester == target {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.strict {
		return false
	}

	rec, ok := m.sessions[target]
	return ok && rec.active && rec.tenantID == requesterTenant
}

// ValidateCrossSessionAccess returns a kernelerr.PermissionDenied error when
// requester may not access target.
func (m *SecurityManager) ValidateCrossSessionAccess(requester types.ID, requesterTenant string, target types.ID) error {
	if m.CanAccessSession(requester, requesterTenant, target) {
		return nil
	}
	return kernelerr.Newf(kernelerr.PermissionDenied, "session: %s may not access session %s", requester, target)
}

// ValidateStateScopeAccess applies the same rule to a state scope: a
// non-session scope (Global, Tenant, Custom) is governed elsewhere and
// always passes here, while a Session-kind scope is checked against
// CanAccessSession.
func (m *SecurityManager) ValidateStateScopeAccess(requester types.ID, requesterTenant string, scope types.Scope) error {
	if scope.Kind() != types.ScopeSession {
		return nil
	}
	target, err := types.ParseID(scope.ID())
	if err != nil {
		return kernelerr.Newf(kernelerr.Validation, "session: malformed session scope %q", scope.ID())
	}
	return m.ValidateCrossSessionAccess(requester, requesterTenant, target)
}
