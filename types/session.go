// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import "time"

// SessionStatus is the lifecycle state of a Session.
type SessionStatus int

const (
	// SessionPending is assigned before the session has accepted any
	// activity.
	SessionPending SessionStatus = iota
	// SessionActive sessions accept state writes and artifact uploads.
	SessionActive
	// SessionSuspended sessions are durable but reject writes until resumed.
	SessionSuspended
	// SessionCompleted sessions are terminal; writes are rejected.
	SessionCompleted
	// SessionExpired sessions were reaped by the idle sweep; writes are
	// rejected and the session is eligible for garbage collection.
	SessionExpired
)

// String returns the status name used in log fields and the REPL.
func (s SessionStatus) String() string {
	switch s {
	case SessionPending:
		return "Pending"
	case SessionActive:
		return "Active"
	case SessionSuspended:
		return "Suspended"
	case SessionCompleted:
		return "Completed"
	case SessionExpired:
		return "Expired"
	default:
		return "Pending"
	}
}

// CanTransitionTo reports whether s may move to next under the lifecycle
// Pending -> Active -> {Suspended <-> Active} -> {Completed | Expired}.
func (s SessionStatus) CanTransitionTo(next SessionStatus) bool {
	switch s {
	case SessionPending:
		return next == SessionActive
	case SessionActive:
		return next == SessionSuspended || next == SessionCompleted || next == SessionExpired
	case SessionSuspended:
		return next == SessionActive || next == SessionExpired || next == SessionCompleted
	case SessionCompleted, SessionExpired:
		return false
	default:
		return false
	}
}

// Session is the lifecycle and ownership record for one session. Its
// conversational or working state lives in the state manager under
// ScopeSession(ID); Session itself only carries metadata the session
// store needs to list, expire, and isolate sessions.
type Session struct {
	ID        ID
	TenantID  string
	Status    SessionStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	// ExpiresAt is the deadline the idle sweep enforces; zero means no
	// expiration.
	ExpiresAt time.Time
	// Metadata is caller-supplied, opaque to the session store.
	Metadata map[string]Value
}

// IsTerminal reports whether the session can no longer accept writes and
// will never transition again.
func (s *Session) IsTerminal() bool {
	return s.Status == SessionCompleted || s.Status == SessionExpired
}

// IsExpired reports whether now is past the session's expiry deadline.
// A zero ExpiresAt never expires.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Scope returns the state scope this session's working state lives under.
func (s *Session) Scope() Scope {
	return SessionScope(s.ID.String())
}
