// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-a2a/llmkernel/hooks"
	"github.com/go-a2a/llmkernel/session"
	"github.com/go-a2a/llmkernel/storage/memstore"
	"github.com/go-a2a/llmkernel/types"
)

func newManager() *session.Manager {
	return session.New(memstore.New(), hooks.NewNull())
}

func TestCreateProducesActiveSession(t *testing.T) {
	m := newManager()
	sess, err := m.Create(t.Context(), session.CreateOptions{TenantID: "acme"})
	require.NoError(t, err)
	assert.Equal(t, types.SessionActive, sess.Status)
	assert.Equal(t, "acme", sess.TenantID)
}

func TestCreateCancelledByHookDoesNotPersist(t *testing.T) {
	bus := hooks.NewNull()
	bus.Register(types.HookDescriptor{
		Name:     "deny",
		Point:    session.PointCreate,
		Priority: types.PriorityNormal,
		Fn: func(payload types.Value) (types.HookResult, error) {
			return types.CancelResult("quota exceeded"), nil
		},
	}, false)
	m := session.New(memstore.New(), bus)

	_, err := m.Create(t.Context(), session.CreateOptions{TenantID: "acme"})
	require.Error(t, err)
}

func TestSuspendResumeRoundTrip(t *testing.T) {
	m := newManager()
	sess, err := m.Create(t.Context(), session.CreateOptions{TenantID: "acme"})
	require.NoError(t, err)

	suspended, err := m.Suspend(t.Context(), "acme", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionSuspended, suspended.Status)

	// idempotent: suspending again is a no-op success
	again, err := m.Suspend(t.Context(), "acme", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionSuspended, again.Status)

	resumed, err := m.Resume(t.Context(), "acme", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionActive, resumed.Status)
}

func TestCompleteIsTerminal(t *testing.T) {
	m := newManager()
	sess, err := m.Create(t.Context(), session.CreateOptions{TenantID: "acme"})
	require.NoError(t, err)

	completed, err := m.Complete(t.Context(), "acme", sess.ID)
	require.NoError(t, err)
	assert.Equal(t, types.SessionCompleted, completed.Status)

	_, err = m.Suspend(t.Context(), "acme", sess.ID)
	assert.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m := newManager()
	sess, err := m.Create(t.Context(), session.CreateOptions{TenantID: "acme"})
	require.NoError(t, err)

	sess.Metadata = map[string]types.Value{"k": types.String("v")}
	require.NoError(t, m.Save(t.Context(), sess))

	loaded, err := m.Load(t.Context(), "acme", sess.ID)
	require.NoError(t, err)
	v, ok := loaded.Metadata["k"].AsString()
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestExpirationSweepExpiresPastDeadline(t *testing.T) {
	m := newManager()
	sess, err := m.Create(t.Context(), session.CreateOptions{TenantID: "acme", TTL: time.Millisecond})
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, m.StartExpirationSweep(t.Context(), types.Tenant("acme"), 10*time.Millisecond))
	defer m.StopExpirationSweep()

	assert.Eventually(t, func() bool {
		got, err := m.Load(t.Context(), "acme", sess.ID)
		return err == nil && got.Status == types.SessionExpired
	}, time.Second, 10*time.Millisecond)
}
