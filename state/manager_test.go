// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-a2a/llmkernel/hooks"
	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/state"
	"github.com/go-a2a/llmkernel/storage/memstore"
	"github.com/go-a2a/llmkernel/types"
)

func TestEphemeralWriteSkipsBackend(t *testing.T) {
	kv := memstore.New()
	m := state.New(kv, nil)
	scope := types.Tenant("t")

	require.NoError(t, m.Set(t.Context(), scope, "temp:scratch", types.String("x"), types.Ephemeral))

	_, err := kv.Get(t.Context(), scope, "temp:scratch")
	require.Error(t, err)
	assert.Equal(t, kernelerr.NotFound, kernelerr.KindOf(err))
}

func TestStandardWriteRoundTrips(t *testing.T) {
	kv := memstore.New()
	m := state.New(kv, nil)
	scope := types.Tenant("t")

	require.NoError(t, m.Set(t.Context(), scope, "user:name", types.String("ada"), types.Standard))

	got, err := m.Get(t.Context(), scope, "user:name")
	require.NoError(t, err)
	s, ok := got.AsString()
	require.True(t, ok)
	assert.Equal(t, "ada", s)
}

func TestHookCancelBlocksWrite(t *testing.T) {
	kv := memstore.New()
	bus := hooks.NewNull()
	bus.Register(types.HookDescriptor{
		Name: "blocker", Point: "state.before_write", Priority: types.PriorityNormal,
		Fn: func(types.Value) (types.HookResult, error) {
			return types.CancelResult("policy"), nil
		},
	}, false)
	m := state.New(kv, bus)
	scope := types.Tenant("t")

	err := m.Set(t.Context(), scope, "user:name", types.String("ada"), types.Standard)
	require.Error(t, err)
	assert.Equal(t, kernelerr.PermissionDenied, kernelerr.KindOf(err))

	_, err = kv.Get(t.Context(), scope, "user:name")
	require.Error(t, err)
}

func TestHookModifiedReplacesPayload(t *testing.T) {
	kv := memstore.New()
	bus := hooks.NewNull()
	bus.Register(types.HookDescriptor{
		Name: "redactor", Point: "state.before_write", Priority: types.PriorityNormal,
		Fn: func(types.Value) (types.HookResult, error) {
			return types.ModifiedResult(types.String("[redacted]")), nil
		},
	}, false)
	m := state.New(kv, bus)
	scope := types.Tenant("t")

	require.NoError(t, m.Set(t.Context(), scope, "secret:key", types.String("real-value"), types.Sensitive))

	got, err := m.Get(t.Context(), scope, "secret:key")
	require.NoError(t, err)
	s, ok := got.AsString()
	require.True(t, ok)
	assert.Equal(t, "[redacted]", s)
}

func TestEmptyKeyRejected(t *testing.T) {
	kv := memstore.New()
	m := state.New(kv, nil)

	err := m.Set(t.Context(), types.Tenant("t"), "", types.String("x"), types.Standard)
	require.Error(t, err)
	assert.Equal(t, kernelerr.Validation, kernelerr.KindOf(err))
}

func TestTrustedWriteSkipsHooks(t *testing.T) {
	kv := memstore.New()
	bus := hooks.NewNull()
	called := false
	bus.Register(types.HookDescriptor{
		Name: "watcher", Point: "state.before_write", Priority: types.PriorityNormal,
		Fn: func(types.Value) (types.HookResult, error) {
			called = true
			return types.ContinueResult(), nil
		},
	}, false)
	m := state.New(kv, bus)

	require.NoError(t, m.Set(t.Context(), types.Tenant("t"), "trusted:cfg", types.Bool(true), types.Trusted))
	assert.False(t, called)
}

func TestDelete(t *testing.T) {
	kv := memstore.New()
	m := state.New(kv, nil)
	scope := types.Tenant("t")

	require.NoError(t, m.Set(t.Context(), scope, "k", types.Number(1), types.Standard))
	require.NoError(t, m.Delete(t.Context(), scope, "k", types.Standard))

	_, err := m.Get(t.Context(), scope, "k")
	require.Error(t, err)
}
