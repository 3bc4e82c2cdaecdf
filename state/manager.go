// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"context"

	"github.com/go-a2a/llmkernel/hooks"
	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/pkg/logging"
	"github.com/go-a2a/llmkernel/storage"
	"github.com/go-a2a/llmkernel/types"
)

// Manager is the typed front-end over a storage.KVStore, dispatching each
// write through the phases its types.Class requires.
type Manager struct {
	kv    storage.KVStore
	hooks *hooks.Bus
}

// New constructs a Manager over kv. hooks may be nil, in which case the
// hook phase is skipped for every class.
func New(kv storage.KVStore, bus *hooks.Bus) *Manager {
	return &Manager{kv: kv, hooks: bus}
}

// Get reads key from scope, decoding it as a types.Value.
func (m *Manager) Get(ctx context.Context, scope types.Scope, key string) (types.Value, error) {
	raw, err := m.kv.Get(ctx, scope, key)
	if err != nil {
		return types.Null(), err
	}
	var v types.Value
	if err := unmarshalValue(raw, &v); err != nil {
		return types.Null(), kernelerr.New(kernelerr.Internal, err)
	}
	return v, nil
}

// Set writes value under key in scope, running the phases class requires.
// Ephemeral writes return nil without touching the backend.
func (m *Manager) Set(ctx context.Context, scope types.Scope, key string, value types.Value, class types.Class) error {
	logger := logging.FromContext(ctx)

	if !class.Persists() {
		logger.Debug("state: ephemeral write skipped", "key", key, "class", class)
		return nil
	}

	if class.RunsValidation() {
		if err := validate(key, value); err != nil {
			return err
		}
	}

	payload := value
	if m.hooks != nil && class.RunsHooks() {
		result, err := m.hooks.Fire(ctx, "state.before_write", hookPayload(scope, key, value))
		if err != nil {
			return err
		}
		switch result.Kind {
		case types.Cancel:
			return kernelerr.Newf(kernelerr.PermissionDenied, "state: write to %q cancelled: %s", key, result.CancelMsg)
		case types.Modified:
			payload = result.Payload
		}
	}

	if class.RunsRedaction() {
		logger.Info("state: sensitive write", "key", key, "class", class)
	}

	raw, err := marshalValue(payload)
	if err != nil {
		return kernelerr.New(kernelerr.Internal, err)
	}
	if err := m.kv.Set(ctx, scope, key, raw); err != nil {
		return err
	}

	if m.hooks != nil && class.RunsHooks() {
		if _, err := m.hooks.Fire(ctx, "state.after_write", hookPayload(scope, key, payload)); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes key from scope, running delete hooks for classes that
// require them.
func (m *Manager) Delete(ctx context.Context, scope types.Scope, key string, class types.Class) error {
	if !class.Persists() {
		return nil
	}
	if m.hooks != nil && class.RunsHooks() {
		result, err := m.hooks.Fire(ctx, "state.before_delete", hookPayload(scope, key, types.Null()))
		if err != nil {
			return err
		}
		if result.Kind == types.Cancel {
			return kernelerr.Newf(kernelerr.PermissionDenied, "state: delete of %q cancelled: %s", key, result.CancelMsg)
		}
	}
	if err := m.kv.Delete(ctx, scope, key); err != nil {
		return err
	}
	if m.hooks != nil && class.RunsHooks() {
		_, err := m.hooks.Fire(ctx, "state.after_delete", hookPayload(scope, key, types.Null()))
		return err
	}
	return nil
}

func hookPayload(scope types.Scope, key string, value types.Value) types.Value {
	return types.Object(map[string]types.Value{
		"scope": types.String(scope.String()),
		"key":   types.String(key),
		"value": value,
	})
}

// validate rejects keys and values the classification layer cannot
// safely route: an empty key has no scope-prefixed address to write to.
func validate(key string, value types.Value) error {
	if key == "" {
		return kernelerr.Newf(kernelerr.Validation, "state: key must not be empty")
	}
	return nil
}
