// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"github.com/go-a2a/llmkernel/artifact"
	"github.com/go-a2a/llmkernel/hooks"
	"github.com/go-a2a/llmkernel/session"
	"github.com/go-a2a/llmkernel/storage"
)

// sessionInfrastructureBridge is the GlobalContext bridge name under which
// SessionInfrastructure is published, shared by the Session and Artifact
// globals so they operate on the same SessionManager and ArtifactManager.
const sessionInfrastructureBridge = "session_infrastructure"

// SessionInfrastructure bundles the session and artifact managers every
// session-aware global needs.
type SessionInfrastructure struct {
	Sessions  *session.Manager
	Artifacts *artifact.Manager
}

// GetOrCreateSessionInfrastructure returns gctx's cached SessionInfrastructure,
// constructing it from sessionStore/artifactStore/bus on first call. Later
// calls with different stores are ignored; the first caller wins.
func GetOrCreateSessionInfrastructure(
	gctx *GlobalContext,
	sessionStore storage.SessionStore,
	artifactStore storage.ArtifactStore,
	bus *hooks.Bus,
) (*SessionInfrastructure, error) {
	return GetOrCreate(gctx, sessionInfrastructureBridge, func() (*SessionInfrastructure, error) {
		artifacts, err := artifact.New(artifactStore)
		if err != nil {
			return nil, err
		}
		return &SessionInfrastructure{
			Sessions:  session.New(sessionStore, bus),
			Artifacts: artifacts,
		}, nil
	})
}
