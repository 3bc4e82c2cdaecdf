// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package artifact manages content-addressed, per-session blob storage on
// top of a storage.ArtifactStore. It assigns each stored payload its
// position in the session's sequence, transparently zstd-compresses
// payloads above a configurable size threshold, and supports querying a
// session's artifacts by type, tag, or size.
package artifact
