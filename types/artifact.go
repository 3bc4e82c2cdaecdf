// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"fmt"
	"time"
)

// ArtifactID identifies an artifact by the session that owns it, the
// content hash of its bytes, and a per-session sequence number. Two
// uploads of identical bytes within the same session collapse to the same
// ContentHash but keep distinct Sequence numbers, so dedup happens at the
// storage layer (one blob, many references) without losing upload order.
type ArtifactID struct {
	SessionID   ID
	ContentHash string // hex-encoded SHA-256 of the uncompressed payload
	Sequence    int64
}

// String renders a stable key suitable for use as a storage key or log
// field.
func (a ArtifactID) String() string {
	return fmt.Sprintf("%s/%s/%d", a.SessionID, a.ContentHash, a.Sequence)
}

// ArtifactType classifies an artifact's payload for query and rendering
// purposes. It never affects how the bytes are stored.
type ArtifactType int

const (
	ArtifactBinary ArtifactType = iota
	ArtifactText
	ArtifactJSON
	ArtifactImage
)

// String returns the type name.
func (t ArtifactType) String() string {
	switch t {
	case ArtifactBinary:
		return "Binary"
	case ArtifactText:
		return "Text"
	case ArtifactJSON:
		return "JSON"
	case ArtifactImage:
		return "Image"
	default:
		return "Binary"
	}
}

// Artifact is the metadata record for a content-addressed blob bound to a
// session. The payload bytes themselves are stored separately, keyed by
// ID.ContentHash, so identical content uploaded twice is stored once.
type Artifact struct {
	ID          ArtifactID
	Type        ArtifactType
	Name        string
	MimeType    string
	Size        int64 // uncompressed size in bytes
	Compressed  bool  // true if the backend stores this blob zstd-compressed
	Tags        []string
	CreatedAt   time.Time
	Metadata    map[string]Value
}

// HasTag reports whether tag is present in the artifact's tag set.
func (a *Artifact) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
