// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package types

import (
	"github.com/google/uuid"
)

// ID is an opaque 128-bit component identifier. It is never used as a
// pointer and supports equality and hashing, so it can key a map directly.
type ID uuid.UUID

// NewID constructs a random component identifier, suitable for a new
// session or artifact.
func NewID() ID {
	return ID(uuid.New())
}

// NewDeterministicID constructs a stable identifier for a registered
// component by hashing namespace with name. Calling it twice with the same
// namespace and name always yields the same ID, which is what a registry
// relies on to recognize a component it has already seen.
func NewDeterministicID(namespace ID, name string) ID {
	return ID(uuid.NewSHA1(uuid.UUID(namespace), []byte(name)))
}

// Nil is the zero-valued ID, never returned by NewID or NewDeterministicID.
var Nil = ID(uuid.Nil)

// String renders the ID in canonical hyphenated hex form.
func (id ID) String() string {
	return uuid.UUID(id).String()
}

// IsNil reports whether id is the zero value.
func (id ID) IsNil() bool {
	return id == Nil
}

// ParseID parses a canonical hyphenated hex UUID string into an ID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, err
	}
	return ID(u), nil
}

// RootNamespace is the namespace used to derive deterministic IDs for
// globally registered components (see registry.Registry) when no
// caller-supplied namespace is given.
var RootNamespace = ID(uuid.NameSpaceOID)
