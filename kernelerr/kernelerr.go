// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package kernelerr classifies kernel errors into the taxonomy the dispatcher,
// protocol router, and storage backends use to decide how an error surfaces:
// synchronously to a caller, as an iopub error event, or as a logged
// Internal with a correlation id.
package kernelerr

import (
	"errors"
	"fmt"
)

// Kind is the taxonomy of a kernel error. It never carries a message; Kind is
// for callers that need to branch (e.g. the dispatcher deciding whether to
// retry), while the message lives on the wrapping error.
type Kind int

const (
	// Internal is a bug or unexpected invariant violation. Always logged with
	// a correlation id.
	Internal Kind = iota
	// Validation is bad input rejected synchronously with no side effects.
	Validation
	// NotFound is a missing key/artifact/session.
	NotFound
	// PermissionDenied is cross-tenant or cross-session access under strict
	// isolation.
	PermissionDenied
	// Conflict is already-exists on create, or stale state on compare-and-set.
	Conflict
	// Timeout is a deadline exceeded.
	Timeout
	// Cancelled is an interrupt delivered and observed.
	Cancelled
	// Transient is retryable: network, pool exhaustion, backend overload.
	Transient
	// Permanent is non-retryable: serialization failure, invalid format,
	// configuration.
	Permanent
)

// String returns the taxonomy name, used in log fields and error replies.
func (k Kind) String() string {
	switch k {
	case Validation:
		return "Validation"
	case NotFound:
		return "NotFound"
	case PermissionDenied:
		return "PermissionDenied"
	case Conflict:
		return "Conflict"
	case Timeout:
		return "Timeout"
	case Cancelled:
		return "Cancelled"
	case Transient:
		return "Transient"
	case Permanent:
		return "Permanent"
	default:
		return "Internal"
	}
}

// kernelError wraps an underlying error with a Kind so that errors.As can
// recover the classification anywhere the error is propagated.
type kernelError struct {
	kind Kind
	err  error
}

func (e *kernelError) Error() string {
	return fmt.Sprintf("%s: %v", e.kind, e.err)
}

func (e *kernelError) Unwrap() error {
	return e.err
}

// New wraps err with kind. Passing a nil err returns nil.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kernelError{kind: kind, err: err}
}

// Newf builds a kind-classified error from a format string, the way
// fmt.Errorf builds a wrapped one.
func Newf(kind Kind, format string, args ...any) error {
	return &kernelError{kind: kind, err: fmt.Errorf(format, args...)}
}

// KindOf extracts the Kind from err, walking the Unwrap chain. An error with
// no attached Kind is classified Internal, matching spec.md's default: an
// error nobody classified is a bug until proven otherwise.
func KindOf(err error) Kind {
	var ke *kernelError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return Internal
}

// Is reports whether err is classified as kind anywhere in its Unwrap chain.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
