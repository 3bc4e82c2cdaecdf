// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package events is the kernel's publish/subscribe bus. Topics are
// dotted strings matched either exactly ("system.startup"), by
// prefix-wildcard ("system.*"), or globally ("*"). Each subscriber gets
// its own bounded queue; a full queue makes Publish block (the default
// back-pressure policy) unless the subscriber opted into lossy delivery,
// in which case the oldest undelivered event is dropped and counted.
package events
