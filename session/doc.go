// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package session implements session lifecycle management: creation,
// suspend/resume, completion, save/load snapshotting, and a periodic
// expiration sweep backed by robfig/cron. A SecurityManager enforces
// cross-session access isolation, strict by default.
package session
