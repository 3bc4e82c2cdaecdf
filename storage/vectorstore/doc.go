// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package vectorstore implements storage.VectorStore. Qdrant is the
// durable backend, reached through github.com/qdrant/go-client; Memory is
// a linear-scan fallback for tests and small deployments that need no
// external service, descended from the kernel's earlier keyword-match
// in-memory search but built against the embedding-vector contract
// instead of free text.
package vectorstore
