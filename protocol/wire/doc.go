// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Package wire implements the Jupyter wire protocol's message framing:
// HMAC-SHA256 signed multi-frame messages, the header/parent_header/
// metadata/content envelope, and the connection-file format kernels
// publish so clients and discovery tools can find them.
package wire
