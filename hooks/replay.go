// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package hooks

import (
	"github.com/bytedance/sonic"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/types"
)

// SerializeContext renders a hook payload to the byte form a replayable
// hook persists alongside its replay id.
func SerializeContext(payload types.Value) ([]byte, error) {
	data, err := sonic.ConfigFastest.Marshal(payload)
	if err != nil {
		return nil, kernelerr.New(kernelerr.Internal, err)
	}
	return data, nil
}

// DeserializeContext reconstructs a hook payload previously produced by
// SerializeContext.
func DeserializeContext(data []byte) (types.Value, error) {
	var v types.Value
	if err := sonic.ConfigFastest.Unmarshal(data, &v); err != nil {
		return types.Null(), kernelerr.New(kernelerr.Internal, err)
	}
	return v, nil
}

func marshalForReplay(payload types.Value) (string, error) {
	data, err := SerializeContext(payload)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
