// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package state

import (
	"github.com/bytedance/sonic"

	"github.com/go-a2a/llmkernel/types"
)

func marshalValue(v types.Value) ([]byte, error) {
	return sonic.ConfigFastest.Marshal(v)
}

func unmarshalValue(data []byte, v *types.Value) error {
	return sonic.ConfigFastest.Unmarshal(data, v)
}
