// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-a2a/llmkernel/protocol/wire"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	signer := wire.NewSigner([]byte("secret"))
	msg := wire.Message{
		Header:       wire.NewHeader("m1", "sess", "execute_request"),
		ParentHeader: wire.Header{},
		Metadata:     map[string]any{"k": "v"},
		Content:      map[string]any{"code": "1+1"},
	}

	frames, err := wire.Encode(signer, msg)
	require.NoError(t, err)

	decoded, err := wire.Decode(signer, frames)
	require.NoError(t, err)
	assert.Equal(t, "m1", decoded.Header.MsgID)
	assert.Equal(t, "execute_request", decoded.Header.MsgType)
	assert.Equal(t, "1+1", decoded.Content["code"])
}

func TestDecodeRejectsTamperedSignature(t *testing.T) {
	signer := wire.NewSigner([]byte("secret"))
	msg := wire.Message{Header: wire.NewHeader("m1", "sess", "execute_request")}

	frames, err := wire.Encode(signer, msg)
	require.NoError(t, err)
	frames[0] = []byte("deadbeef")

	_, err = wire.Decode(signer, frames)
	assert.Error(t, err)
}

func TestDecodeRejectsTooFewFrames(t *testing.T) {
	signer := wire.NewSigner([]byte("secret"))
	_, err := wire.Decode(signer, [][]byte{[]byte("sig"), []byte("{}")})
	assert.Error(t, err)
}

func TestUnsignedConnectionAcceptsAnySignature(t *testing.T) {
	signer := wire.NewSigner(nil)
	msg := wire.Message{Header: wire.NewHeader("m1", "sess", "execute_request")}

	frames, err := wire.Encode(signer, msg)
	require.NoError(t, err)
	frames[0] = []byte("anything")

	_, err = wire.Decode(signer, frames)
	assert.NoError(t, err)
}

func TestSplitIdentities(t *testing.T) {
	raw := [][]byte{[]byte("id1"), []byte("id2"), []byte(wire.Delimiter), []byte("sig"), []byte("{}")}
	identities, envelope, found := wire.SplitIdentities(raw)
	require.True(t, found)
	assert.Equal(t, [][]byte{[]byte("id1"), []byte("id2")}, identities)
	assert.Equal(t, [][]byte{[]byte("sig"), []byte("{}")}, envelope)
}

func TestSplitIdentitiesNoDelimiter(t *testing.T) {
	_, _, found := wire.SplitIdentities([][]byte{[]byte("a"), []byte("b")})
	assert.False(t, found)
}

func TestConnectionFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	info := wire.ConnectionInfo{
		KernelID: "abc123", IP: "127.0.0.1", Transport: "tcp", Key: "secret",
		SignatureScheme: "hmac-sha256", ShellPort: 1, IopubPort: 2, StdinPort: 3, ControlPort: 4, HBPort: 5,
	}

	path, err := wire.WriteConnectionFile(dir, info)
	require.NoError(t, err)

	got, err := wire.ReadConnectionFile(path)
	require.NoError(t, err)
	assert.Equal(t, info, got)

	require.NoError(t, wire.RemoveConnectionFile(dir, info))
	_, err = wire.ReadConnectionFile(path)
	assert.Error(t, err)
}
