// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/bytedance/sonic"

	"github.com/go-a2a/llmkernel/kernelerr"
)

// Delimiter separates routing-identity frames from the signed envelope in
// every multi-frame message.
const Delimiter = "<IDS|MSG>"

// Header is the envelope every message carries, and the parent_header
// every reply correlates back to the request that caused it.
type Header struct {
	MsgID     string `json:"msg_id"`
	Timestamp string `json:"date"`
	Username  string `json:"username"`
	Session   string `json:"session"`
	MsgType   string `json:"msg_type"`
	Version   string `json:"version"`
}

// Message is the decoded form of a signed multi-frame wire message.
type Message struct {
	Header       Header
	ParentHeader Header
	Metadata     map[string]any
	Content      map[string]any
	Buffers      [][]byte
}

// NewHeader builds a Header stamped with the current time.
func NewHeader(msgID, session, msgType string) Header {
	return Header{
		MsgID:     msgID,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Username:  "kernel",
		Session:   session,
		MsgType:   msgType,
		Version:   "5.3",
	}
}

// Signer computes and verifies the HMAC-SHA256 signature over a message's
// four envelope frames, using a constant-time comparison so signature
// verification cannot leak timing information about the shared key.
type Signer struct {
	key []byte
}

// NewSigner constructs a Signer from the connection file's shared key. A
// nil or empty key disables signing: Sign returns an empty string and
// Verify accepts any signature, matching Jupyter's unsigned-connection
// convention.
func NewSigner(key []byte) *Signer {
	return &Signer{key: key}
}

// Sign computes the hex-encoded HMAC-SHA256 over the concatenation of
// frames.
func (s *Signer) Sign(frames [][]byte) string {
	if len(s.key) == 0 {
		return ""
	}
	mac := hmac.New(sha256.New, s.key)
	for _, f := range frames {
		mac.Write(f)
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sig is the correct signature for frames.
func (s *Signer) Verify(sig string, frames [][]byte) bool {
	if len(s.key) == 0 {
		return true
	}
	want, err := hex.DecodeString(s.Sign(frames))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}

// Encode renders msg as the frame list that follows the routing identities
// and delimiter: [signature, header, parent_header, metadata, content,
// buffers...].
func Encode(signer *Signer, msg Message) ([][]byte, error) {
	headerJSON, err := sonic.ConfigFastest.Marshal(msg.Header)
	if err != nil {
		return nil, kernelerr.New(kernelerr.Permanent, err)
	}
	parentJSON, err := sonic.ConfigFastest.Marshal(msg.ParentHeader)
	if err != nil {
		return nil, kernelerr.New(kernelerr.Permanent, err)
	}
	metaJSON, err := marshalOrEmptyObject(msg.Metadata)
	if err != nil {
		return nil, err
	}
	contentJSON, err := marshalOrEmptyObject(msg.Content)
	if err != nil {
		return nil, err
	}

	envelope := [][]byte{headerJSON, parentJSON, metaJSON, contentJSON}
	sig := signer.Sign(envelope)

	frames := make([][]byte, 0, 2+len(envelope)+len(msg.Buffers))
	frames = append(frames, []byte(sig))
	frames = append(frames, envelope...)
	frames = append(frames, msg.Buffers...)
	return frames, nil
}

func marshalOrEmptyObject(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	b, err := sonic.ConfigFastest.Marshal(m)
	if err != nil {
		return nil, kernelerr.New(kernelerr.Permanent, err)
	}
	return b, nil
}

// Decode parses the frame list that follows the routing identities and
// delimiter (i.e. the same layout Encode produces), verifying the
// signature before returning the message. A signature mismatch returns a
// kernelerr.PermissionDenied error; fewer than five frames, or a frame
// that does not decode, returns a kernelerr.Permanent error.
func Decode(signer *Signer, frames [][]byte) (Message, error) {
	if len(frames) < 5 {
		return Message{}, kernelerr.Newf(kernelerr.Permanent, "wire: malformed message: expected at least 5 frames, got %d", len(frames))
	}

	sig := string(frames[0])
	envelope := frames[1:5]
	buffers := frames[5:]

	if !signer.Verify(sig, envelope) {
		return Message{}, kernelerr.Newf(kernelerr.PermissionDenied, "wire: signature mismatch")
	}

	var msg Message
	if err := sonic.ConfigFastest.Unmarshal(envelope[0], &msg.Header); err != nil {
		return Message{}, kernelerr.New(kernelerr.Permanent, err)
	}
	if err := sonic.ConfigFastest.Unmarshal(envelope[1], &msg.ParentHeader); err != nil {
		return Message{}, kernelerr.New(kernelerr.Permanent, err)
	}
	if err := sonic.ConfigFastest.Unmarshal(envelope[2], &msg.Metadata); err != nil {
		return Message{}, kernelerr.New(kernelerr.Permanent, err)
	}
	if err := sonic.ConfigFastest.Unmarshal(envelope[3], &msg.Content); err != nil {
		return Message{}, kernelerr.New(kernelerr.Permanent, err)
	}
	msg.Buffers = buffers

	return msg, nil
}

// SplitIdentities separates the routing-identity frames (for ROUTER
// sockets) from the delimiter-prefixed envelope in a raw frame list.
// found is false if no delimiter frame is present.
func SplitIdentities(raw [][]byte) (identities [][]byte, envelope [][]byte, found bool) {
	delim := []byte(Delimiter)
	for i, f := range raw {
		if bytes.Equal(f, delim) {
			return raw[:i], raw[i+1:], true
		}
	}
	return nil, nil, false
}
