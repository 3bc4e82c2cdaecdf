// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"fmt"
	"sync/atomic"

	"github.com/go-a2a/llmkernel/protocol/wire"
)

// StatusBusy and StatusIdle are the two execution_state values the kernel
// brackets every request with on iopub.
const (
	StatusBusy = "busy"
	StatusIdle = "idle"
)

// PublishStatus broadcasts execution_state on iopub, carrying parent as
// its parent_header so clients can correlate it to the request that
// caused it.
func (r *Router) PublishStatus(session string, parent wire.Header, status string) error {
	msg := wire.Message{
		Header:       wire.NewHeader(newMsgID(), session, "status"),
		ParentHeader: parent,
		Content:      map[string]any{"execution_state": status},
	}
	return r.Send(IOPub, nil, msg)
}

// PublishStream broadcasts a stdout/stderr chunk on iopub.
func (r *Router) PublishStream(session string, parent wire.Header, streamName, text string) error {
	msg := wire.Message{
		Header:       wire.NewHeader(newMsgID(), session, "stream"),
		ParentHeader: parent,
		Content:      map[string]any{"name": streamName, "text": text},
	}
	return r.Send(IOPub, nil, msg)
}

// PublishDisplayData broadcasts rich display output on iopub.
func (r *Router) PublishDisplayData(session string, parent wire.Header, data, metadata map[string]any) error {
	msg := wire.Message{
		Header:       wire.NewHeader(newMsgID(), session, "display_data"),
		ParentHeader: parent,
		Content:      map[string]any{"data": data, "metadata": metadata},
	}
	return r.Send(IOPub, nil, msg)
}

// PublishError broadcasts an execution error on iopub.
func (r *Router) PublishError(session string, parent wire.Header, ename, evalue string, traceback []string) error {
	msg := wire.Message{
		Header:       wire.NewHeader(newMsgID(), session, "error"),
		ParentHeader: parent,
		Content: map[string]any{
			"ename": ename, "evalue": evalue, "traceback": traceback,
		},
	}
	return r.Send(IOPub, nil, msg)
}

var msgSeq atomic.Int64

// newMsgID produces a process-unique id for kernel-originated messages
// (status, stream, display_data, error). It is not cryptographically
// random; wire messages are correlated by parent_header, not by guessing
// an opaque id.
func newMsgID() string {
	return fmt.Sprintf("kernel-%d", msgSeq.Add(1))
}
