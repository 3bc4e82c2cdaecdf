// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package protocol

import (
	"context"
	"sync/atomic"

	"github.com/go-zeromq/zmq4"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/pkg/logging"
	"github.com/go-a2a/llmkernel/protocol/wire"
)

// Channel names the five Jupyter channels.
type Channel string

const (
	Shell   Channel = "shell"
	IOPub   Channel = "iopub"
	Stdin   Channel = "stdin"
	Control Channel = "control"
	HB      Channel = "hb"
)

// Envelope is a decoded inbound message together with the routing
// identities a ROUTER-socket reply must echo back.
type Envelope struct {
	Identities [][]byte
	Message    wire.Message
}

// Router owns the five channel sockets and the shared signer. Bind
// constructs one socket per channel with the pattern the protocol
// mandates: shell/stdin/control are ROUTER, iopub is PUB, hb is REP.
type Router struct {
	info   wire.ConnectionInfo
	signer *wire.Signer

	sockets map[Channel]zmq4.Socket

	malformed atomic.Int64
}

// NewRouter constructs an unbound Router for info. The signing key comes
// from info.Key.
func NewRouter(info wire.ConnectionInfo) *Router {
	return &Router{
		info:    info,
		signer:  wire.NewSigner([]byte(info.Key)),
		sockets: make(map[Channel]zmq4.Socket),
	}
}

// Bind creates and listens every channel socket on the ports named in the
// Router's ConnectionInfo.
func (r *Router) Bind(ctx context.Context) error {
	ports := map[Channel]int{
		Shell:   r.info.ShellPort,
		IOPub:   r.info.IopubPort,
		Stdin:   r.info.StdinPort,
		Control: r.info.ControlPort,
		HB:      r.info.HBPort,
	}

	for ch, port := range ports {
		sock := newSocket(ctx, ch)
		if err := sock.Listen(r.info.Endpoint(port)); err != nil {
			r.closeAll()
			return kernelerr.Newf(kernelerr.Internal, "protocol: bind %s on port %d: %w", ch, port, err)
		}
		r.sockets[ch] = sock
	}
	return nil
}

func newSocket(ctx context.Context, ch Channel) zmq4.Socket {
	switch ch {
	case IOPub:
		return zmq4.NewPub(ctx)
	case HB:
		return zmq4.NewRep(ctx)
	default:
		return zmq4.NewRouter(ctx)
	}
}

func (r *Router) closeAll() {
	for _, sock := range r.sockets {
		_ = sock.Close()
	}
}

// Close shuts down every bound socket.
func (r *Router) Close() error {
	var first error
	for ch, sock := range r.sockets {
		if err := sock.Close(); err != nil && first == nil {
			first = kernelerr.Newf(kernelerr.Internal, "protocol: closing %s: %w", ch, err)
		}
	}
	return first
}

// Channels lists the channels this Router has bound.
func (r *Router) Channels() []Channel {
	out := make([]Channel, 0, len(r.sockets))
	for ch := range r.sockets {
		out = append(out, ch)
	}
	return out
}

// HasChannel reports whether ch is bound.
func (r *Router) HasChannel(ch Channel) bool {
	_, ok := r.sockets[ch]
	return ok
}

// Send signs msg and writes it to ch. For router-pattern channels
// (shell/stdin/control), identities must be the routing frames captured
// from the corresponding Recv; it is ignored for iopub and hb.
func (r *Router) Send(ch Channel, identities [][]byte, msg wire.Message) error {
	sock, ok := r.sockets[ch]
	if !ok {
		return kernelerr.Newf(kernelerr.Validation, "protocol: unknown channel %q", ch)
	}

	envelope, err := wire.Encode(r.signer, msg)
	if err != nil {
		return err
	}

	frames := make([][]byte, 0, len(identities)+1+len(envelope))
	frames = append(frames, identities...)
	frames = append(frames, []byte(wire.Delimiter))
	frames = append(frames, envelope...)

	return sock.Send(zmq4.NewMsgFrom(frames...))
}

// Recv reads and verifies the next message on ch. A malformed frame list
// (no delimiter, too few envelope frames) is dropped and counted rather
// than returned as an error to the caller; Recv simply tries again until
// ctx is done.
func (r *Router) Recv(ctx context.Context, ch Channel) (Envelope, error) {
	sock, ok := r.sockets[ch]
	if !ok {
		return Envelope{}, kernelerr.Newf(kernelerr.Validation, "protocol: unknown channel %q", ch)
	}

	for {
		select {
		case <-ctx.Done():
			return Envelope{}, kernelerr.New(kernelerr.Timeout, ctx.Err())
		default:
		}

		raw, err := sock.Recv()
		if err != nil {
			return Envelope{}, kernelerr.New(kernelerr.Transient, err)
		}

		identities, envelope, found := wire.SplitIdentities(raw.Frames)
		if !found {
			r.malformed.Add(1)
			logging.FromContext(ctx).Warn("protocol: dropping frame with no delimiter", "channel", string(ch))
			continue
		}

		msg, err := wire.Decode(r.signer, envelope)
		if err != nil {
			r.malformed.Add(1)
			logging.FromContext(ctx).Warn("protocol: dropping malformed message", "channel", string(ch), "error", err)
			continue
		}

		return Envelope{Identities: identities, Message: msg}, nil
	}
}

// MalformedCount returns how many frames have been dropped for bad
// framing or signature since the Router was created.
func (r *Router) MalformedCount() int64 {
	return r.malformed.Load()
}

// Heartbeat performs one echo cycle on the hb channel: whatever bytes a
// client sends are replied with verbatim, as required for both liveness
// checks and kernel discovery probes.
func (r *Router) Heartbeat(ctx context.Context) error {
	sock, ok := r.sockets[HB]
	if !ok {
		return kernelerr.Newf(kernelerr.Validation, "protocol: hb channel not bound")
	}
	msg, err := sock.Recv()
	if err != nil {
		return kernelerr.New(kernelerr.Transient, err)
	}
	return sock.Send(msg)
}

// ServeHeartbeat runs Heartbeat in a loop until ctx is cancelled,
// suitable for a dedicated goroutine.
func (r *Router) ServeHeartbeat(ctx context.Context) {
	for {
		if err := r.Heartbeat(ctx); err != nil {
			if kernelerr.Is(err, kernelerr.Timeout) {
				return
			}
			select {
			case <-ctx.Done():
				return
			default:
			}
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
