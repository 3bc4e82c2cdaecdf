// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/go-a2a/llmkernel/artifact"
	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/pkg/logging"
	"github.com/go-a2a/llmkernel/protocol"
	"github.com/go-a2a/llmkernel/protocol/wire"
	"github.com/go-a2a/llmkernel/scripthost"
	"github.com/go-a2a/llmkernel/session"
	"github.com/go-a2a/llmkernel/types"
)

// Config describes how a new Kernel binds and announces itself.
type Config struct {
	// IP is the bind address embedded in the connection file. Defaults
	// to 127.0.0.1.
	IP string
	// Transport is "tcp" or "ipc". Defaults to "tcp".
	Transport string
	// SignatureScheme names the HMAC digest, recorded for clients;
	// defaults to "hmac-sha256".
	SignatureScheme string
	// Key is the shared HMAC signing key. An empty key disables
	// signature verification, matching Jupyter's unsigned-connection
	// convention.
	Key string
	// DiscoveryDir overrides where the connection file is written;
	// empty uses wire.DiscoveryDir.
	DiscoveryDir string
	// SessionID is the Jupyter session identifier stamped on every
	// kernel-originated message header.
	SessionID string
	// TenantID scopes the sessions this kernel owns, completed on
	// shutdown.
	TenantID string
}

// DebugHandler processes a debug_request's content and returns the
// debug_reply content. The kernel package ships no default; a caller
// wires one in from the REPL/debug-adapter package.
type DebugHandler func(ctx context.Context, content map[string]any) (map[string]any, error)

// Kernel is the top-level dispatch loop: one instance per running
// process, owning the bound protocol.Router, the script execution host,
// and the session/artifact managers. Shutdown completes the tenant's open
// sessions; it flushes neither manager's storage.
type Kernel struct {
	info     wire.ConnectionInfo
	connDir  string
	connPath string

	tenantID string

	router    *protocol.Router
	host      *scripthost.Host
	sessions  *session.Manager
	artifacts *artifact.Manager

	signal *scripthost.SignalHandler
	debug  DebugHandler

	eg     *errgroup.Group
	cancel context.CancelFunc
}

// New acquires a kernel id, selects ports, and builds an unbound Kernel.
// Call Start to bind and begin serving.
func New(cfg Config, host *scripthost.Host, sessions *session.Manager, artifacts *artifact.Manager) (*Kernel, error) {
	if cfg.IP == "" {
		cfg.IP = "127.0.0.1"
	}
	if cfg.Transport == "" {
		cfg.Transport = "tcp"
	}
	if cfg.SignatureScheme == "" {
		cfg.SignatureScheme = "hmac-sha256"
	}
	if cfg.SessionID == "" {
		cfg.SessionID = types.NewID().String()
	}
	if cfg.DiscoveryDir == "" {
		cfg.DiscoveryDir = wire.DiscoveryDir()
	}

	p, err := allocatePorts()
	if err != nil {
		return nil, err
	}

	info := wire.ConnectionInfo{
		KernelID:        types.NewID().String(),
		IP:              cfg.IP,
		Transport:       cfg.Transport,
		Key:             cfg.Key,
		SignatureScheme: cfg.SignatureScheme,
		ShellPort:       p.shell,
		IopubPort:       p.iopub,
		StdinPort:       p.stdin,
		ControlPort:     p.control,
		HBPort:          p.hb,
	}

	return &Kernel{
		info:      info,
		connDir:   cfg.DiscoveryDir,
		tenantID:  cfg.TenantID,
		router:    protocol.NewRouter(info),
		host:      host,
		sessions:  sessions,
		artifacts: artifacts,
		signal:    scripthost.NewSignalHandler(),
	}, nil
}

// WithDebugHandler installs the debug_request/debug_reply handler used
// by debug_request messages.
func (k *Kernel) WithDebugHandler(h DebugHandler) *Kernel {
	k.debug = h
	return k
}

// ConnectionInfo returns the kernel's bound endpoint description.
func (k *Kernel) ConnectionInfo() wire.ConnectionInfo {
	return k.info
}

// Start binds all five channels, writes the connection file, and begins
// serving the shell and control channels on background goroutines. It
// returns once binding and the connection-file write succeed; it does
// not block the caller past that point.
func (k *Kernel) Start(ctx context.Context) error {
	if err := k.router.Bind(ctx); err != nil {
		return err
	}

	path, err := wire.WriteConnectionFile(k.connDir, k.info)
	if err != nil {
		_ = k.router.Close()
		return err
	}
	k.connPath = path

	serveCtx, cancel := context.WithCancel(ctx)
	k.cancel = cancel

	eg, egCtx := errgroup.WithContext(serveCtx)
	k.eg = eg
	eg.Go(func() error {
		k.router.ServeHeartbeat(egCtx)
		return nil
	})
	eg.Go(func() error {
		k.serveChannel(egCtx, protocol.Control)
		return nil
	})
	eg.Go(func() error {
		k.serveChannel(egCtx, protocol.Shell)
		return nil
	})

	return nil
}

// serveChannel loops reading and dispatching requests on ch until ctx is
// cancelled.
func (k *Kernel) serveChannel(ctx context.Context, ch protocol.Channel) {
	logger := logging.FromContext(ctx)
	for {
		env, err := k.router.Recv(ctx, ch)
		if err != nil {
			if kernelerr.Is(err, kernelerr.Timeout) {
				return
			}
			logger.Warn("kernel: channel recv failed", "channel", string(ch), "error", err)
			continue
		}
		k.dispatch(ctx, ch, env)
	}
}

// dispatch routes one request through the busy/.../idle bracket and
// sends its reply back on the originating channel.
func (k *Kernel) dispatch(ctx context.Context, ch protocol.Channel, env protocol.Envelope) {
	req := env.Message
	logger := logging.FromContext(ctx)

	if err := k.router.PublishStatus(req.Header.Session, req.Header, protocol.StatusBusy); err != nil {
		logger.Warn("kernel: publish busy failed", "error", err)
	}

	replyType, content, doShutdown, restart := k.handle(ctx, req)

	reply := wire.Message{
		Header:       wire.NewHeader(types.NewID().String(), req.Header.Session, replyType),
		ParentHeader: req.Header,
		Content:      content,
	}
	if err := k.router.Send(ch, env.Identities, reply); err != nil {
		logger.Warn("kernel: send reply failed", "channel", string(ch), "error", err)
	}

	if err := k.router.PublishStatus(req.Header.Session, req.Header, protocol.StatusIdle); err != nil {
		logger.Warn("kernel: publish idle failed", "error", err)
	}

	if doShutdown {
		go func() { _ = k.Shutdown(context.Background(), restart) }()
	}
}

// Shutdown completes every Active or Suspended session of the kernel's
// tenant (when TenantID is set), stops serving, closes the channel
// sockets, and removes the connection file. It does not flush the
// storage backends. restart indicates whether the
// request that triggered shutdown asked the supervisor to restart the
// kernel afterward.
func (k *Kernel) Shutdown(ctx context.Context, restart bool) error {
	logger := logging.FromContext(ctx)

	if k.sessions != nil && k.tenantID != "" {
		if err := k.sessions.CompleteAllActive(ctx, k.tenantID); err != nil {
			logger.Warn("kernel: error completing active sessions on shutdown", "error", err)
		}
	}

	if k.cancel != nil {
		k.cancel()
	}
	if k.eg != nil {
		_ = k.eg.Wait()
	}

	if err := k.router.Close(); err != nil {
		logger.Warn("kernel: error closing router", "error", err)
	}

	return wire.RemoveConnectionFile(k.connDir, k.info)
}
