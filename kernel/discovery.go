// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-zeromq/zmq4"

	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/pkg/logging"
	"github.com/go-a2a/llmkernel/protocol/wire"
)

// HeartbeatProbeTimeout bounds how long Discovery waits for a candidate
// kernel's heartbeat socket to answer before declaring it unreachable.
const HeartbeatProbeTimeout = 2 * time.Second

// Discovery scans a discovery directory for connection files and probes
// each candidate kernel's liveness over its heartbeat channel.
type Discovery struct {
	dir string
}

// NewDiscovery builds a Discovery over dir. An empty dir uses
// wire.DiscoveryDir.
func NewDiscovery(dir string) *Discovery {
	if dir == "" {
		dir = wire.DiscoveryDir()
	}
	return &Discovery{dir: dir}
}

// Discover reads every connection file in the discovery directory,
// probes each with a heartbeat ping, and returns the ones that answered.
// Connection files belonging to kernels that did not answer within
// HeartbeatProbeTimeout are removed.
func (d *Discovery) Discover(ctx context.Context) ([]wire.ConnectionInfo, error) {
	entries, err := os.ReadDir(d.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, kernelerr.New(kernelerr.Internal, err)
	}

	logger := logging.FromContext(ctx)
	var alive []wire.ConnectionInfo

	for _, entry := range entries {
		if entry.IsDir() || !matchesConnectionFile(entry.Name()) {
			continue
		}
		path := filepath.Join(d.dir, entry.Name())
		info, err := wire.ReadConnectionFile(path)
		if err != nil {
			logger.Warn("kernel: discarding unreadable connection file", "path", path, "error", err)
			continue
		}

		if probeHeartbeat(ctx, info) {
			alive = append(alive, info)
			continue
		}

		logger.Info("kernel: removing stale connection file", "kernel_id", info.KernelID)
		_ = wire.RemoveConnectionFile(d.dir, info)
	}

	return alive, nil
}

// AutoDiscover returns the first alive kernel Discover finds, or ok=false
// if none answered.
func (d *Discovery) AutoDiscover(ctx context.Context) (wire.ConnectionInfo, bool, error) {
	alive, err := d.Discover(ctx)
	if err != nil {
		return wire.ConnectionInfo{}, false, err
	}
	if len(alive) == 0 {
		return wire.ConnectionInfo{}, false, nil
	}
	return alive[0], true, nil
}

func matchesConnectionFile(name string) bool {
	ok, err := filepath.Match("llmspell-kernel-*.json", name)
	return err == nil && ok
}

// probeHeartbeat dials info's heartbeat endpoint, sends "ping", and
// reports whether it echoed the payload back within the probe timeout.
func probeHeartbeat(ctx context.Context, info wire.ConnectionInfo) bool {
	probeCtx, cancel := context.WithTimeout(ctx, HeartbeatProbeTimeout)
	defer cancel()

	sock := zmq4.NewReq(probeCtx)
	defer sock.Close()

	if err := sock.Dial(info.Endpoint(info.HBPort)); err != nil {
		return false
	}
	if err := sock.Send(zmq4.NewMsgString("ping")); err != nil {
		return false
	}

	done := make(chan bool, 1)
	go func() {
		msg, err := sock.Recv()
		done <- err == nil && len(msg.Frames) == 1 && string(msg.Frames[0]) == "ping"
	}()

	select {
	case ok := <-done:
		return ok
	case <-probeCtx.Done():
		return false
	}
}
