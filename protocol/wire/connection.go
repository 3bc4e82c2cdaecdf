// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package wire

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"

	"github.com/go-a2a/llmkernel/kernelerr"
)

// ConnectionInfo is the persisted description of a running kernel's
// channel endpoints and signing key, written to and read from the
// discovery directory as a JSON file named after the kernel id.
type ConnectionInfo struct {
	KernelID        string `json:"kernel_id"`
	IP              string `json:"ip"`
	Transport       string `json:"transport"` // "tcp" or "ipc"
	Key             string `json:"key"`
	SignatureScheme string `json:"signature_scheme"`
	ShellPort       int    `json:"shell_port"`
	IopubPort       int    `json:"iopub_port"`
	StdinPort       int    `json:"stdin_port"`
	ControlPort     int    `json:"control_port"`
	HBPort          int    `json:"hb_port"`
}

// FileName is the connection file's name within the discovery directory.
func (c ConnectionInfo) FileName() string {
	return fmt.Sprintf("llmspell-kernel-%s.json", c.KernelID)
}

// Endpoint renders the transport/ip/port triple as a zmq4 dial/listen
// endpoint string.
func (c ConnectionInfo) Endpoint(port int) string {
	if c.Transport == "ipc" {
		return fmt.Sprintf("ipc://%s-%d", c.IP, port)
	}
	return fmt.Sprintf("tcp://%s:%d", c.IP, port)
}

// WriteConnectionFile writes info as JSON to dir/info.FileName(), creating
// dir if necessary, and returns the full path written.
func WriteConnectionFile(dir string, info ConnectionInfo) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", kernelerr.New(kernelerr.Internal, err)
	}
	data, err := sonic.ConfigFastest.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", kernelerr.New(kernelerr.Internal, err)
	}
	path := filepath.Join(dir, info.FileName())
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", kernelerr.New(kernelerr.Internal, err)
	}
	return path, nil
}

// ReadConnectionFile reads and parses a connection file written by
// WriteConnectionFile.
func ReadConnectionFile(path string) (ConnectionInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ConnectionInfo{}, kernelerr.New(kernelerr.NotFound, err)
	}
	var info ConnectionInfo
	if err := sonic.ConfigFastest.Unmarshal(data, &info); err != nil {
		return ConnectionInfo{}, kernelerr.New(kernelerr.Permanent, err)
	}
	return info, nil
}

// RemoveConnectionFile deletes the connection file, ignoring a
// already-gone file.
func RemoveConnectionFile(dir string, info ConnectionInfo) error {
	err := os.Remove(filepath.Join(dir, info.FileName()))
	if err != nil && !os.IsNotExist(err) {
		return kernelerr.New(kernelerr.Internal, err)
	}
	return nil
}

// DiscoveryDir returns the default directory kernels publish connection
// files into and discovery tools scan, honoring XDG_RUNTIME_DIR when set.
func DiscoveryDir() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "llmspell")
	}
	return filepath.Join(os.TempDir(), "llmspell")
}
