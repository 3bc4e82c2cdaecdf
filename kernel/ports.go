// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"net"

	"github.com/go-a2a/llmkernel/kernelerr"
)

// ports holds the five channel port numbers a kernel binds.
type ports struct {
	shell, iopub, stdin, control, hb int
}

// allocatePorts asks the OS for five free TCP ports by briefly listening
// on ":0" and releasing each listener before binding the real ZeroMQ
// socket, the usual trick for letting the kernel of the OS's ephemeral
// port allocator pick collision-free ports instead of guessing a range.
func allocatePorts() (ports, error) {
	var p ports
	for _, dst := range []*int{&p.shell, &p.iopub, &p.stdin, &p.control, &p.hb} {
		port, err := freePort()
		if err != nil {
			return ports{}, kernelerr.New(kernelerr.Internal, err)
		}
		*dst = port
	}
	return p, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
