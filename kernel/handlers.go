// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package kernel

import (
	"context"

	"github.com/go-a2a/llmkernel/protocol/wire"
	"github.com/go-a2a/llmkernel/scripthost"
)

// handle routes req by msg_type and returns the reply's msg_type, its
// content, and whether the request requires a shutdown afterward (and,
// if so, whether the supervisor should restart the kernel).
func (k *Kernel) handle(ctx context.Context, req wire.Message) (replyType string, content map[string]any, shutdown, restart bool) {
	switch req.Header.MsgType {
	case "kernel_info_request":
		return "kernel_info_reply", k.kernelInfo(), false, false

	case "execute_request":
		return "execute_reply", k.execute(ctx, req), false, false

	case "complete_request":
		return "complete_reply", k.complete(ctx, req), false, false

	case "inspect_request":
		return "inspect_reply", k.inspect(ctx, req), false, false

	case "is_complete_request":
		return "is_complete_reply", k.isComplete(ctx, req), false, false

	case "comm_info_request":
		return "comm_info_reply", map[string]any{"comms": map[string]any{}, "status": "ok"}, false, false

	case "connect_request":
		return "connect_reply", map[string]any{
			"shell_port":   k.info.ShellPort,
			"iopub_port":   k.info.IopubPort,
			"stdin_port":   k.info.StdinPort,
			"control_port": k.info.ControlPort,
			"hb_port":      k.info.HBPort,
		}, false, false

	case "history_request":
		return "history_reply", map[string]any{"history": []any{}, "status": "ok"}, false, false

	case "interrupt_request":
		k.signal.Interrupt()
		return "interrupt_reply", map[string]any{"status": "ok"}, false, false

	case "shutdown_request":
		restart, _ := req.Content["restart"].(bool)
		return "shutdown_reply", map[string]any{"restart": restart, "status": "ok"}, true, restart

	case "debug_request":
		return k.debugRequest(ctx, req)

	default:
		return "error", map[string]any{
			"status": "error",
			"ename":  "UnknownMessageType",
			"evalue": req.Header.MsgType,
		}, false, false
	}
}

func (k *Kernel) kernelInfo() map[string]any {
	return map[string]any{
		"status":             "ok",
		"protocol_version":   "5.3",
		"implementation":     "llmkernel",
		"implementation_version": "0.1.0",
		"language_info": map[string]any{
			"name":           k.host.Engine().Name(),
			"mimetype":       "text/plain",
			"file_extension": "",
		},
		"banner": "llmkernel",
	}
}

func (k *Kernel) execute(ctx context.Context, req wire.Message) map[string]any {
	code, _ := req.Content["code"].(string)
	silent, _ := req.Content["silent"].(bool)

	k.signal.Reset()
	stdout := &streamWriter{k: k, session: req.Header.Session, parent: req.Header, name: "stdout"}
	stderr := &streamWriter{k: k, session: req.Header.Session, parent: req.Header, name: "stderr"}
	io := &scripthost.IOContext{Stdout: stdout, Stderr: stderr, Signal: k.signal}

	reply, err := k.host.Execute(ctx, code, silent, io)
	if err != nil {
		return map[string]any{
			"status": "error",
			"ename":  "InternalError",
			"evalue": err.Error(),
		}
	}

	if reply.Status == scripthost.StatusError {
		_ = k.router.PublishError(req.Header.Session, req.Header, reply.ErrorName, reply.ErrorValue, reply.Traceback)
	}

	return map[string]any{
		"status":          string(reply.Status),
		"execution_count": reply.ExecutionCount,
		"ename":           reply.ErrorName,
		"evalue":          reply.ErrorValue,
		"traceback":       reply.Traceback,
	}
}

func (k *Kernel) complete(ctx context.Context, req wire.Message) map[string]any {
	code, _ := req.Content["code"].(string)
	cursorPos, _ := req.Content["cursor_pos"].(float64)

	result, err := k.host.Complete(ctx, code, int(cursorPos))
	if err != nil {
		return map[string]any{"status": "error", "evalue": err.Error()}
	}
	return map[string]any{
		"status":       "ok",
		"matches":      result.Matches,
		"cursor_start": result.CursorStart,
		"cursor_end":   result.CursorEnd,
	}
}

func (k *Kernel) inspect(ctx context.Context, req wire.Message) map[string]any {
	code, _ := req.Content["code"].(string)
	cursorPos, _ := req.Content["cursor_pos"].(float64)
	detail, _ := req.Content["detail_level"].(float64)

	result, err := k.host.Inspect(ctx, code, int(cursorPos), int(detail))
	if err != nil {
		return map[string]any{"status": "error", "evalue": err.Error()}
	}
	return map[string]any{
		"status": "ok",
		"found":  result.Found,
	}
}

func (k *Kernel) isComplete(ctx context.Context, req wire.Message) map[string]any {
	code, _ := req.Content["code"].(string)
	result, err := k.host.IsComplete(ctx, code)
	if err != nil {
		return map[string]any{"status": "error", "evalue": err.Error()}
	}
	return map[string]any{
		"status": string(result.Status),
		"indent": result.Indent,
	}
}

func (k *Kernel) debugRequest(ctx context.Context, req wire.Message) (string, map[string]any, bool, bool) {
	if k.debug == nil {
		return "debug_reply", map[string]any{"status": "error", "evalue": "debug adapter not installed"}, false, false
	}
	content, err := k.debug(ctx, req.Content)
	if err != nil {
		return "debug_reply", map[string]any{"status": "error", "evalue": err.Error()}, false, false
	}
	return "debug_reply", content, false, false
}

// streamWriter adapts a script execution's stdout/stderr to iopub stream
// messages, one per Write call.
type streamWriter struct {
	k       *Kernel
	session string
	parent  wire.Header
	name    string
}

func (w *streamWriter) Write(p []byte) (int, error) {
	if err := w.k.router.PublishStream(w.session, w.parent, w.name, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}
