// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command llmkernel starts one kernel process: it wires the I/O runtime,
// storage backend, state manager, hook/event buses, session and artifact
// stores, global registry, and protocol dispatcher together, then serves
// the shell/control/iopub/stdin/heartbeat channels until interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-a2a/llmkernel/artifact"
	"github.com/go-a2a/llmkernel/debug"
	"github.com/go-a2a/llmkernel/events"
	"github.com/go-a2a/llmkernel/hooks"
	"github.com/go-a2a/llmkernel/kernel"
	"github.com/go-a2a/llmkernel/kernelerr"
	"github.com/go-a2a/llmkernel/pkg/logging"
	"github.com/go-a2a/llmkernel/registry"
	"github.com/go-a2a/llmkernel/repl"
	"github.com/go-a2a/llmkernel/scripthost"
	"github.com/go-a2a/llmkernel/session"
	"github.com/go-a2a/llmkernel/state"
	"github.com/go-a2a/llmkernel/storage"
	"github.com/go-a2a/llmkernel/storage/memstore"
	"github.com/go-a2a/llmkernel/storage/sqlitekv"
	"github.com/go-a2a/llmkernel/types"
)

func main() {
	var (
		ip       = flag.String("ip", "127.0.0.1", "bind address embedded in the connection file")
		tenant   = flag.String("tenant", "default", "tenant id this kernel process serves")
		dbPath   = flag.String("db", "", "sqlite database path; empty uses an in-process memory store")
		discover = flag.String("connection-dir", "", "directory to write the connection file in; empty uses the default discovery directory")
	)
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx := logging.NewContext(context.Background(), logger)
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *ip, *tenant, *dbPath, *discover); err != nil {
		logger.Error("llmkernel: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, ip, tenant, dbPath, discoveryDir string) error {
	logger := logging.FromContext(ctx)

	kv, sessionStore, artifactStore, closeStore, err := openStore(dbPath)
	if err != nil {
		return err
	}
	defer closeStore()

	hookBus := hooks.New()
	eventBus := events.New()
	defer eventBus.Publish(events.Event{Topic: "kernel.stopped"})
	eventBus.Publish(events.Event{Topic: "kernel.starting"})

	stateMgr := state.New(kv, hookBus)
	sessions := session.New(sessionStore, hookBus)
	sessions.WithSecurityManager(session.NewSecurityManager(true))
	if err := sessions.StartExpirationSweep(ctx, types.Tenant(tenant), 0); err != nil {
		return err
	}
	defer sessions.StopExpirationSweep()

	artifacts, err := artifact.New(artifactStore)
	if err != nil {
		return err
	}
	defer artifacts.Close()

	gctx := registry.NewGlobalContext()
	if err := buildRegistry(gctx, stateMgr, sessions, artifacts, hookBus, eventBus); err != nil {
		return err
	}

	host := scripthost.New(&unboundEngine{})
	r := repl.New(".")
	adapter := repl.NewHostAdapter(host.DebugState(), nil, nil)
	r.AttachDebugAdapter(adapter)
	if err := host.ArmDebug(nil, func(ev debug.PauseEvent) { adapter.OnPause([]debug.Frame{ev.Frame}) }); err != nil {
		logger.Warn("llmkernel: debug hook not armed", "error", err)
	}

	k, err := kernel.New(kernel.Config{
		IP:           ip,
		TenantID:     tenant,
		DiscoveryDir: discoveryDir,
	}, host, sessions, artifacts)
	if err != nil {
		return err
	}
	k.WithDebugHandler(debugHandler(r))

	if err := k.Start(ctx); err != nil {
		return err
	}
	logger.Info("llmkernel: kernel started", "connection", k.ConnectionInfo())

	<-ctx.Done()
	logger.Info("llmkernel: shutting down")
	return k.Shutdown(context.Background(), false)
}

// openStore opens the state-manager's KV backend: a durable
// modernc.org/sqlite-backed store at dbPath, or an in-process memstore
// when dbPath is empty. Sessions and artifacts always use the in-process
// memstore, since sqlitekv only implements storage.KVStore.
func openStore(dbPath string) (storage.KVStore, storage.SessionStore, storage.ArtifactStore, func(), error) {
	m := memstore.New()
	if dbPath == "" {
		return m, m, m, func() {}, nil
	}
	kv, err := sqlitekv.Open(dbPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return kv, m, m, func() { _ = kv.Close() }, nil
}

func buildRegistry(gctx *registry.GlobalContext, stateMgr *state.Manager, sessions *session.Manager, artifacts *artifact.Manager, hookBus *hooks.Bus, eventBus *events.Bus) error {
	b := registry.NewBuilder()
	b.Register(registry.Global{
		Name: registry.GlobalState,
		Inject: func(gctx *registry.GlobalContext) error {
			gctx.SetBridge("state_manager", stateMgr)
			return nil
		},
	})
	b.Register(registry.Global{
		Name: registry.GlobalSession,
		Inject: func(gctx *registry.GlobalContext) error {
			gctx.SetBridge("session_manager", sessions)
			gctx.SetBridge("artifact_manager", artifacts)
			return nil
		},
	})
	b.Register(registry.Global{
		Name: registry.GlobalHook,
		Inject: func(gctx *registry.GlobalContext) error {
			gctx.SetBridge("hook_bus", hookBus)
			return nil
		},
	})
	b.Register(registry.Global{
		Name: registry.GlobalEvent,
		Inject: func(gctx *registry.GlobalContext) error {
			gctx.SetBridge("event_bus", eventBus)
			return nil
		},
	})

	built, err := b.Build()
	if err != nil {
		return err
	}
	return built.InjectAll(gctx)
}

// debugHandler adapts kernel's untyped debug_request content into r's
// attached repl.Adapter.
func debugHandler(r *repl.REPL) kernel.DebugHandler {
	return func(ctx context.Context, content map[string]any) (map[string]any, error) {
		adapter, ok := r.DebugAdapter()
		if !ok {
			return nil, kernelerr.New(kernelerr.Permanent, errors.New("llmkernel: no debug adapter attached"))
		}

		action, _ := content["action"].(string)
		kind, ok := debugRequestKinds[action]
		if !ok {
			return nil, kernelerr.Newf(kernelerr.Validation, "llmkernel: unknown debug action %q", action)
		}

		req := repl.DebugRequest{Kind: kind}
		req.Source, _ = content["source"].(string)
		req.Condition, _ = content["condition"].(string)
		req.WatchName, _ = content["watch_name"].(string)
		req.WatchExpr, _ = content["watch_expr"].(string)
		if line, ok := content["line"].(int); ok {
			req.Line = line
		}
		if idx, ok := content["frame_index"].(int); ok {
			req.FrameIndex = idx
		}

		resp, err := adapter.ProcessDebugRequest(req)
		if err != nil {
			return nil, err
		}
		return map[string]any{"frames": resp.Frames, "watches": resp.Watches, "breakpoint": resp.Breakpoint}, nil
	}
}

// unboundEngine is the placeholder scripthost.Engine this command wires in
// when no concrete script language binding is configured. It lets the
// kernel start and serve kernel_info/shutdown requests; execute_request
// fails until a real binding replaces it.
type unboundEngine struct{}

func (unboundEngine) Name() string { return "none" }

func (unboundEngine) Execute(ctx context.Context, code string, io *scripthost.IOContext) (scripthost.ExecuteResult, error) {
	return scripthost.ExecuteResult{}, kernelerr.New(kernelerr.Permanent, errors.New("llmkernel: no script engine configured"))
}

func (unboundEngine) Complete(ctx context.Context, code string, cursorPos int) (scripthost.CompletionResult, error) {
	return scripthost.CompletionResult{Status: "ok"}, nil
}

func (unboundEngine) Inspect(ctx context.Context, code string, cursorPos, detail int) (scripthost.InspectResult, error) {
	return scripthost.InspectResult{Status: "ok"}, nil
}

func (unboundEngine) IsComplete(ctx context.Context, code string) (scripthost.IsCompleteResult, error) {
	return scripthost.IsCompleteResult{Status: scripthost.IsCompleteUnknown}, nil
}

func (unboundEngine) InstallDebugHook(hook *debug.Hook) error {
	return kernelerr.New(kernelerr.Permanent, errors.New("llmkernel: no script engine configured"))
}

var debugRequestKinds = map[string]repl.RequestKind{
	"navigateStack":    repl.ReqNavigateStack,
	"getStackTrace":    repl.ReqGetStackTrace,
	"setBreakpoint":    repl.ReqSetBreakpoint,
	"removeBreakpoint": repl.ReqRemoveBreakpoint,
	"addWatch":         repl.ReqAddWatch,
	"evaluateWatches":  repl.ReqEvaluateWatches,
	"step":             repl.ReqStep,
	"continue":         repl.ReqContinue,
}
