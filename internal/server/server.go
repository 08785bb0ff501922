// Package server wires the analysis engine into an MCP server. This is the
// composition root: it builds the store, registry, signal source and engine,
// registers every operation as an MCP tool, and binds the stdio transport.
// No analysis logic lives here.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/stakewatch/stakewatch/internal/config"
	"github.com/stakewatch/stakewatch/internal/engine"
	"github.com/stakewatch/stakewatch/internal/ops"
	"github.com/stakewatch/stakewatch/internal/registry"
	"github.com/stakewatch/stakewatch/internal/signal"
)

// Runtime bundles the engine and operation registry with their lifecycle.
type Runtime struct {
	Config config.Config
	Engine *engine.Engine
	Ops    *ops.Registry

	cancel  context.CancelFunc
	cleanup []func() error
}

// NewRuntime builds the full analysis stack from configuration. The returned
// runtime must be closed on shutdown.
func NewRuntime(cfg config.Config) (*Runtime, error) {
	store, err := registry.NewSQLiteStore(cfg.Registry.StorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile store: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt := &Runtime{
		Config:  cfg,
		cancel:  cancel,
		cleanup: []func() error{store.Close},
	}

	seeded := signal.NewSeededSource(cfg.Signals.Seed)
	var src signal.Source = seeded
	if cfg.Signals.Kafka.Enabled {
		records := signal.NewRecordSource(seeded)
		ingestor := signal.NewKafkaIngestor(
			cfg.Signals.Kafka.Brokers,
			cfg.Signals.Kafka.ConsumerGroup,
			cfg.Signals.Kafka.Topic,
			records,
		)
		ingestor.Start(ctx)
		rt.cleanup = append(rt.cleanup, ingestor.Close)
		src = records
	}

	mode := registry.ModeSandbox
	if cfg.Registry.Mode == "strict" {
		mode = registry.ModeStrict
	}
	reg := registry.New(registry.Options{
		Store:            store,
		Signals:          src,
		Mode:             mode,
		PersistBootstrap: cfg.Registry.PersistBootstrap,
	})

	rt.Engine = engine.New(reg, src, engine.Options{
		MaxNetworkNodes: cfg.Analysis.MaxNetworkNodes,
		MaxWorkers:      cfg.Analysis.MaxWorkers,
	})

	rt.Ops = ops.NewRegistry()
	for _, op := range []ops.Operation{
		ops.NewDetectCoalitionFormation(rt.Engine),
		ops.NewTrackCoalitionEvolution(rt.Engine),
		ops.NewPredictGroupActions(rt.Engine),
		ops.NewAnalyzeGroupInfluence(rt.Engine),
		ops.NewMapStakeholderNetworks(rt.Engine),
		ops.NewIdentifyGroupLeaders(rt.Engine),
		ops.NewMonitorGroupMessaging(rt.Engine),
	} {
		rt.Ops.Register(op)
	}

	return rt, nil
}

// Close stops background ingestion and releases the store.
func (rt *Runtime) Close() {
	rt.cancel()
	for _, fn := range rt.cleanup {
		if err := fn(); err != nil {
			slog.Warn("Runtime cleanup failed", "error", err)
		}
	}
}

// NewMCPServer registers every operation as an MCP tool on a new server
// instance.
func NewMCPServer(rt *Runtime, version string) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		rt.Config.Server.Name,
		version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)

	timeout := time.Duration(rt.Config.Analysis.RequestTimeoutSeconds) * time.Second
	for _, op := range rt.Ops.List() {
		schema, err := json.Marshal(op.Parameters())
		if err != nil {
			slog.Error("Failed to encode tool schema", "operation", op.Name(), "error", err)
			continue
		}
		tool := mcp.NewToolWithRawSchema(op.Name(), op.Description(), schema)
		s.AddTool(tool, toolHandler(rt.Ops, op.Name(), timeout))
	}
	return s
}

// ServeStdio runs the MCP server over stdin/stdout until the client
// disconnects.
func ServeStdio(s *mcpserver.MCPServer) error {
	return mcpserver.ServeStdio(s)
}

// toolHandler adapts one registered operation into an MCP tool handler with
// a request-scoped timeout. Operation errors become structured error
// payloads rather than protocol failures.
func toolHandler(reg *ops.Registry, name string, timeout time.Duration) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		out, err := reg.Execute(ctx, name, req.GetArguments())
		if err != nil {
			var opErr *ops.Error
			if errors.As(err, &opErr) {
				return mcp.NewToolResultError(opErr.Envelope()), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(out), nil
	}
}
