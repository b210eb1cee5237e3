// Package mcpserver exposes catalog introspection to MCP clients.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sadopc/sqlmeta/internal/adapter"
	"github.com/sadopc/sqlmeta/internal/config"
	"github.com/sadopc/sqlmeta/internal/metadata"
)

// DialFunc opens a connection for an adapter name and DSN.
type DialFunc func(ctx context.Context, adapterName, dsn string) (adapter.Connection, error)

// Server hosts the database_metadata and list_connections tools.
type Server struct {
	cfg    *config.Config
	intro  *metadata.Introspector
	logger *slog.Logger
	dial   DialFunc
	mcp    *mcp.Server
}

// Option configures a Server.
type Option func(*Server)

// WithDialer replaces adapter.Dial.
func WithDialer(fn DialFunc) Option {
	return func(s *Server) { s.dial = fn }
}

// New builds a Server and registers its tools.
func New(cfg *config.Config, intro *metadata.Introspector, logger *slog.Logger, version string, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if intro == nil {
		intro = metadata.NewIntrospector(logger)
	}
	s := &Server{
		cfg:    cfg,
		intro:  intro,
		logger: logger,
		dial:   adapter.Dial,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    "sqlmeta",
			Version: version,
		}, nil),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registerMetadataTool()
	s.registerConnectionsTool()
	return s
}

// MCPServer returns the underlying server, for callers that pick their own
// transport.
func (s *Server) MCPServer() *mcp.Server { return s.mcp }

// Run serves on stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "transport", "stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

// errorResult reports a tool failure to the client. Tool errors travel in
// the result, not as protocol errors.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + err.Error()},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}
	return textResult(string(data))
}

var errNoTarget = errors.New("either connection or dsn is required")
