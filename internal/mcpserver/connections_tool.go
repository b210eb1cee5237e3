package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// connectionEntry describes one saved connection. Credentials are never
// included.
type connectionEntry struct {
	Name    string `json:"name"`
	Adapter string `json:"adapter"`
	Target  string `json:"target"`
	Schema  string `json:"schema,omitempty"`
}

type listConnectionsOutput struct {
	Connections []connectionEntry `json:"connections"`
	Count       int               `json:"count"`
}

type listConnectionsInput struct{}

func (s *Server) registerConnectionsTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "list_connections",
		Description: "List the saved connections database_metadata accepts by name.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ listConnectionsInput) (*mcp.CallToolResult, any, error) {
		return s.handleListConnections(ctx, req)
	})
}

func (s *Server) handleListConnections(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, any, error) {
	entries := make([]connectionEntry, 0, len(s.cfg.Connections))
	for _, sc := range s.cfg.Connections {
		entries = append(entries, connectionEntry{
			Name:    sc.Name,
			Adapter: sc.AdapterName(),
			Target:  sc.DisplayString(),
			Schema:  sc.Schema,
		})
	}
	s.logger.Debug("list_connections", "count", len(entries))

	return jsonResult(listConnectionsOutput{
		Connections: entries,
		Count:       len(entries),
	}), nil, nil
}
