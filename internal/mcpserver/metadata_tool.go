package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sadopc/sqlmeta/internal/adapter"
)

// metadataInput is the argument object of database_metadata.
type metadataInput struct {
	Connection string `json:"connection,omitempty" jsonschema:"name of a saved connection from the sqlmeta config"`
	DSN        string `json:"dsn,omitempty" jsonschema:"connection string, used when connection is empty"`
	Adapter    string `json:"adapter,omitempty" jsonschema:"adapter name; detected from the dsn when empty"`
	Schema     string `json:"schema,omitempty" jsonschema:"schema to describe; the provider default is used when empty"`
}

func (s *Server) registerMetadataTool() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name: "database_metadata",
		Description: "Describe the tables and columns of a database schema. " +
			"Returns one line per table: Table 'name' with columns: col (TYPE), ...",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, req *mcp.CallToolRequest, in metadataInput) (*mcp.CallToolResult, any, error) {
		return s.handleMetadata(ctx, req, in)
	})
}

func (s *Server) handleMetadata(ctx context.Context, _ *mcp.CallToolRequest, in metadataInput) (*mcp.CallToolResult, any, error) {
	adapterName, dsn, schemaName, err := s.target(in)
	if err != nil {
		s.logger.Warn("database_metadata rejected", "error", err)
		return errorResult(err), nil, nil
	}

	s.logger.Info("database_metadata", "connection", in.Connection, "adapter", adapterName, "schema", schemaName)

	if err := adapter.CheckSchema(adapterName, dsn, schemaName); err != nil {
		return errorResult(err), nil, nil
	}

	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	conn, err := s.dial(ctx, adapterName, dsn)
	if err != nil {
		s.logger.Error("database_metadata connect failed", "adapter", adapterName, "error", err)
		return errorResult(err), nil, nil
	}
	defer conn.Close()

	res, err := s.intro.Describe(ctx, conn, schemaName)
	if err != nil {
		return errorResult(err), nil, nil
	}
	if res.Summary == "" {
		return textResult(fmt.Sprintf("No tables found in %s schema %q.", res.Provider, res.Schema)), nil, nil
	}
	return textResult(res.Summary), nil, nil
}

// target works out the adapter, DSN and schema for a call. A saved
// connection wins over an explicit DSN. An empty adapter is detected
// from the DSN by the dialer.
func (s *Server) target(in metadataInput) (adapterName, dsn, schemaName string, err error) {
	schemaName = in.Schema
	if in.Connection != "" {
		sc, err := s.cfg.Find(in.Connection)
		if err != nil {
			return "", "", "", err
		}
		conn := *sc
		if err := conn.ResolvePassword(); err != nil {
			return "", "", "", err
		}
		if schemaName == "" {
			schemaName = conn.Schema
		}
		return conn.AdapterName(), conn.BuildDSN(), schemaName, nil
	}
	if in.DSN == "" {
		return "", "", "", errNoTarget
	}
	return in.Adapter, in.DSN, schemaName, nil
}
