package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
)

type connectionResult struct {
	Success      bool   `json:"success"`
	ConnectionID string `json:"connection_id"`
	State        string `json:"state"`
}

func newConnectionResult(deps *ConnectorToolDeps) connectionResult {
	return connectionResult{
		Success:      true,
		ConnectionID: deps.Connector.ID(),
		State:        deps.Connector.State().String(),
	}
}

// registerTestConnectionTool validates credentials by opening and closing a connection.
func registerTestConnectionTool(s *server.MCPServer, deps *ConnectorToolDeps) {
	tool := mcp.NewTool(
		"test_connection",
		mcp.WithDescription(
			"Open a connection to the database and close it again. "+
				"Validates host, port and credentials without running SQL.",
		),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := deps.Connector.TestConnection(ctx); err != nil {
			deps.Logger.Warn("Connection test failed",
				zap.String("connection_id", deps.Connector.ID()),
				zap.String("error", logging.SanitizeError(err)))
			return nil, err
		}
		return jsonResult(newConnectionResult(deps))
	})
}

// registerOpenConnectionTool opens the connection ahead of the first query.
func registerOpenConnectionTool(s *server.MCPServer, deps *ConnectorToolDeps) {
	tool := mcp.NewTool(
		"open_connection",
		mcp.WithDescription("Open the database connection. Does nothing if it is already open."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := deps.Connector.Open(ctx); err != nil {
			return nil, err
		}
		return jsonResult(newConnectionResult(deps))
	})
}

// registerCloseConnectionTool closes the connection; the next tool call reconnects.
func registerCloseConnectionTool(s *server.MCPServer, deps *ConnectorToolDeps) {
	tool := mcp.NewTool(
		"close_connection",
		mcp.WithDescription("Close the database connection. The next query or tree call reconnects."),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := deps.Connector.Close(); err != nil {
			return nil, err
		}
		return jsonResult(newConnectionResult(deps))
	})
}
