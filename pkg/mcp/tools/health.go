package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

type healthResult struct {
	Status     string                      `json:"status"`
	Version    string                      `json:"version"`
	Connection *datasource.ConnectionStats `json:"connection,omitempty"`
}

// RegisterHealthTool adds a health check tool to the MCP server.
// The tool returns the server status, version and connection state.
// It never opens the connection.
func RegisterHealthTool(s *server.MCPServer, version string, deps *ConnectorToolDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status and version"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result := healthResult{Status: "ok", Version: version}
		if deps != nil && deps.Connector != nil {
			stats := deps.Connector.Stats()
			result.Connection = &stats
		}
		return jsonResult(result)
	})
}
