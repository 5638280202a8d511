package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// registerQueryTool runs a batch of ';'-separated statements.
func registerQueryTool(s *server.MCPServer, deps *ConnectorToolDeps) {
	tool := mcp.NewTool(
		"query",
		mcp.WithDescription(
			"Run one or more SQL statements separated by ';'. "+
				"Returns one result per non-blank statement, in order. "+
				"A failed statement returns an Error result and does not stop the others. "+
				"Semicolons inside string literals are not supported.",
		),
		mcp.WithString(
			"sql",
			mcp.Required(),
			mcp.Description("SQL text, e.g. \"SELECT * FROM SYSCAT.TABLES FETCH FIRST 5 ROWS ONLY\""),
		),
		mcp.WithString(
			"request_id",
			mcp.Description("Optional: correlation id copied to every result"),
		),
		mcp.WithDestructiveHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if trimString(sqlText) == "" {
			return NewErrorResult("invalid_parameters", "sql cannot be empty"), nil
		}

		results, err := deps.Connector.Query(ctx, sqlText, getOptionalString(req, "request_id"))
		if err != nil {
			return nil, err
		}
		return jsonResult(results)
	})
}
