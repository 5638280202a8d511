package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// trimString removes leading and trailing whitespace from a string.
// This is a common helper used across MCP tool parameter validation.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return val
}

// getOptionalMap extracts an optional object argument from the request.
func getOptionalMap(req mcp.CallToolRequest, key string) map[string]any {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	val, ok := args[key].(map[string]any)
	if !ok {
		return nil
	}
	return val
}

// getOptionalValue extracts an argument of any type from the request.
func getOptionalValue(req mcp.CallToolRequest, key string) any {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return nil
	}
	return args[key]
}

// jsonResult marshals v as the text content of a tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
