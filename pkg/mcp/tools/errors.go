package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/ekaya-db2/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// This is used to return actionable error information to the client
// as a successful tool result, ensuring error details are visible
// rather than being swallowed by the MCP client.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable/actionable errors the caller can fix
// (e.g., invalid parameters, a node that does not decode).
//
// Do NOT use this for connection failures - those are returned as Go errors.
//
// Example:
//
//	if item == nil {
//	    return NewErrorResult("invalid_parameters", "item is required"), nil
//	}
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
//
// Example:
//
//	return NewErrorResultWithDetails(
//	    "invalid_node",
//	    "unknown node type",
//	    map[string]any{"type": "connection.index"},
//	), nil
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// connectorErrorResult maps expected connector failures to error results.
// It returns nil for anything else; callers return those as Go errors.
func connectorErrorResult(err error) *mcp.CallToolResult {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrInvalidNode):
		return NewErrorResult("invalid_node", err.Error())
	case errors.Is(err, apperrors.ErrInsertQuery):
		return NewErrorResult("insert_query_failed", err.Error())
	default:
		return nil
	}
}
