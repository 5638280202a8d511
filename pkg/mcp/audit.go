package mcp

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
)

// maxParamSize caps string parameters in audit log entries.
const maxParamSize = 10 * 1024

// sqlStringLiteralPattern matches single-quoted SQL string literals, with '' escapes.
var sqlStringLiteralPattern = regexp.MustCompile(`'(?:[^']|'')*'`)

// AuditLogger writes one structured log entry per MCP tool call.
type AuditLogger struct {
	logger *zap.Logger

	// startTimes tracks when tool calls begin, keyed by request ID.
	startTimes sync.Map
}

// NewAuditLogger creates an AuditLogger that records tool calls.
func NewAuditLogger(logger *zap.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger.Named("mcp-audit"),
	}
}

// Hooks returns mcp-go Hooks configured to capture tool call events.
func (a *AuditLogger) Hooks() *server.Hooks {
	hooks := &server.Hooks{}
	hooks.AddBeforeCallTool(a.beforeCallTool)
	hooks.AddAfterCallTool(a.afterCallTool)
	hooks.AddOnError(a.onError)
	return hooks
}

func (a *AuditLogger) beforeCallTool(_ context.Context, id any, _ *mcplib.CallToolRequest) {
	a.startTimes.Store(id, time.Now())
}

func (a *AuditLogger) afterCallTool(_ context.Context, id any, req *mcplib.CallToolRequest, result *mcplib.CallToolResult) {
	startTime := a.loadAndDeleteStart(id)

	isError := result != nil && result.IsError
	a.logger.Info("Tool call",
		zap.String("tool", req.Params.Name),
		zap.Any("params", sanitizeParams(req.Params.Arguments)),
		zap.Bool("is_error", isError),
		zap.Duration("duration", time.Since(startTime)))
}

func (a *AuditLogger) onError(_ context.Context, id any, method mcplib.MCPMethod, message any, err error) {
	if method != mcplib.MethodToolsCall {
		return
	}

	req, ok := message.(*mcplib.CallToolRequest)
	if !ok {
		return
	}

	startTime := a.loadAndDeleteStart(id)
	a.logger.Warn("Tool call failed",
		zap.String("tool", req.Params.Name),
		zap.Any("params", sanitizeParams(req.Params.Arguments)),
		zap.String("error", logging.SanitizeError(err)),
		zap.Duration("duration", time.Since(startTime)))
}

func (a *AuditLogger) loadAndDeleteStart(id any) time.Time {
	if v, ok := a.startTimes.LoadAndDelete(id); ok {
		return v.(time.Time)
	}
	return time.Now()
}

// sanitizeParams truncates long strings and redacts string literals in SQL
// parameters before they are logged.
func sanitizeParams(args any) map[string]any {
	params, ok := args.(map[string]any)
	if !ok || len(params) == 0 {
		return nil
	}

	sanitized := make(map[string]any, len(params))
	for k, v := range params {
		sanitized[k] = sanitizeValue(k, v)
	}
	return sanitized
}

func sanitizeValue(key string, value any) any {
	switch val := value.(type) {
	case string:
		return sanitizeStringParam(key, val)
	case map[string]any:
		return sanitizeParams(val)
	default:
		return value
	}
}

func sanitizeStringParam(key, val string) string {
	if len(val) > maxParamSize {
		val = val[:maxParamSize] + "...[truncated]"
	}
	if isSQLParam(key) {
		val = sqlStringLiteralPattern.ReplaceAllString(val, "'***'")
	}
	return val
}

// isSQLParam returns true if a parameter key likely contains SQL.
func isSQLParam(key string) bool {
	lower := strings.ToLower(key)
	return lower == "sql" || lower == "query" || strings.HasSuffix(lower, "_sql")
}
