package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/mcp/tools"
)

// ServerName is reported to MCP clients.
const ServerName = "ekaya-db2"

// Server wraps the mcp-go MCPServer with ekaya-db2 patterns.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a new MCP server instance. Every tool call is logged.
func NewServer(name, version string, logger *zap.Logger) *Server {
	audit := NewAuditLogger(logger)
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithHooks(audit.Hooks()),
	)

	return &Server{
		mcp:    mcpServer,
		logger: logger,
	}
}

// NewConnectorServer creates a server exposing the connector tools.
func NewConnectorServer(version string, connector tools.Connector, logger *zap.Logger) *Server {
	s := NewServer(ServerName, version, logger)
	deps := &tools.ConnectorToolDeps{
		Connector: connector,
		Logger:    logger,
	}
	tools.RegisterHealthTool(s.mcp, version, deps)
	tools.RegisterConnectorTools(s.mcp, deps)
	return s
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The HTTP mux handles routing to /mcp, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// ServeStdio serves MCP over stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// RegisterTool is a convenience wrapper for registering a tool.
func (s *Server) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
}
