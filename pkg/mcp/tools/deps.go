package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/models"
)

// Connector is the connector surface the tools call.
// *services.Connector satisfies it.
type Connector interface {
	ID() string
	State() datasource.State
	Stats() datasource.ConnectionStats
	RootNode() *models.ConnectionNode

	Open(ctx context.Context) error
	Close() error
	TestConnection(ctx context.Context) error
	Query(ctx context.Context, sqlText, requestID string) ([]*models.QueryResult, error)
	GetChildrenForItem(ctx context.Context, item, parent models.Node) ([]models.Node, error)
	SearchItems(ctx context.Context, itemType models.NodeKind, search string, extra map[string]any) ([]models.Node, error)
	GetInsertQuery(ctx context.Context, item models.Node, columns []*models.ColumnNode) (string, error)
}

// ConnectorToolDeps contains dependencies for the connector tools.
type ConnectorToolDeps struct {
	Connector Connector
	Logger    *zap.Logger
}

// RegisterConnectorTools registers every connector tool.
func RegisterConnectorTools(s *server.MCPServer, deps *ConnectorToolDeps) {
	registerTestConnectionTool(s, deps)
	registerOpenConnectionTool(s, deps)
	registerCloseConnectionTool(s, deps)
	registerQueryTool(s, deps)
	registerGetChildrenTool(s, deps)
	registerSearchItemsTool(s, deps)
	registerInsertQueryTool(s, deps)
}
