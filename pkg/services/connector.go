package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/config"
	"github.com/ekaya-inc/ekaya-db2/pkg/models"
)

// ConnectorConfig selects a dialect and addresses one engine.
type ConnectorConfig struct {
	// ID is stamped on every result as connId. Generated when empty.
	ID string

	// Dialect is a registered dialect type.
	Dialect string

	// DriverName overrides the dialect's default database/sql driver.
	DriverName string

	Credentials datasource.Credentials

	// QueriesFile overrides individual catalog query templates.
	QueriesFile string

	OpenRetries int
	SearchLimit int
}

// Connector is one connection lifetime plus the operations run on it.
// The host serializes Open and Close; queries and navigation share the
// single handle.
type Connector struct {
	id       string
	dialect  datasource.DialectInfo
	database string

	conn     *datasource.ConnectionManager
	queries  QueryService
	explorer ExplorerService
	inserts  InsertQueryService
	logger   *zap.Logger
}

// NewConnector looks up the dialect and wires the services over a new
// connection manager. Nothing is opened until the first operation.
func NewConnector(cfg ConnectorConfig, logger *zap.Logger) (*Connector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	reg, err := datasource.Lookup(cfg.Dialect)
	if err != nil {
		return nil, err
	}

	templates, err := reg.Queries.WithOverridesFile(cfg.QueriesFile)
	if err != nil {
		return nil, fmt.Errorf("load queries for %s: %w", cfg.Dialect, err)
	}
	if err := templates.Validate(); err != nil {
		return nil, fmt.Errorf("queries for %s: %w", cfg.Dialect, err)
	}

	driverName := cfg.DriverName
	if driverName == "" {
		driverName = reg.DriverName
	}
	client := reg.NewClient(driverName, templates, logger)

	return newConnector(cfg, reg.Info, client, reg.ConnectionString, templates, logger), nil
}

// NewConnectorFromConfig builds a connector from loaded configuration.
func NewConnectorFromConfig(cfg *config.Config, logger *zap.Logger) (*Connector, error) {
	conn := cfg.Connection
	return NewConnector(ConnectorConfig{
		ID:          conn.ID,
		Dialect:     conn.Type,
		DriverName:  conn.DriverName,
		Credentials: conn.Credentials(),
		QueriesFile: conn.QueriesFile,
		OpenRetries: conn.OpenRetries,
		SearchLimit: conn.SearchLimit,
	}, logger)
}

func newConnector(
	cfg ConnectorConfig,
	info datasource.DialectInfo,
	client datasource.Client,
	builder datasource.ConnectionStringBuilder,
	templates *datasource.QuerySet,
	logger *zap.Logger,
) *Connector {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}
	logger = logger.With(zap.String("connection_id", id), zap.String("dialect", info.Type))

	conn := datasource.NewConnectionManager(datasource.ConnectionManagerConfig{
		Client:      client,
		Credentials: cfg.Credentials,
		Builder:     builder,
		OpenRetries: cfg.OpenRetries,
	}, logger)

	queries := NewQueryService(conn, id, logger)
	return &Connector{
		id:       id,
		dialect:  info,
		database: cfg.Credentials.Database,
		conn:     conn,
		queries:  queries,
		explorer: NewExplorerService(queries, templates, cfg.SearchLimit, logger),
		inserts:  NewInsertQueryService(conn, logger),
		logger:   logger,
	}
}

// ID is the connection id stamped on results.
func (c *Connector) ID() string { return c.id }

// Dialect describes the engine the connector talks to.
func (c *Connector) Dialect() datasource.DialectInfo { return c.dialect }

// State reports the connection lifecycle state.
func (c *Connector) State() datasource.State { return c.conn.State() }

// Stats reports connection statistics.
func (c *Connector) Stats() datasource.ConnectionStats { return c.conn.GetStats() }

// Open opens the connection if it is not open yet.
func (c *Connector) Open(ctx context.Context) error {
	_, err := c.conn.Open(ctx)
	return err
}

// Close closes the connection. The next operation reconnects.
func (c *Connector) Close() error {
	return c.conn.Close()
}

// TestConnection opens and immediately closes a connection.
func (c *Connector) TestConnection(ctx context.Context) error {
	return c.conn.TestConnection(ctx)
}

// Query runs every statement of sqlText and returns one result per statement.
func (c *Connector) Query(ctx context.Context, sqlText, requestID string) ([]*models.QueryResult, error) {
	return c.queries.Query(ctx, sqlText, requestID)
}

// GetChildrenForItem expands one explorer node.
func (c *Connector) GetChildrenForItem(ctx context.Context, item, parent models.Node) ([]models.Node, error) {
	return c.explorer.GetChildren(ctx, item, parent)
}

// SearchItems searches the catalog for tables, views or columns.
func (c *Connector) SearchItems(ctx context.Context, itemType models.NodeKind, search string, extra map[string]any) ([]models.Node, error) {
	return c.explorer.SearchItems(ctx, itemType, search, extra)
}

// GetInsertQuery builds an INSERT template for a table node.
func (c *Connector) GetInsertQuery(ctx context.Context, item models.Node, columns []*models.ColumnNode) (string, error) {
	return c.inserts.GetInsertQuery(ctx, item, columns)
}

// RootNode is the connection node the tree starts from.
func (c *Connector) RootNode() *models.ConnectionNode {
	kind := models.NodeKindConnection
	if c.conn.State() == datasource.StateOpen {
		kind = models.NodeKindConnectedConnection
	}
	return &models.ConnectionNode{
		Type:      kind,
		Label:     c.database,
		ID:        c.id,
		ChildType: models.NodeKindSchema,
	}
}
