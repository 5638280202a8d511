package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	_ "github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/sqlite"
	"github.com/ekaya-inc/ekaya-db2/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-db2/pkg/config"
	"github.com/ekaya-inc/ekaya-db2/pkg/models"
)

const fixtureBatch = `
CREATE TABLE customers (id INTEGER PRIMARY KEY, name VARCHAR(100) NOT NULL);
CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER NOT NULL REFERENCES customers(id));
CREATE TABLE audit_log (message TEXT);
INSERT INTO customers VALUES (1, 'Ada');
SELECT id, name FROM customers;
SELECT * FROM missing
`

func newSQLiteConnector(t *testing.T) *Connector {
	t.Helper()
	c, err := NewConnector(ConnectorConfig{
		ID:          "local",
		Dialect:     "sqlite",
		Credentials: datasource.Credentials{Database: ":memory:"},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func findNode(t *testing.T, nodes []models.Node, label string) models.Node {
	t.Helper()
	for _, n := range nodes {
		if n.NodeLabel() == label {
			return n
		}
	}
	require.Failf(t, "node not found", "no node labeled %q in %v", label, labelsOf(nodes))
	return nil
}

func TestConnector_SQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	c := newSQLiteConnector(t)

	assert.Equal(t, datasource.StateUninitialized, c.State())
	assert.Equal(t, models.NodeKindConnection, c.RootNode().Type)

	results, err := c.Query(ctx, fixtureBatch, "req-1")
	require.NoError(t, err)
	require.Len(t, results, 6)
	assert.Equal(t, datasource.StateOpen, c.State())

	for _, r := range results[:4] {
		assert.Equal(t, []string{}, r.Cols, r.Query)
	}
	assert.Equal(t, []string{"id", "name"}, results[4].Cols)
	require.Len(t, results[4].Results, 1)
	assert.Equal(t, "Ada", results[4].Results[0].String("name"))
	assert.True(t, results[5].Error)
	assert.Contains(t, results[5].Results[0].String(models.ErrorColumn), "no such table")
	for _, r := range results {
		assert.Equal(t, "local", r.ConnectionID)
		assert.Equal(t, "req-1", r.RequestID)
	}

	root := c.RootNode()
	assert.Equal(t, models.NodeKindConnectedConnection, root.Type)

	schemas, err := c.GetChildrenForItem(ctx, root, nil)
	require.NoError(t, err)
	schema := findNode(t, schemas, "main")

	groups, err := c.GetChildrenForItem(ctx, schema, root)
	require.NoError(t, err)
	tables, err := c.GetChildrenForItem(ctx, findNode(t, groups, models.GroupTables), schema)
	require.NoError(t, err)
	assert.Equal(t, []string{"audit_log", "customers", "orders"}, labelsOf(tables))

	orders := findNode(t, tables, "orders")
	tableGroups, err := c.GetChildrenForItem(ctx, orders, nil)
	require.NoError(t, err)

	columns, err := c.GetChildrenForItem(ctx, findNode(t, tableGroups, models.GroupColumns), orders)
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "pk", columns[0].(*models.ColumnNode).IconName)
	assert.Equal(t, "fk", columns[1].(*models.ColumnNode).IconName)

	fks, err := c.GetChildrenForItem(ctx, findNode(t, tableGroups, models.GroupForeignKeys), orders)
	require.NoError(t, err)
	assert.Equal(t, []string{"customer_id"}, labelsOf(fks))

	auditGroups, err := c.GetChildrenForItem(ctx, findNode(t, tables, "audit_log"), nil)
	require.NoError(t, err)
	keys, err := c.GetChildrenForItem(ctx, findNode(t, auditGroups, models.GroupUniqueConstraints), nil)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.IsType(t, &models.NoPrimaryKeyNode{}, keys[0])

	found, err := c.SearchItems(ctx, models.NodeKindTable, "cust", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"customers"}, labelsOf(found))

	insert, err := c.GetInsertQuery(ctx, findNode(t, tables, "customers"), nil)
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "main"."customers" (id, name) VALUES ('${1:id:INTEGER}', '${2:name:VARCHAR(100)}')`, insert)

	_, err = c.GetInsertQuery(ctx, models.NewTableNode("missing", "main", ""), nil)
	assert.ErrorIs(t, err, apperrors.ErrInsertQuery)
}

func TestConnector_CloseThenReconnect(t *testing.T) {
	ctx := context.Background()
	c := newSQLiteConnector(t)

	require.NoError(t, c.Close(), "close without a handle is a no-op")

	_, err := c.Query(ctx, "CREATE TABLE t (id INTEGER)", "")
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.Equal(t, datasource.StateClosed, c.State())

	// A fresh in-memory database: the table is gone.
	results, err := c.Query(ctx, "SELECT * FROM t", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Error)
	assert.Equal(t, datasource.StateOpen, c.State())
	assert.Equal(t, 2, c.Stats().Opens)
}

func TestConnector_TestConnection(t *testing.T) {
	c := newSQLiteConnector(t)

	require.NoError(t, c.TestConnection(context.Background()))
	assert.Equal(t, datasource.StateClosed, c.State())
}

func TestNewConnector_UnsupportedDialect(t *testing.T) {
	_, err := NewConnector(ConnectorConfig{Dialect: "oracle"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedDialect)
}

func TestNewConnector_GeneratesID(t *testing.T) {
	a, err := NewConnector(ConnectorConfig{Dialect: "sqlite"}, nil)
	require.NoError(t, err)
	b, err := NewConnector(ConnectorConfig{Dialect: "sqlite"}, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "sqlite", a.Dialect().Type)
}

func TestNewConnector_MissingOverridesFile(t *testing.T) {
	_, err := NewConnector(ConnectorConfig{Dialect: "sqlite", QueriesFile: "/nonexistent/queries.yaml"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load queries for sqlite")
}

func TestNewConnectorFromConfig(t *testing.T) {
	cfg := &config.Config{
		Connection: config.ConnectionConfig{
			ID:       "from-config",
			Type:     "sqlite",
			Database: ":memory:",
		},
	}

	c, err := NewConnectorFromConfig(cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Equal(t, "from-config", c.ID())
	require.NoError(t, c.Open(context.Background()))
	assert.Equal(t, datasource.StateOpen, c.State())
}
