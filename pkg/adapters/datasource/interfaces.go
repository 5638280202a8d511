package datasource

import "context"

// Client opens connections to a relational engine.
// Implementations wrap a concrete engine driver.
type Client interface {
	// Open establishes one connection from a connection descriptor.
	Open(ctx context.Context, connString string) (Handle, error)
}

// Handle is one live engine connection.
// It is owned by the ConnectionManager that opened it.
type Handle interface {
	// QuerySync runs a single statement and returns every row.
	// Statements that produce no result set return an empty slice.
	QuerySync(ctx context.Context, query string) ([]*Row, error)

	// Columns looks up column metadata for a table in catalog order.
	// Each row carries COLUMN_NAME and TYPE_NAME. An empty columnPattern
	// matches every column.
	Columns(ctx context.Context, catalog, schema, table, columnPattern string) ([]*Row, error)

	// CloseSync releases the connection.
	CloseSync() error
}
