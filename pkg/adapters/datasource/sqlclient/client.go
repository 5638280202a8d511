// Package sqlclient implements the engine client boundary over database/sql.
// Every dialect opens exactly one physical connection through it.
package sqlclient

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/apperrors"
)

// OpenFunc opens a *sql.DB. Swapped in tests to inject go-sqlmock.
type OpenFunc func(driverName, dataSourceName string) (*sql.DB, error)

// Client opens database/sql connections for one driver.
type Client struct {
	driverName string
	queries    *datasource.QuerySet
	open       OpenFunc
	logger     *zap.Logger
}

var _ datasource.Client = (*Client)(nil)

// New creates a client for a registered database/sql driver.
// queries must define lookupColumns for Handle.Columns to work.
func New(driverName string, queries *datasource.QuerySet, logger *zap.Logger) datasource.Client {
	return NewWithOpener(driverName, queries, sql.Open, logger)
}

// NewWithOpener is New with a custom opener.
func NewWithOpener(driverName string, queries *datasource.QuerySet, open OpenFunc, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		driverName: driverName,
		queries:    queries,
		open:       open,
		logger:     logger.Named("sqlclient"),
	}
}

// Open opens one connection and pings it so credential problems surface here.
func (c *Client) Open(ctx context.Context, connString string) (datasource.Handle, error) {
	db, err := c.open(c.driverName, connString)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.driverName, err)
	}

	// One handle is one connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &Handle{db: db, queries: c.queries, logger: c.logger}, nil
}

// Handle is one open database/sql connection.
type Handle struct {
	db      *sql.DB
	queries *datasource.QuerySet
	logger  *zap.Logger
	closed  atomic.Bool
}

var _ datasource.Handle = (*Handle)(nil)

// QuerySync runs one statement and collects every row in column order.
func (h *Handle) QuerySync(ctx context.Context, query string) ([]*datasource.Row, error) {
	if h.closed.Load() {
		return nil, apperrors.ErrConnectionClosed
	}
	rows, err := h.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// Columns renders the dialect's lookupColumns template and runs it.
func (h *Handle) Columns(ctx context.Context, catalog, schema, table, columnPattern string) ([]*datasource.Row, error) {
	query, err := h.queries.Render(datasource.QueryLookupColumns, datasource.QueryParams{
		Database: catalog,
		Schema:   schema,
		Table:    table,
		Search:   columnPattern,
	})
	if err != nil {
		return nil, err
	}

	h.logger.Debug("Looking up columns",
		zap.String("schema", schema),
		zap.String("table", table),
	)
	return h.QuerySync(ctx, query)
}

// CloseSync closes the underlying connection. Later queries on the
// handle fail with apperrors.ErrConnectionClosed.
func (h *Handle) CloseSync() error {
	h.closed.Store(true)
	return h.db.Close()
}

// scanRows reads every remaining row. Driver byte slices are copied to strings.
func scanRows(rows *sql.Rows) ([]*datasource.Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	result := make([]*datasource.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		row := datasource.NewRow()
		for i, col := range columns {
			row.Set(col, normalizeValue(values[i]))
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	default:
		return val
	}
}
