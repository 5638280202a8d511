package services

import (
	"context"
	"sync"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
)

// testQueries renders each catalog query to a short, predictable statement.
const testQueries = `
queries:
  fetchSchemas: "schemas {{lit .Database}}"
  fetchTables: "tables {{lit .Schema}}"
  fetchViews: "views {{lit .Schema}}"
  fetchColumns: "columns {{lit .Schema}} {{lit .Table}}"
  fetchPrimaryKeys: "pks {{lit .Schema}} {{lit .Table}}"
  fetchForeignKeys: "fks {{lit .Schema}} {{lit .Table}}"
  searchTables: "search tables {{like .Search}} {{.Limit}}"
  searchColumns: "search columns {{like .Search}}{{range .Tables}} {{lit .Label}}{{end}} {{.Limit}}"
  lookupColumns: "lookup {{lit .Schema}} {{lit .Table}}"
`

type fakeResponse struct {
	rows []*datasource.Row
	err  error
}

// fakeHandle answers statements from a script. Unscripted statements
// return no rows.
type fakeHandle struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	executed  []string

	columns      []*datasource.Row
	columnsErr   error
	columnsCalls [][]string
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{responses: make(map[string]fakeResponse)}
}

func (h *fakeHandle) on(statement string, rows ...*datasource.Row) *fakeHandle {
	h.responses[statement] = fakeResponse{rows: rows}
	return h
}

func (h *fakeHandle) fail(statement string, err error) *fakeHandle {
	h.responses[statement] = fakeResponse{err: err}
	return h
}

func (h *fakeHandle) QuerySync(ctx context.Context, query string) ([]*datasource.Row, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.executed = append(h.executed, query)
	r := h.responses[query]
	return r.rows, r.err
}

func (h *fakeHandle) Columns(ctx context.Context, catalog, schema, table, columnPattern string) ([]*datasource.Row, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.columnsCalls = append(h.columnsCalls, []string{catalog, schema, table, columnPattern})
	return h.columns, h.columnsErr
}

func (h *fakeHandle) CloseSync() error { return nil }

func (h *fakeHandle) statements() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.executed...)
}

// fakeOpener hands out one handle, or fails.
type fakeOpener struct {
	handle *fakeHandle
	err    error
	opens  int
}

func (o *fakeOpener) Open(ctx context.Context) (datasource.Handle, error) {
	o.opens++
	if o.err != nil {
		return nil, o.err
	}
	return o.handle, nil
}
