package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource/sqlite"
)

const fixtureSQL = `CREATE TABLE customers (id INTEGER PRIMARY KEY, name VARCHAR(100) NOT NULL);
CREATE TABLE orders (id INTEGER PRIMARY KEY, customer_id INTEGER REFERENCES customers(id));
INSERT INTO customers (id, name) VALUES (1, 'alice')`

// writeConfig points a config file at a fresh SQLite database file.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf(`env: test
log_level: error
connection:
  id: cli
  type: sqlite
  database: %s
`, filepath.Join(dir, "cli.db"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd("test-version")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func seeded(t *testing.T) string {
	t.Helper()
	cfgPath := writeConfig(t)
	_, err := run(t, cfgPath, "query", fixtureSQL)
	require.NoError(t, err)
	return cfgPath
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "/nonexistent/config.yaml", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ekaya-db2 test-version")
	assert.Contains(t, out, "sqlite")
}

func TestQueryCommand_Table(t *testing.T) {
	cfgPath := seeded(t)

	out, err := run(t, cfgPath, "query", "SELECT id, name FROM customers; SELECT * FROM missing")
	require.NoError(t, err)
	assert.Contains(t, out, "-- SELECT id, name FROM customers")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "Query ok with 1 results")
	assert.Contains(t, out, "no such table")
}

func TestQueryCommand_JSON(t *testing.T) {
	cfgPath := seeded(t)

	out, err := run(t, cfgPath, "-o", "json", "query", "--request-id", "req-1", "SELECT name FROM customers;;")
	require.NoError(t, err)

	var results []struct {
		ConnID    string           `json:"connId"`
		RequestID string           `json:"requestId"`
		Cols      []string         `json:"cols"`
		Results   []map[string]any `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "cli", results[0].ConnID)
	assert.Equal(t, "req-1", results[0].RequestID)
	assert.Equal(t, []string{"name"}, results[0].Cols)
	assert.Equal(t, "alice", results[0].Results[0]["name"])
}

func TestQueryCommand_FromFile(t *testing.T) {
	cfgPath := writeConfig(t)
	sqlPath := filepath.Join(t.TempDir(), "batch.sql")
	require.NoError(t, os.WriteFile(sqlPath, []byte("SELECT 7 AS seven;"), 0o600))

	out, err := run(t, cfgPath, "query", "--file", sqlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Query ok with 1 results")
}

func TestQueryCommand_NoSQL(t *testing.T) {
	_, err := run(t, writeConfig(t), "query", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no SQL given")
}

func TestTestCommand(t *testing.T) {
	out, err := run(t, writeConfig(t), "test")
	require.NoError(t, err)
	assert.Contains(t, out, "Connection OK (SQLite")
}

func TestTreeCommand(t *testing.T) {
	cfgPath := seeded(t)

	out, err := run(t, cfgPath, "tree")
	require.NoError(t, err)
	assert.Contains(t, out, "main")

	out, err = run(t, cfgPath, "tree", "main", "Tables")
	require.NoError(t, err)
	assert.Contains(t, out, "customers")
	assert.Contains(t, out, "orders")

	out, err = run(t, cfgPath, "-o", "json", "tree", "main", "tables", "customers", "Column")
	require.NoError(t, err)
	var columns []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &columns))
	require.Len(t, columns, 2)
	assert.Equal(t, "id", columns[0]["label"])
	assert.Equal(t, "pk", columns[0]["iconName"])
}

func TestTreeCommand_UnknownLabel(t *testing.T) {
	_, err := run(t, seeded(t), "tree", "main", "Indexes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no child "Indexes"`)
}

func TestSearchCommand(t *testing.T) {
	cfgPath := seeded(t)

	out, err := run(t, cfgPath, "search", "table", "cust")
	require.NoError(t, err)
	assert.Contains(t, out, "customers")
	assert.NotContains(t, out, "orders")

	out, err = run(t, cfgPath, "-o", "json", "search", "column", "id", "--table", "main.orders")
	require.NoError(t, err)
	var nodes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &nodes))
	for _, n := range nodes {
		assert.Equal(t, "connection.column", n["type"])
	}
	assert.NotEmpty(t, nodes)
}

func TestSearchCommand_InvalidArgs(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := run(t, cfgPath, "search", "index", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown item type")

	_, err = run(t, cfgPath, "search", "column", "x", "--table", "orders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want SCHEMA.TABLE")
}

func TestInsertQueryCommand(t *testing.T) {
	cfgPath := seeded(t)

	out, err := run(t, cfgPath, "insert-query", "main", "customers")
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "main"."customers" (id, name) VALUES ('${1:id:INTEGER}', '${2:name:VARCHAR(100)}')`+"\n", out)

	_, err = run(t, cfgPath, "insert-query", "main", "missing")
	require.Error(t, err)
	assert.Equal(t, "error generating insert query", err.Error())
}

func TestRootCommand_UnknownOutput(t *testing.T) {
	_, err := run(t, writeConfig(t), "-o", "yaml", "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connection:\n  type: sqlite\n  database: x.db\nmcp:\n  transport: carrier-pigeon\n"), 0o600))

	_, err := run(t, path, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mcp transport")
}

func TestTreeCommand_CaseInsensitiveLabels(t *testing.T) {
	out, err := run(t, seeded(t), "tree", "MAIN", "TABLES")
	require.NoError(t, err)
	assert.Contains(t, out, "customers")
}
