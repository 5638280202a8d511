package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/models"
)

// mockConnector records calls and returns configured values.
type mockConnector struct {
	state datasource.State

	openErr  error
	closeErr error
	testErr  error

	results  []*models.QueryResult
	queryErr error

	children    []models.Node
	childrenErr error
	searchNodes []models.Node
	searchErr   error
	insertQuery string
	insertErr   error

	// Captured inputs
	opens, closes, tests int
	sqlText, requestID   string
	item, parent         models.Node
	itemType             models.NodeKind
	search               string
	extra                map[string]any
	columns              []*models.ColumnNode
}

var _ Connector = (*mockConnector)(nil)

func (m *mockConnector) ID() string              { return "conn-1" }
func (m *mockConnector) State() datasource.State { return m.state }

func (m *mockConnector) Stats() datasource.ConnectionStats {
	return datasource.ConnectionStats{State: m.state.String(), Database: "SAMPLE", Opens: m.opens}
}

func (m *mockConnector) RootNode() *models.ConnectionNode {
	return &models.ConnectionNode{Type: models.NodeKindConnection, Label: "SAMPLE", ID: "conn-1"}
}

func (m *mockConnector) Open(ctx context.Context) error {
	m.opens++
	if m.openErr == nil {
		m.state = datasource.StateOpen
	}
	return m.openErr
}

func (m *mockConnector) Close() error {
	m.closes++
	m.state = datasource.StateClosed
	return m.closeErr
}

func (m *mockConnector) TestConnection(ctx context.Context) error {
	m.tests++
	if m.testErr == nil {
		m.state = datasource.StateClosed
	}
	return m.testErr
}

func (m *mockConnector) Query(ctx context.Context, sqlText, requestID string) ([]*models.QueryResult, error) {
	m.sqlText, m.requestID = sqlText, requestID
	return m.results, m.queryErr
}

func (m *mockConnector) GetChildrenForItem(ctx context.Context, item, parent models.Node) ([]models.Node, error) {
	m.item, m.parent = item, parent
	return m.children, m.childrenErr
}

func (m *mockConnector) SearchItems(ctx context.Context, itemType models.NodeKind, search string, extra map[string]any) ([]models.Node, error) {
	m.itemType, m.search, m.extra = itemType, search, extra
	return m.searchNodes, m.searchErr
}

func (m *mockConnector) GetInsertQuery(ctx context.Context, item models.Node, columns []*models.ColumnNode) (string, error) {
	m.item, m.columns = item, columns
	return m.insertQuery, m.insertErr
}

func newToolServer(conn *mockConnector) *server.MCPServer {
	s := server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true))
	deps := &ConnectorToolDeps{Connector: conn, Logger: zap.NewNop()}
	RegisterHealthTool(s, "1.0.0", deps)
	RegisterConnectorTools(s, deps)
	return s
}

// toolResponse is a tools/call response: either a result or a JSON-RPC error.
type toolResponse struct {
	Result *struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (r toolResponse) text(t *testing.T) string {
	t.Helper()
	require.NotNil(t, r.Result, "expected a result, got error %+v", r.Error)
	require.NotEmpty(t, r.Result.Content)
	return r.Result.Content[0].Text
}

func callTool(t *testing.T, s *server.MCPServer, name string, args map[string]any) toolResponse {
	t.Helper()

	request, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
		"id":      1,
	})
	require.NoError(t, err)

	result := s.HandleMessage(context.Background(), request)
	resultBytes, err := json.Marshal(result)
	require.NoError(t, err)

	var response toolResponse
	require.NoError(t, json.Unmarshal(resultBytes, &response))
	return response
}

func decodeErrorResponse(t *testing.T, r toolResponse) ErrorResponse {
	t.Helper()
	require.NotNil(t, r.Result, "expected a result, got error %+v", r.Error)
	require.True(t, r.Result.IsError)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(r.text(t)), &resp))
	return resp
}
