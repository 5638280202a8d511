package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/ekaya-db2/pkg/models"
)

type insertQueryResult struct {
	Query string `json:"query"`
}

// registerInsertQueryTool builds an INSERT template for a table.
func registerInsertQueryTool(s *server.MCPServer, deps *ConnectorToolDeps) {
	tool := mcp.NewTool(
		"insert_query",
		mcp.WithDescription(
			"Build an INSERT statement template for a table or view node. "+
				"Columns and types come from the live catalog; values are "+
				"'${index:column:type}' placeholders.",
		),
		mcp.WithObject(
			"item",
			mcp.Required(),
			mcp.Description("Table node as returned by get_children or search_items"),
		),
		mcp.WithArray(
			"columns",
			mcp.Description("Optional: column nodes of the table; logged only, the catalog decides order"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw := getOptionalValue(req, "item")
		if raw == nil {
			return NewErrorResult("invalid_parameters", "item is required"), nil
		}
		item, err := models.DecodeNodeValue(raw)
		if err != nil {
			return NewErrorResult("invalid_node", err.Error()), nil
		}

		columns, err := decodeColumns(getOptionalValue(req, "columns"))
		if err != nil {
			return NewErrorResult("invalid_node", err.Error()), nil
		}

		query, err := deps.Connector.GetInsertQuery(ctx, item, columns)
		if err != nil {
			if result := connectorErrorResult(err); result != nil {
				return result, nil
			}
			return nil, err
		}
		return jsonResult(insertQueryResult{Query: query})
	})
}

func decodeColumns(raw any) ([]*models.ColumnNode, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, nil
	}

	columns := make([]*models.ColumnNode, 0, len(list))
	for i, v := range list {
		n, err := models.DecodeNodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("columns[%d]: %w", i, err)
		}
		col, ok := n.(*models.ColumnNode)
		if !ok {
			return nil, fmt.Errorf("columns[%d]: expected %s node", i, models.NodeKindColumn)
		}
		columns = append(columns, col)
	}
	return columns, nil
}
