package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/ekaya-db2/pkg/models"
)

// registerGetChildrenTool expands one node of the catalog tree.
func registerGetChildrenTool(s *server.MCPServer, deps *ConnectorToolDeps) {
	tool := mcp.NewTool(
		"get_children",
		mcp.WithDescription(
			"List the children of a catalog tree node. "+
				"Omit item to start from the connection: connection -> schemas -> "+
				"Tables/Views groups -> tables -> Column/Unique Constraints/Foreign Keys groups -> columns. "+
				"Pass nodes back exactly as returned.",
		),
		mcp.WithObject(
			"item",
			mcp.Description("Optional: the node to expand, as returned by a previous call"),
		),
		mcp.WithObject(
			"parent",
			mcp.Description("Optional: the node item was listed under; scopes groups that carry no scope"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var item models.Node = deps.Connector.RootNode()
		if raw := getOptionalValue(req, "item"); raw != nil {
			decoded, err := models.DecodeNodeValue(raw)
			if err != nil {
				return NewErrorResult("invalid_node", err.Error()), nil
			}
			item = decoded
		}

		parent, err := models.DecodeNodeValue(getOptionalValue(req, "parent"))
		if err != nil {
			return NewErrorResult("invalid_node", err.Error()), nil
		}

		children, err := deps.Connector.GetChildrenForItem(ctx, item, parent)
		if err != nil {
			if result := connectorErrorResult(err); result != nil {
				return result, nil
			}
			return nil, err
		}
		return jsonResult(children)
	})
}

// registerSearchItemsTool searches the catalog by name.
func registerSearchItemsTool(s *server.MCPServer, deps *ConnectorToolDeps) {
	tool := mcp.NewTool(
		"search_items",
		mcp.WithDescription(
			"Search tables, views or columns by case-insensitive name fragment. "+
				"Other item types return an empty list. Inputs that look like SQL injection "+
					"are audit-logged and matched literally.",
		),
		mcp.WithString(
			"item_type",
			mcp.Required(),
			mcp.Description("Node type to search for"),
			mcp.Enum(string(models.NodeKindTable), string(models.NodeKindView), string(models.NodeKindColumn)),
		),
		mcp.WithString(
			"search",
			mcp.Description("Name fragment, e.g. \"CUST\""),
		),
		mcp.WithObject(
			"params",
			mcp.Description("Optional: {\"schema\": ..., \"tables\": [{\"schema\": ..., \"label\": ...}], \"limit\": n}"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithIdempotentHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		itemType, err := req.RequireString("item_type")
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}

		nodes, err := deps.Connector.SearchItems(ctx,
			models.NodeKind(trimString(itemType)),
			trimString(getOptionalString(req, "search")),
			getOptionalMap(req, "params"))
		if err != nil {
			return nil, err
		}
		return jsonResult(nodes)
	})
}
