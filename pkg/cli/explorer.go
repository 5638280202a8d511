package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ekaya-inc/ekaya-db2/pkg/models"
	"github.com/ekaya-inc/ekaya-db2/pkg/services"
)

func newTreeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tree [LABEL...]",
		Short: "Browse the catalog tree",
		Long: `List the children of a catalog node. Each LABEL selects a child of the
previous level, starting from the connection.`,
		Example: `  ekaya-db2 tree
  ekaya-db2 tree APP Tables
  ekaya-db2 tree APP Tables CUSTOMERS "Foreign Keys"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withConnector(func(c *services.Connector) error {
				ctx := cmd.Context()

				var (
					item   models.Node = c.RootNode()
					parent models.Node
				)
				children, err := c.GetChildrenForItem(ctx, item, parent)
				if err != nil {
					return err
				}

				for _, label := range args {
					next := findChild(children, label)
					if next == nil {
						return fmt.Errorf("no child %q under %q", label, item.NodeLabel())
					}
					parent, item = item, next
					if children, err = c.GetChildrenForItem(ctx, item, parent); err != nil {
						return err
					}
				}

				if a.output == OutputJSON {
					return renderJSON(cmd.OutOrStdout(), children)
				}
				renderNodes(cmd.OutOrStdout(), children)
				return nil
			})
		},
	}
}

// findChild matches by exact label first, then case-insensitively.
func findChild(nodes []models.Node, label string) models.Node {
	for _, n := range nodes {
		if n.NodeLabel() == label {
			return n
		}
	}
	for _, n := range nodes {
		if strings.EqualFold(n.NodeLabel(), label) {
			return n
		}
	}
	return nil
}

func newSearchCommand(a *app) *cobra.Command {
	var (
		schema string
		tables []string
		limit  int
	)

	cmd := &cobra.Command{
		Use:       "search {table|view|column} TEXT",
		Short:     "Search tables, views or columns by name",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"table", "view", "column"},
		Example: `  ekaya-db2 search table CUST
  ekaya-db2 search column ID --table APP.CUSTOMERS --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseItemType(args[0])
			if err != nil {
				return err
			}

			extra := map[string]any{}
			if schema != "" {
				extra["schema"] = schema
			}
			if limit > 0 {
				extra["limit"] = limit
			}
			if len(tables) > 0 {
				list := make([]any, 0, len(tables))
				for _, t := range tables {
					s, label, ok := strings.Cut(t, ".")
					if !ok {
						return fmt.Errorf("--table %q: want SCHEMA.TABLE", t)
					}
					list = append(list, map[string]any{"schema": s, "label": label})
				}
				extra["tables"] = list
			}

			return a.withConnector(func(c *services.Connector) error {
				nodes, err := c.SearchItems(cmd.Context(), kind, args[1], extra)
				if err != nil {
					return err
				}
				if a.output == OutputJSON {
					return renderJSON(cmd.OutOrStdout(), nodes)
				}
				renderNodes(cmd.OutOrStdout(), nodes)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "restrict to one schema")
	cmd.Flags().StringSliceVar(&tables, "table", nil, "restrict a column search to SCHEMA.TABLE (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (default: search_limit from config)")
	return cmd
}

func parseItemType(s string) (models.NodeKind, error) {
	switch strings.ToLower(s) {
	case "table":
		return models.NodeKindTable, nil
	case "view":
		return models.NodeKindView, nil
	case "column":
		return models.NodeKindColumn, nil
	default:
		return "", fmt.Errorf("unknown item type %q (want table, view or column)", s)
	}
}

func newInsertQueryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "insert-query SCHEMA TABLE",
		Short:   "Print an INSERT template for a table",
		Args:    cobra.ExactArgs(2),
		Example: `  ekaya-db2 insert-query APP CUSTOMERS`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withConnector(func(c *services.Connector) error {
				table := models.NewTableNode(args[1], args[0], "")
				query, err := c.GetInsertQuery(cmd.Context(), table, nil)
				if err != nil {
					return err
				}
				if a.output == OutputJSON {
					return renderJSON(cmd.OutOrStdout(), map[string]string{"query": query})
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), query)
				return nil
			})
		},
	}
}

// nodeDetail summarizes the variant-specific fields of a node for table output.
func nodeDetail(n models.Node) (schema, detail string) {
	switch v := n.(type) {
	case *models.SchemaNode:
		return v.Schema, v.Database
	case *models.ResourceGroupNode:
		return v.Schema, v.Table
	case *models.TableNode:
		return v.Schema, v.Database
	case *models.ViewNode:
		return v.Schema, v.Database
	case *models.ColumnNode:
		var flags []string
		if v.IsPk {
			flags = append(flags, "PK")
		}
		if v.IsFk {
			flags = append(flags, "FK")
		}
		if !v.IsNullable {
			flags = append(flags, "NOT NULL")
		}
		detail = v.DataType
		if len(flags) > 0 {
			detail += " " + strings.Join(flags, ",")
		}
		return v.Schema, detail
	case *models.NoPrimaryKeyNode:
		if v.Table != nil {
			return v.Table.Schema, v.Table.Label
		}
	case *models.DatabaseNode:
		return "", v.Database
	case *models.ConnectionNode:
		return "", v.ID
	}
	return "", ""
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
