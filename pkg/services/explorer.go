package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/audit"
	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
	"github.com/ekaya-inc/ekaya-db2/pkg/models"
	sqlutil "github.com/ekaya-inc/ekaya-db2/pkg/sql"
)

// ExplorerService navigates the catalog tree of the live connection.
// It keeps no state between calls: children are a function of the node
// and the catalog at call time.
type ExplorerService interface {
	// GetChildren expands item. parent is the logical parent used for
	// scoping when item does not carry its own scope; it may be nil.
	// Catalog failures yield an empty list; a connection failure is returned.
	GetChildren(ctx context.Context, item, parent models.Node) ([]models.Node, error)

	// SearchItems searches tables, views or columns by name.
	// Other item types yield an empty list.
	SearchItems(ctx context.Context, itemType models.NodeKind, search string, extra map[string]any) ([]models.Node, error)
}

type explorerService struct {
	queries     QueryService
	templates   *datasource.QuerySet
	searchLimit int
	auditor     *audit.SecurityAuditor
	logger      *zap.Logger
}

// NewExplorerService creates an explorer running templates through queries.
// searchLimit caps search results when the caller sets no limit.
func NewExplorerService(queries QueryService, templates *datasource.QuerySet, searchLimit int, logger *zap.Logger) ExplorerService {
	return &explorerService{
		queries:     queries,
		templates:   templates,
		searchLimit: searchLimit,
		auditor:     audit.NewSecurityAuditor(logger),
		logger:      logger.Named("explorer"),
	}
}

var _ ExplorerService = (*explorerService)(nil)

// scope is where a catalog query looks.
type scope struct {
	database string
	schema   string
	table    string
	owner    *models.TableNode
}

func (s *explorerService) GetChildren(ctx context.Context, item, parent models.Node) ([]models.Node, error) {
	switch n := item.(type) {
	case *models.ConnectionNode:
		return s.expand(ctx, models.NodeKindSchema, "", scope{})
	case *models.DatabaseNode:
		db := n.Database
		if db == "" {
			db = n.Label
		}
		childType := n.ChildType
		if childType == "" {
			childType = models.NodeKindSchema
		}
		return s.expand(ctx, childType, n.Label, scope{database: db})
	case *models.SchemaNode:
		return schemaGroups(n), nil
	case *models.TableNode:
		return tableGroups(n), nil
	case *models.ViewNode:
		childType, label := n.ChildType, n.Label
		if childType == "" || childType == models.NodeKindColumn {
			childType, label = models.NodeKindColumn, models.GroupColumns
		}
		sc := fillScope(scope{database: n.Database, schema: n.Schema, table: n.Label, owner: n.AsTable()}, parent)
		sc.owner.Schema = firstNonEmpty(sc.owner.Schema, sc.schema)
		return s.expand(ctx, childType, label, sc)
	case *models.ColumnNode:
		sc := scope{database: n.Database, schema: n.Schema}
		if n.Table != nil {
			sc.database = firstNonEmpty(sc.database, n.Table.Database)
			sc.schema = firstNonEmpty(sc.schema, n.Table.Schema)
			sc.table = n.Table.Label
			sc.owner = n.Table
		}
		return s.expand(ctx, n.ChildType, n.Label, fillScope(sc, parent))
	case *models.ResourceGroupNode:
		return s.expand(ctx, n.ChildType, n.Label, fillScope(scope{database: n.Database, schema: n.Schema, table: n.Table}, parent))
	case *models.NoPrimaryKeyNode:
		return []models.Node{}, nil
	default:
		s.logger.Debug("No children for node", zap.Any("node", item))
		return []models.Node{}, nil
	}
}

func schemaGroups(n *models.SchemaNode) []models.Node {
	schema := n.Schema
	if schema == "" {
		schema = n.Label
	}

	tables := models.NewResourceGroupNode(models.GroupTables, models.NodeKindTable, models.IconFolder)
	views := models.NewResourceGroupNode(models.GroupViews, models.NodeKindView, models.IconFolder)
	for _, g := range []*models.ResourceGroupNode{tables, views} {
		g.Database = n.Database
		g.Schema = schema
	}
	return []models.Node{tables, views}
}

func tableGroups(n *models.TableNode) []models.Node {
	columns := models.NewResourceGroupNode(models.GroupColumns, models.NodeKindColumn, models.IconMenu)
	unique := models.NewResourceGroupNode(models.GroupUniqueConstraints, models.NodeKindColumn, models.IconReferences)
	foreign := models.NewResourceGroupNode(models.GroupForeignKeys, models.NodeKindColumn, models.IconReferences)
	foreign.Tag = models.IconFK
	for _, g := range []*models.ResourceGroupNode{columns, unique, foreign} {
		g.Database = n.Database
		g.Schema = n.Schema
		g.Table = n.Label
	}
	return []models.Node{columns, unique, foreign}
}

// fillScope fills the gaps in a node's own scope from its parent.
func fillScope(sc scope, parent models.Node) scope {
	switch p := parent.(type) {
	case *models.DatabaseNode:
		sc.database = firstNonEmpty(sc.database, p.Database, p.Label)
	case *models.SchemaNode:
		sc.database = firstNonEmpty(sc.database, p.Database)
		sc.schema = firstNonEmpty(sc.schema, p.Schema, p.Label)
	case *models.TableNode:
		sc.database = firstNonEmpty(sc.database, p.Database)
		sc.schema = firstNonEmpty(sc.schema, p.Schema)
		sc.table = firstNonEmpty(sc.table, p.Label)
		if sc.table == p.Label && sc.schema == p.Schema {
			sc.owner = p
		}
	case *models.ViewNode:
		sc.database = firstNonEmpty(sc.database, p.Database)
		sc.schema = firstNonEmpty(sc.schema, p.Schema)
		sc.table = firstNonEmpty(sc.table, p.Label)
		if sc.table == p.Label && sc.schema == p.Schema {
			sc.owner = p.AsTable()
		}
	}

	if sc.owner == nil && sc.table != "" {
		sc.owner = models.NewTableNode(sc.table, sc.schema, sc.database)
	}
	return sc
}

// expand is the resource group sub-dispatch keyed on childType.
func (s *explorerService) expand(ctx context.Context, childType models.NodeKind, label string, sc scope) ([]models.Node, error) {
	switch childType {
	case models.NodeKindSchema:
		return s.fetchSchemas(ctx, sc)
	case models.NodeKindTable:
		return s.fetchTables(ctx, datasource.QueryFetchTables, sc)
	case models.NodeKindView:
		return s.fetchTables(ctx, datasource.QueryFetchViews, sc)
	case models.NodeKindColumn:
		if sc.table == "" {
			s.logger.Warn("Column group without a table scope",
				zap.String("group", label),
				zap.String("schema", sc.schema))
			return []models.Node{}, nil
		}
		switch label {
		case models.GroupColumns:
			nodes, _, err := s.fetchColumns(ctx, datasource.QueryFetchColumns, "", sc)
			return nodes, err
		case models.GroupUniqueConstraints:
			nodes, ok, err := s.fetchColumns(ctx, datasource.QueryFetchPrimaryKeys, models.IconPK, sc)
			if !ok || len(nodes) > 0 {
				return nodes, err
			}
			return []models.Node{models.NewNoPrimaryKeyNode(sc.owner)}, nil
		default:
			nodes, _, err := s.fetchColumns(ctx, datasource.QueryFetchForeignKeys, models.IconFK, sc)
			return nodes, err
		}
	default:
		return []models.Node{}, nil
	}
}

func (s *explorerService) fetchSchemas(ctx context.Context, sc scope) ([]models.Node, error) {
	rows, ok, err := s.catalog(ctx, datasource.QueryFetchSchemas, datasource.QueryParams{Database: sc.database})
	if !ok || err != nil {
		return []models.Node{}, err
	}

	nodes := make([]models.Node, 0, len(rows))
	for _, row := range rows {
		md := datasource.SchemaFromRow(row)
		nodes = append(nodes, models.NewSchemaNode(md.Label, firstNonEmpty(md.Database, sc.database)))
	}
	return nodes, nil
}

func (s *explorerService) fetchTables(ctx context.Context, query string, sc scope) ([]models.Node, error) {
	rows, ok, err := s.catalog(ctx, query, datasource.QueryParams{Database: sc.database, Schema: sc.schema})
	if !ok || err != nil {
		return []models.Node{}, err
	}

	views := query == datasource.QueryFetchViews
	nodes := make([]models.Node, 0, len(rows))
	for _, row := range rows {
		md := datasource.TableFromRow(row)
		nodes = append(nodes, tableOrView(md, firstNonEmpty(md.Schema, sc.schema), sc.database, views))
	}
	return nodes, nil
}

// fetchColumns runs a column query. A non-empty icon overrides the
// per-column pk/fk icon. ok is false when the query did not run.
func (s *explorerService) fetchColumns(ctx context.Context, query, icon string, sc scope) ([]models.Node, bool, error) {
	params := datasource.QueryParams{Database: sc.database, Schema: sc.schema, Table: sc.table}
	rows, ok, err := s.catalog(ctx, query, params)
	if !ok || err != nil {
		return []models.Node{}, false, err
	}

	nodes := make([]models.Node, 0, len(rows))
	for _, row := range rows {
		md := datasource.ColumnFromRow(row)
		col := columnNode(md, sc.owner)
		col.Schema = firstNonEmpty(col.Schema, sc.schema)
		col.Database = sc.database
		if icon != "" {
			col.IconName = icon
		}
		nodes = append(nodes, col)
	}
	return nodes, true, nil
}

func (s *explorerService) SearchItems(ctx context.Context, itemType models.NodeKind, search string, extra map[string]any) ([]models.Node, error) {
	params, err := models.DecodeSearchParams(extra)
	if err != nil {
		s.auditor.LogParameterValidation("searchItems", err.Error())
		return []models.Node{}, nil
	}
	if search == "" {
		search = params.Search
	}

	qp := datasource.QueryParams{
		Schema: params.Schema,
		Search: search,
		Limit:  params.EffectiveLimit(s.searchLimit),
	}

	inputs := map[string]string{"search": search, "schema": params.Schema}
	for i, t := range params.Tables {
		qp.Tables = append(qp.Tables, datasource.TableRef{Schema: t.Schema, Label: t.Label})
		inputs[fmt.Sprintf("tables[%d].label", i)] = t.Label
		inputs[fmt.Sprintf("tables[%d].schema", i)] = t.Schema
	}
	// Every value is quoted by the templates; a flagged input is audited
	// and still searched for literally.
	if flagged := sqlutil.CheckSearchInputs(inputs); flagged != nil {
		s.auditor.LogInjectionAttempt(audit.InjectionDetails{
			Operation:   "searchItems",
			Field:       flagged.Field,
			Value:       inputs[flagged.Field],
			Fingerprint: flagged.Fingerprint,
		})
	}

	switch itemType {
	case models.NodeKindTable, models.NodeKindView:
		rows, ok, err := s.catalog(ctx, datasource.QuerySearchTables, qp)
		if !ok || err != nil {
			return []models.Node{}, err
		}
		nodes := make([]models.Node, 0, len(rows))
		for _, row := range rows {
			md := datasource.TableFromRow(row)
			nodes = append(nodes, tableOrView(md, md.Schema, "", md.IsView))
		}
		return nodes, nil
	case models.NodeKindColumn:
		rows, ok, err := s.catalog(ctx, datasource.QuerySearchColumns, qp)
		if !ok || err != nil {
			return []models.Node{}, err
		}
		nodes := make([]models.Node, 0, len(rows))
		for _, row := range rows {
			md := datasource.ColumnFromRow(row)
			var owner *models.TableNode
			if md.Table != "" {
				owner = models.NewTableNode(md.Table, md.Schema, "")
			}
			nodes = append(nodes, columnNode(md, owner))
		}
		return nodes, nil
	default:
		return []models.Node{}, nil
	}
}

// catalog renders and runs one catalog query. ok is false when the query
// could not be rendered or failed; err is set only for connection failures.
func (s *explorerService) catalog(ctx context.Context, name string, params datasource.QueryParams) ([]*datasource.Row, bool, error) {
	statement, err := s.templates.Render(name, params)
	if err != nil {
		s.logger.Warn("Failed to render catalog query",
			zap.String("query_name", name),
			zap.Error(err))
		return nil, false, nil
	}

	rows, err := s.queries.Execute(ctx, statement)
	if err != nil {
		if IsStatementError(err) {
			s.logger.Warn("Catalog query failed",
				zap.String("query_name", name),
				zap.String("error", logging.SanitizeError(err)))
			return nil, false, nil
		}
		return nil, false, err
	}
	return rows, true, nil
}

func tableOrView(md datasource.TableMetadata, schema, database string, view bool) models.Node {
	if view {
		return models.NewViewNode(md.Label, schema, database)
	}
	return models.NewTableNode(md.Label, schema, database)
}

func columnNode(md datasource.ColumnMetadata, owner *models.TableNode) *models.ColumnNode {
	col := &models.ColumnNode{
		Type:       models.NodeKindColumn,
		Label:      md.Label,
		Schema:     md.Schema,
		DataType:   md.DataType,
		Detail:     md.DataType,
		IsNullable: md.IsNullable,
		IsPk:       md.IsPrimaryKey,
		IsFk:       md.IsForeignKey,
		ChildType:  models.NodeKindNoChild,
		Table:      owner,
	}
	switch {
	case md.IsPrimaryKey:
		col.IconName = models.IconPK
	case md.IsForeignKey:
		col.IconName = models.IconFK
	}
	return col
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
