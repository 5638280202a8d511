package datasource

import "strings"

// Column aliases every catalog query template must produce.
// Catalog rows are shaped into explorer nodes by these names only.
const (
	AliasLabel      = "label"
	AliasSchema     = "schema"
	AliasDatabase   = "database"
	AliasTable      = "table"
	AliasDataType   = "dataType"
	AliasIsNullable = "isNullable"
	AliasIsPK       = "isPk"
	AliasIsFK       = "isFk"
	AliasIsView     = "isView"
)

// Keys of rows returned by Handle.Columns.
const (
	ColumnNameKey = "COLUMN_NAME"
	TypeNameKey   = "TYPE_NAME"
)

// SchemaMetadata is one row of fetchSchemas.
type SchemaMetadata struct {
	Label    string
	Database string
}

// TableMetadata is one row of fetchTables, fetchViews or searchTables.
type TableMetadata struct {
	Label  string
	Schema string
	IsView bool
}

// ColumnMetadata is one row of the column catalog queries.
type ColumnMetadata struct {
	Label        string
	Schema       string
	Table        string
	DataType     string
	IsNullable   bool
	IsPrimaryKey bool
	IsForeignKey bool
}

// TypedColumn is one row of Handle.Columns.
type TypedColumn struct {
	Name string
	Type string
}

// SchemaFromRow reads a fetchSchemas row.
func SchemaFromRow(r *Row) SchemaMetadata {
	return SchemaMetadata{
		Label:    trim(r.String(AliasLabel)),
		Database: trim(r.String(AliasDatabase)),
	}
}

// TableFromRow reads a table or view row.
func TableFromRow(r *Row) TableMetadata {
	return TableMetadata{
		Label:  trim(r.String(AliasLabel)),
		Schema: trim(r.String(AliasSchema)),
		IsView: r.Bool(AliasIsView),
	}
}

// ColumnFromRow reads a column catalog row.
func ColumnFromRow(r *Row) ColumnMetadata {
	return ColumnMetadata{
		Label:        trim(r.String(AliasLabel)),
		Schema:       trim(r.String(AliasSchema)),
		Table:        trim(r.String(AliasTable)),
		DataType:     trim(r.String(AliasDataType)),
		IsNullable:   r.Bool(AliasIsNullable),
		IsPrimaryKey: r.Bool(AliasIsPK),
		IsForeignKey: r.Bool(AliasIsFK),
	}
}

// TypedColumnFromRow reads a Handle.Columns row.
func TypedColumnFromRow(r *Row) TypedColumn {
	return TypedColumn{
		Name: trim(r.String(ColumnNameKey)),
		Type: trim(r.String(TypeNameKey)),
	}
}

// DB2 pads CHAR catalog columns with spaces.
func trim(s string) string {
	return strings.TrimSpace(s)
}
