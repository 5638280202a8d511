package models

import (
	"encoding/json"
	"fmt"

	"github.com/ekaya-inc/ekaya-db2/pkg/apperrors"
)

// NodeKind is the type tag of an explorer node.
type NodeKind string

const (
	NodeKindConnection          NodeKind = "connection"
	NodeKindConnectedConnection NodeKind = "connectedConnection"
	NodeKindDatabase            NodeKind = "connection.database"
	NodeKindSchema              NodeKind = "connection.schema"
	NodeKindResourceGroup       NodeKind = "connection.resource_group"
	NodeKindTable               NodeKind = "connection.table"
	NodeKindView                NodeKind = "connection.view"
	NodeKindColumn              NodeKind = "connection.column"
	NodeKindNoPrimaryKey        NodeKind = "connection.no_primary_key"

	// NodeKindNoChild marks a leaf: nodes with this childType never expand.
	NodeKindNoChild NodeKind = "NO_CHILD"
)

// Resource group labels.
const (
	GroupTables            = "Tables"
	GroupViews             = "Views"
	GroupColumns           = "Column"
	GroupUniqueConstraints = "Unique Constraints"
	GroupForeignKeys       = "Foreign Keys"
)

// Icons.
const (
	IconFolder     = "folder"
	IconMenu       = "menu"
	IconReferences = "references"
	IconPK         = "pk"
	IconFK         = "fk"
)

// Node is one entry of the explorer tree.
// The set of variants is closed: only types in this package implement it.
type Node interface {
	Kind() NodeKind
	NodeLabel() string
	node()
}

// ConnectionNode is the root of the tree.
type ConnectionNode struct {
	Type      NodeKind `json:"type"`
	Label     string   `json:"label"`
	ID        string   `json:"id,omitempty"`
	ChildType NodeKind `json:"childType,omitempty"`
}

// DatabaseNode groups the schemas of one database.
type DatabaseNode struct {
	Type      NodeKind `json:"type"`
	Label     string   `json:"label"`
	Database  string   `json:"database"`
	ChildType NodeKind `json:"childType,omitempty"`
}

// SchemaNode is one catalog schema.
type SchemaNode struct {
	Type      NodeKind `json:"type"`
	Label     string   `json:"label"`
	Schema    string   `json:"schema"`
	Database  string   `json:"database,omitempty"`
	ChildType NodeKind `json:"childType,omitempty"`
	IconID    string   `json:"iconId,omitempty"`
}

// ResourceGroupNode is a synthetic folder. Its scope fields are copied from
// the node that produced it so it can be expanded without its parent.
type ResourceGroupNode struct {
	Type      NodeKind `json:"type"`
	Label     string   `json:"label"`
	ChildType NodeKind `json:"childType"`
	IconID    string   `json:"iconId,omitempty"`
	Tag       string   `json:"tag,omitempty"`
	Database  string   `json:"database,omitempty"`
	Schema    string   `json:"schema,omitempty"`
	Table     string   `json:"table,omitempty"`
}

// TableNode is one table.
type TableNode struct {
	Type      NodeKind `json:"type"`
	Label     string   `json:"label"`
	Schema    string   `json:"schema"`
	Database  string   `json:"database,omitempty"`
	IsView    bool     `json:"isView"`
	ChildType NodeKind `json:"childType,omitempty"`
	IconID    string   `json:"iconId,omitempty"`
}

// ViewNode is one view. It expands to its own columns.
type ViewNode struct {
	Type      NodeKind `json:"type"`
	Label     string   `json:"label"`
	Schema    string   `json:"schema"`
	Database  string   `json:"database,omitempty"`
	IsView    bool     `json:"isView"`
	ChildType NodeKind `json:"childType"`
	IconID    string   `json:"iconId,omitempty"`
}

// ColumnNode is one column. Table refers to the owning table for lookup only.
type ColumnNode struct {
	Type       NodeKind   `json:"type"`
	Label      string     `json:"label"`
	Schema     string     `json:"schema,omitempty"`
	Database   string     `json:"database,omitempty"`
	DataType   string     `json:"dataType,omitempty"`
	Detail     string     `json:"detail,omitempty"`
	IsNullable bool       `json:"isNullable"`
	IsPk       bool       `json:"isPk"`
	IsFk       bool       `json:"isFk"`
	IconName   string     `json:"iconName,omitempty"`
	ChildType  NodeKind   `json:"childType"`
	Table      *TableNode `json:"table,omitempty"`
}

// NoPrimaryKeyNode stands in for the children of a key group when the
// table has no primary key. It distinguishes "fetched, none" from "not fetched".
type NoPrimaryKeyNode struct {
	Type      NodeKind   `json:"type"`
	Label     string     `json:"label"`
	ChildType NodeKind   `json:"childType"`
	Table     *TableNode `json:"table,omitempty"`
}

func (n *ConnectionNode) Kind() NodeKind    { return n.Type }
func (n *DatabaseNode) Kind() NodeKind      { return NodeKindDatabase }
func (n *SchemaNode) Kind() NodeKind        { return NodeKindSchema }
func (n *ResourceGroupNode) Kind() NodeKind { return NodeKindResourceGroup }
func (n *TableNode) Kind() NodeKind         { return NodeKindTable }
func (n *ViewNode) Kind() NodeKind          { return NodeKindView }
func (n *ColumnNode) Kind() NodeKind        { return NodeKindColumn }
func (n *NoPrimaryKeyNode) Kind() NodeKind  { return NodeKindNoPrimaryKey }

func (n *ConnectionNode) NodeLabel() string    { return n.Label }
func (n *DatabaseNode) NodeLabel() string      { return n.Label }
func (n *SchemaNode) NodeLabel() string        { return n.Label }
func (n *ResourceGroupNode) NodeLabel() string { return n.Label }
func (n *TableNode) NodeLabel() string         { return n.Label }
func (n *ViewNode) NodeLabel() string          { return n.Label }
func (n *ColumnNode) NodeLabel() string        { return n.Label }
func (n *NoPrimaryKeyNode) NodeLabel() string  { return n.Label }

func (*ConnectionNode) node()    {}
func (*DatabaseNode) node()      {}
func (*SchemaNode) node()        {}
func (*ResourceGroupNode) node() {}
func (*TableNode) node()         {}
func (*ViewNode) node()          {}
func (*ColumnNode) node()        {}
func (*NoPrimaryKeyNode) node()  {}

// NewSchemaNode builds a schema node.
func NewSchemaNode(label, database string) *SchemaNode {
	return &SchemaNode{
		Type:      NodeKindSchema,
		Label:     label,
		Schema:    label,
		Database:  database,
		ChildType: NodeKindResourceGroup,
		IconID:    "group-by-ref-type",
	}
}

// NewResourceGroupNode builds a resource group.
func NewResourceGroupNode(label string, childType NodeKind, iconID string) *ResourceGroupNode {
	return &ResourceGroupNode{
		Type:      NodeKindResourceGroup,
		Label:     label,
		ChildType: childType,
		IconID:    iconID,
	}
}

// NewTableNode builds a table node.
func NewTableNode(label, schema, database string) *TableNode {
	return &TableNode{
		Type:      NodeKindTable,
		Label:     label,
		Schema:    schema,
		Database:  database,
		ChildType: NodeKindResourceGroup,
	}
}

// NewViewNode builds a view node.
func NewViewNode(label, schema, database string) *ViewNode {
	return &ViewNode{
		Type:      NodeKindView,
		Label:     label,
		Schema:    schema,
		Database:  database,
		IsView:    true,
		ChildType: NodeKindColumn,
	}
}

// AsTable returns the view as the owner of its columns.
func (n *ViewNode) AsTable() *TableNode {
	return &TableNode{
		Type:     NodeKindTable,
		Label:    n.Label,
		Schema:   n.Schema,
		Database: n.Database,
		IsView:   true,
	}
}

// NewNoPrimaryKeyNode builds the marker for a table without a primary key.
func NewNoPrimaryKeyNode(table *TableNode) *NoPrimaryKeyNode {
	return &NoPrimaryKeyNode{
		Type:      NodeKindNoPrimaryKey,
		Label:     "No primary key",
		ChildType: NodeKindNoChild,
		Table:     table,
	}
}

// DecodeNode decodes a host node by its "type" tag.
func DecodeNode(data []byte) (Node, error) {
	var head struct {
		Type NodeKind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidNode, err)
	}

	var n Node
	switch head.Type {
	case NodeKindConnection, NodeKindConnectedConnection:
		n = &ConnectionNode{}
	case NodeKindDatabase:
		n = &DatabaseNode{}
	case NodeKindSchema:
		n = &SchemaNode{}
	case NodeKindResourceGroup:
		n = &ResourceGroupNode{}
	case NodeKindTable:
		n = &TableNode{}
	case NodeKindView:
		n = &ViewNode{}
	case NodeKindColumn:
		n = &ColumnNode{}
	case NodeKindNoPrimaryKey:
		n = &NoPrimaryKeyNode{}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", apperrors.ErrInvalidNode, head.Type)
	}

	if err := json.Unmarshal(data, n); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidNode, err)
	}
	return n, nil
}

// DecodeNodeValue decodes a node already parsed into generic JSON values,
// as MCP tool arguments are. A nil value decodes to a nil node.
func DecodeNodeValue(v any) (Node, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidNode, err)
	}
	return DecodeNode(data)
}
