package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
	"github.com/ekaya-inc/ekaya-db2/pkg/models"
	sqlutil "github.com/ekaya-inc/ekaya-db2/pkg/sql"
)

// InsertQueryService builds INSERT templates with snippet placeholders.
type InsertQueryService interface {
	// GetInsertQuery returns an INSERT template for the table or view item.
	// Column order and types come from the live catalog; columns is logged
	// and otherwise ignored. Every failure is apperrors.ErrInsertQuery.
	GetInsertQuery(ctx context.Context, item models.Node, columns []*models.ColumnNode) (string, error)
}

type insertQueryService struct {
	conn   HandleOpener
	logger *zap.Logger
}

// NewInsertQueryService creates an insert template generator.
func NewInsertQueryService(conn HandleOpener, logger *zap.Logger) InsertQueryService {
	return &insertQueryService{
		conn:   conn,
		logger: logger.Named("insert-query"),
	}
}

var _ InsertQueryService = (*insertQueryService)(nil)

func (s *insertQueryService) GetInsertQuery(ctx context.Context, item models.Node, columns []*models.ColumnNode) (string, error) {
	var schema, table string
	switch n := item.(type) {
	case *models.TableNode:
		schema, table = n.Schema, n.Label
	case *models.ViewNode:
		schema, table = n.Schema, n.Label
	default:
		s.logger.Warn("Insert query requested for a non-table node", zap.Any("node", item))
		return "", apperrors.ErrInsertQuery
	}

	requested := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != nil {
			requested = append(requested, c.Label)
		}
	}
	s.logger.Debug("Generating insert query",
		zap.String("schema", schema),
		zap.String("table", table),
		zap.Strings("requested_columns", requested))

	handle, err := s.conn.Open(ctx)
	if err != nil {
		s.logger.Error("Failed to open connection for insert query",
			zap.String("error", logging.SanitizeError(err)))
		return "", apperrors.ErrInsertQuery
	}

	rows, err := handle.Columns(ctx, "", schema, table, "")
	if err != nil {
		s.logger.Error("Failed to look up columns",
			zap.String("schema", schema),
			zap.String("table", table),
			zap.String("error", logging.SanitizeError(err)))
		return "", apperrors.ErrInsertQuery
	}

	query, err := BuildInsertQuery(schema, table, rows)
	if err != nil {
		s.logger.Error("Failed to build insert query",
			zap.String("schema", schema),
			zap.String("table", table),
			zap.Error(err))
		return "", apperrors.ErrInsertQuery
	}
	return query, nil
}

// BuildInsertQuery renders the template from catalog column rows, in row order.
// Each value is a '${index:name:type}' placeholder with a 1-based index.
func BuildInsertQuery(schema, table string, rows []*datasource.Row) (string, error) {
	if len(rows) == 0 {
		return "", fmt.Errorf("no columns found for %s.%s", schema, table)
	}

	names := make([]string, 0, len(rows))
	values := make([]string, 0, len(rows))
	for i, row := range rows {
		col := datasource.TypedColumnFromRow(row)
		if col.Name == "" {
			return "", fmt.Errorf("column %d of %s.%s has no name", i+1, schema, table)
		}
		names = append(names, col.Name)
		values = append(values, fmt.Sprintf("'${%d:%s:%s}'", i+1, col.Name, col.Type))
	}

	return fmt.Sprintf("INSERT INTO %s.%s (%s) VALUES (%s)",
		sqlutil.QuoteIdentifier(schema),
		sqlutil.QuoteIdentifier(table),
		strings.Join(names, ", "),
		strings.Join(values, ", ")), nil
}
