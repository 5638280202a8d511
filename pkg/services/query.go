package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/audit"
	"github.com/ekaya-inc/ekaya-db2/pkg/logging"
	"github.com/ekaya-inc/ekaya-db2/pkg/models"
	sqlutil "github.com/ekaya-inc/ekaya-db2/pkg/sql"
)

// HandleOpener hands out the connector's live handle.
// *datasource.ConnectionManager satisfies it.
type HandleOpener interface {
	Open(ctx context.Context) (datasource.Handle, error)
}

// StatementError is a failure of one statement on an open handle.
// Connection failures are never wrapped in it.
type StatementError struct {
	Statement string
	Err       error
}

func (e *StatementError) Error() string {
	return e.Err.Error()
}

func (e *StatementError) Unwrap() error {
	return e.Err
}

// IsStatementError reports whether err came from executing a statement
// rather than from opening the connection.
func IsStatementError(err error) bool {
	var stmtErr *StatementError
	return errors.As(err, &stmtErr)
}

// QueryService runs SQL text against the connector's connection.
type QueryService interface {
	// Query splits sqlText into statements and returns one result per
	// non-blank statement, in statement order. Statement failures become
	// error-shaped results; only a connection failure returns an error.
	Query(ctx context.Context, sqlText, requestID string) ([]*models.QueryResult, error)

	// Execute runs a single statement and returns its raw rows.
	// Failures of the statement itself are *StatementError.
	Execute(ctx context.Context, statement string) ([]*datasource.Row, error)
}

type queryService struct {
	conn    HandleOpener
	results *resultBuilder
	auditor *audit.SecurityAuditor
	logger  *zap.Logger
}

// NewQueryService creates a query service stamping results with connectionID.
func NewQueryService(conn HandleOpener, connectionID string, logger *zap.Logger) QueryService {
	return &queryService{
		conn:    conn,
		results: newResultBuilder(connectionID),
		auditor: audit.NewSecurityAuditor(logger),
		logger:  logger.Named("query"),
	}
}

var _ QueryService = (*queryService)(nil)

func (s *queryService) Query(ctx context.Context, sqlText, requestID string) ([]*models.QueryResult, error) {
	handle, err := s.conn.Open(ctx)
	if err != nil {
		return nil, err
	}

	statements := sqlutil.SplitStatements(sqlText)
	s.logger.Debug("Running query batch",
		zap.Int("statements", len(statements)),
		zap.String("request_id", requestID))

	// One physical connection: each statement completes before the next starts.
	results := make([]*models.QueryResult, 0, len(statements))
	failed := 0
	for _, stmt := range statements {
		rows, qerr := handle.QuerySync(ctx, stmt)
		if qerr != nil {
			failed++
			s.logger.Debug("Statement failed",
				zap.String("query", logging.SanitizeQuery(stmt)),
				zap.String("error", logging.SanitizeError(qerr)))
		}
		results = append(results, s.results.build(stmt, requestID, rows, qerr))
	}

	s.auditor.LogQueryExecution(requestID, audit.QueryExecutionDetails{
		Statements: len(statements),
		Failed:     failed,
	})
	return results, nil
}

func (s *queryService) Execute(ctx context.Context, statement string) ([]*datasource.Row, error) {
	handle, err := s.conn.Open(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := handle.QuerySync(ctx, statement)
	if err != nil {
		return nil, &StatementError{Statement: statement, Err: err}
	}
	return rows, nil
}

// resultBuilder turns a statement outcome into a QueryResult.
type resultBuilder struct {
	connectionID string
	newID        func() string
	now          func() time.Time
}

func newResultBuilder(connectionID string) *resultBuilder {
	return &resultBuilder{
		connectionID: connectionID,
		newID:        uuid.NewString,
		now:          time.Now,
	}
}

// build checks the error before emptiness: a failed statement is never
// reported as an empty one.
func (b *resultBuilder) build(statement, requestID string, rows []*datasource.Row, err error) *models.QueryResult {
	result := &models.QueryResult{
		ConnectionID: b.connectionID,
		RequestID:    requestID,
		ResultID:     b.newID(),
		Query:        statement,
	}

	switch {
	case err != nil:
		result.Cols = []string{models.ErrorColumn}
		result.Messages = b.message(models.MessageNoResults)
		result.Results = []*datasource.Row{datasource.RowOf(models.ErrorColumn, err.Error())}
		result.Error = true
	case len(rows) == 0:
		result.Cols = []string{}
		result.Messages = b.message(models.MessageNoResults)
		result.Results = []*datasource.Row{}
	default:
		result.Cols = rows[0].Keys()
		result.Messages = b.message(models.QueryOKMessage(len(rows)))
		result.Results = rows
	}
	return result
}

func (b *resultBuilder) message(text string) []models.QueryMessage {
	return []models.QueryMessage{{Date: b.now(), Message: text}}
}
