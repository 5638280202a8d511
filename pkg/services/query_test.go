package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ekaya-inc/ekaya-db2/pkg/adapters/datasource"
	"github.com/ekaya-inc/ekaya-db2/pkg/models"
)

func newTestQueryService(h *fakeHandle) QueryService {
	return NewQueryService(&fakeOpener{handle: h}, "conn-1", zap.NewNop())
}

func TestQueryService_Query_BlankStatementsDropped(t *testing.T) {
	h := newFakeHandle().
		on("SELECT 1", datasource.RowOf("1", int64(1))).
		on("SELECT 2", datasource.RowOf("2", int64(2)))
	svc := newTestQueryService(h)

	results, err := svc.Query(context.Background(), "SELECT 1; ; SELECT 2;", "")
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, "SELECT 1", results[0].Query)
	assert.Equal(t, "SELECT 2", results[1].Query)
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, h.statements())
}

func TestQueryService_Query_ResultShapes(t *testing.T) {
	h := newFakeHandle().
		on("SELECT id, name FROM t",
			datasource.RowOf("ID", int64(1), "NAME", "a"),
			datasource.RowOf("ID", int64(2), "NAME", "b")).
		on("DELETE FROM t").
		fail("SELECT nope", errors.New("SQL0204N  \"NOPE\" is an undefined name."))
	svc := newTestQueryService(h)

	results, err := svc.Query(context.Background(), "SELECT id, name FROM t; DELETE FROM t; SELECT nope", "req-7")
	require.NoError(t, err)
	require.Len(t, results, 3)

	t.Run("success", func(t *testing.T) {
		r := results[0]
		assert.Equal(t, []string{"ID", "NAME"}, r.Cols)
		require.Len(t, r.Messages, 1)
		assert.Equal(t, "Query ok with 2 results", r.Messages[0].Message)
		assert.Len(t, r.Results, 2)
		assert.False(t, r.Error)
	})

	t.Run("empty", func(t *testing.T) {
		r := results[1]
		assert.Equal(t, []string{}, r.Cols)
		assert.Equal(t, []*datasource.Row{}, r.Results)
		require.Len(t, r.Messages, 1)
		assert.Equal(t, models.MessageNoResults, r.Messages[0].Message)
		assert.False(t, r.Error)
	})

	t.Run("error", func(t *testing.T) {
		r := results[2]
		assert.Equal(t, []string{"Error"}, r.Cols)
		require.Len(t, r.Results, 1)
		assert.Equal(t, []string{"Error"}, r.Results[0].Keys())
		assert.Equal(t, "SQL0204N  \"NOPE\" is an undefined name.", r.Results[0].String("Error"))
		require.Len(t, r.Messages, 1)
		assert.Equal(t, models.MessageNoResults, r.Messages[0].Message)
		assert.True(t, r.Error)
	})

	for _, r := range results {
		assert.Equal(t, "conn-1", r.ConnectionID)
		assert.Equal(t, "req-7", r.RequestID)
	}
}

func TestQueryService_Query_ColumnsFollowFirstRow(t *testing.T) {
	h := newFakeHandle().on("SELECT *",
		datasource.RowOf("B", 1, "A", 2),
		datasource.RowOf("A", 3, "B", 4, "C", 5))
	svc := newTestQueryService(h)

	results, err := svc.Query(context.Background(), "SELECT *", "")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"B", "A"}, results[0].Cols)
}

func TestQueryService_Query_FailureDoesNotAbortBatch(t *testing.T) {
	h := newFakeHandle().
		on("SELECT 1", datasource.RowOf("1", 1)).
		fail("SELECT 2", errors.New("boom")).
		on("SELECT 3", datasource.RowOf("3", 3))
	svc := newTestQueryService(h)

	results, err := svc.Query(context.Background(), "SELECT 1;SELECT 2;SELECT 3", "")
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.False(t, results[0].Error)
	assert.True(t, results[1].Error)
	assert.False(t, results[2].Error)
	assert.Equal(t, []string{"SELECT 1", "SELECT 2", "SELECT 3"}, h.statements())
}

func TestQueryService_Query_UniqueResultIDs(t *testing.T) {
	h := newFakeHandle()
	svc := newTestQueryService(h)

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		results, err := svc.Query(context.Background(), "SELECT 1; SELECT 2; SELECT 3", "")
		require.NoError(t, err)
		for _, r := range results {
			require.NotEmpty(t, r.ResultID)
			assert.False(t, seen[r.ResultID], "duplicate result id %s", r.ResultID)
			seen[r.ResultID] = true
		}
	}
	assert.Len(t, seen, 15)
}

func TestQueryService_Query_OnlyBlankStatements(t *testing.T) {
	h := newFakeHandle()
	svc := newTestQueryService(h)

	results, err := svc.Query(context.Background(), " ; ;\n", "")
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, h.statements())
}

func TestQueryService_Query_OpenFailurePropagates(t *testing.T) {
	openErr := errors.New("SQL30081N  A communication error has been detected")
	svc := NewQueryService(&fakeOpener{err: openErr}, "conn-1", zap.NewNop())

	results, err := svc.Query(context.Background(), "SELECT 1", "")
	assert.Nil(t, results)
	assert.Same(t, openErr, err)
}

func TestQueryService_Execute(t *testing.T) {
	stmtErr := errors.New("bad statement")
	h := newFakeHandle().
		on("SELECT 1", datasource.RowOf("1", 1)).
		fail("SELECT x", stmtErr)
	svc := newTestQueryService(h)

	rows, err := svc.Execute(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = svc.Execute(context.Background(), "SELECT x")
	require.Error(t, err)
	assert.True(t, IsStatementError(err))
	assert.ErrorIs(t, err, stmtErr)
	assert.Equal(t, "bad statement", err.Error())

	openErr := errors.New("refused")
	_, err = NewQueryService(&fakeOpener{err: openErr}, "c", zap.NewNop()).Execute(context.Background(), "SELECT 1")
	assert.False(t, IsStatementError(err))
	assert.ErrorIs(t, err, openErr)
}

func TestQueryService_Query_AuditsBatch(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := newFakeHandle().
		on("SELECT 1", datasource.RowOf("1", int64(1))).
		fail("SELECT nope", errors.New("SQL0204N"))
	svc := NewQueryService(&fakeOpener{handle: h}, "conn-1", zap.New(core))

	_, err := svc.Query(context.Background(), "SELECT 1; SELECT nope", "req-3")
	require.NoError(t, err)

	entries := logs.FilterLoggerName("security_audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-3", fields["request_id"])
	assert.Equal(t, int64(2), fields["statements"])
	assert.Equal(t, int64(1), fields["failed"])
}
