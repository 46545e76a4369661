package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/stretchr/testify/require"
)

var errRecorded = errors.New("recorded")

// recordingQuerier captures statements instead of running them.
type recordingQuerier struct {
	queries []string
	args    [][]interface{}
}

func (q *recordingQuerier) record(query string, args []interface{}) {
	q.queries = append(q.queries, strings.Join(strings.Fields(query), " "))
	q.args = append(q.args, args)
}

func (q *recordingQuerier) ExecContext(_ context.Context, query string, args ...interface{}) (sql.Result, error) {
	q.record(query, args)
	return nil, errRecorded
}

func (q *recordingQuerier) QueryContext(_ context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	q.record(query, args)
	return nil, errRecorded
}

func (q *recordingQuerier) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	panic("QueryRowContext is not recorded")
}

func TestStatements(t *testing.T) {
	ctx := context.Background()
	q := &recordingQuerier{}

	_, err := GetTasks(ctx, q, 3)
	require.ErrorIs(t, err, errRecorded)
	_, err = InsertMark(ctx, q, ViewedTable, 3, 9)
	require.ErrorIs(t, err, errRecorded)
	_, err = DeleteMark(ctx, q, PinnedTable, 3, 9)
	require.ErrorIs(t, err, errRecorded)
	_, err = GetMarks(ctx, q, PinnedTable, 3)
	require.ErrorIs(t, err, errRecorded)
	_, err = DeleteTask(ctx, q, 5, 3)
	require.ErrorIs(t, err, errRecorded)
	_, err = UpdateTask(ctx, q, 5, 3, NewUpdateBuilder(TasksTable).Set("completed", true))
	require.ErrorIs(t, err, errRecorded)

	require.Equal(t, []string{
		"SELECT id, user_id, name, due_date, course, completed, created_at FROM tasks WHERE user_id = $1 ORDER BY due_date IS NULL, due_date ASC, created_at ASC, id ASC",
		"INSERT INTO user_viewed_resources (user_id, resource_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		"DELETE FROM user_pinned_resources WHERE user_id = $1 AND resource_id = $2",
		"SELECT resource_id FROM user_pinned_resources WHERE user_id = $1 ORDER BY resource_id ASC",
		"DELETE FROM tasks WHERE id = $1 AND user_id = $2",
		"UPDATE tasks SET completed = $1 WHERE id = $2 AND user_id = $3",
	}, q.queries)
	require.Equal(t, []interface{}{int64(3), int64(9)}, q.args[1])
	require.Equal(t, []interface{}{true, int64(5), int64(3)}, q.args[5])
}

func TestStatements_RejectUnknownStatusTable(t *testing.T) {
	q := &recordingQuerier{}
	_, err := InsertMark(context.Background(), q, "users", 1, 1)
	require.ErrorContains(t, err, `unknown status table "users"`)
	require.Empty(t, q.queries)
}

// postgresTx opens POSTGRES_TEST_DSN and returns a transaction with the
// schema applied. It is rolled back when the test ends.
func postgresTx(t *testing.T) *sql.Tx {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	conn, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	tx, err := conn.BeginTx(testContext(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tx.Rollback() })

	_, err = tx.ExecContext(testContext(t), Schema)
	require.NoError(t, err)
	return tx
}

func TestPostgres_TaskStatements(t *testing.T) {
	tx := postgresTx(t)
	ctx := testContext(t)

	userID, err := InsertUser(ctx, tx, fmt.Sprintf("store-test-%d", time.Now().UnixNano()), "hash")
	require.NoError(t, err)

	date := func(s string) *db_model.Date {
		d, err := db_model.ParseDate(s)
		require.NoError(t, err)
		return &d
	}
	for _, task := range []db_model.Task{
		{UserID: userID, Name: "undated"},
		{UserID: userID, Name: "late", DueDate: date("2024-01-05")},
		{UserID: userID, Name: "early", DueDate: date("2024-01-01")},
	} {
		_, err := InsertTask(ctx, tx, task)
		require.NoError(t, err)
	}

	tasks, err := GetTasks(ctx, tx, userID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	require.Equal(t, "early", tasks[0].Name)
	require.Equal(t, "2024-01-01", tasks[0].DueDate.String())
	require.Equal(t, "late", tasks[1].Name)
	require.Nil(t, tasks[2].DueDate)

	// Rewriting the same value still counts as a matched row.
	update := NewUpdateBuilder(TasksTable).Set("name", "early")
	n, err := UpdateTask(ctx, tx, tasks[0].ID, userID, update)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = UpdateTask(ctx, tx, tasks[0].ID, userID+1, update)
	require.NoError(t, err)
	require.Zero(t, n)

	exists, err := TaskExists(ctx, tx, tasks[0].ID)
	require.NoError(t, err)
	require.True(t, exists)

	n, err = DeleteTask(ctx, tx, tasks[0].ID, userID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestPostgres_MarkStatements(t *testing.T) {
	tx := postgresTx(t)
	ctx := testContext(t)

	userID, err := InsertUser(ctx, tx, fmt.Sprintf("mark-test-%d", time.Now().UnixNano()), "hash")
	require.NoError(t, err)

	added, err := InsertMark(ctx, tx, PinnedTable, userID, 12)
	require.NoError(t, err)
	require.True(t, added)
	added, err = InsertMark(ctx, tx, PinnedTable, userID, 12)
	require.NoError(t, err)
	require.False(t, added)
	_, err = InsertMark(ctx, tx, PinnedTable, userID, 4)
	require.NoError(t, err)

	ids, err := GetMarks(ctx, tx, PinnedTable, userID)
	require.NoError(t, err)
	require.Equal(t, []int64{4, 12}, ids)

	removed, err := DeleteMark(ctx, tx, PinnedTable, userID, 12)
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = DeleteMark(ctx, tx, PinnedTable, userID, 12)
	require.NoError(t, err)
	require.False(t, removed)
}
