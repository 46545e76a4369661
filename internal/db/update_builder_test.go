package db

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpdateBuilder_SQL(t *testing.T) {
	b := NewUpdateBuilder(TasksTable).
		Set("name", "essay").
		Set("completed", true)

	query, args, err := b.SQL(Assignment{"id", int64(4)}, Assignment{"user_id", int64(9)})
	require.NoError(t, err)
	require.Equal(t, "UPDATE tasks SET name = $1, completed = $2 WHERE id = $3 AND user_id = $4", query)
	require.Equal(t, []interface{}{"essay", true, int64(4), int64(9)}, args)
}

func TestUpdateBuilder_SingleColumnNull(t *testing.T) {
	b := NewUpdateBuilder(TasksTable).Set("due_date", nil)

	query, args, err := b.SQL(Assignment{"id", int64(1)})
	require.NoError(t, err)
	require.Equal(t, "UPDATE tasks SET due_date = $1 WHERE id = $2", query)
	require.Equal(t, []interface{}{nil, int64(1)}, args)
}

func TestUpdateBuilder_Empty(t *testing.T) {
	b := NewUpdateBuilder(TasksTable)
	require.True(t, b.Empty())

	_, _, err := b.SQL(Assignment{"id", int64(1)})
	require.ErrorIs(t, err, ErrNoAssignments)
}

func TestUpdateBuilder_SetReplacesAndColumns(t *testing.T) {
	b := NewUpdateBuilder(TasksTable).
		Set("course", "math").
		Set("name", "a").
		Set("course", nil)

	require.Equal(t, 2, b.Len())
	require.Equal(t, []Assignment{{"course", nil}, {"name", "a"}}, b.Assignments())
	require.Equal(t, map[string]interface{}{"course": nil, "name": "a"}, b.Columns())
}
