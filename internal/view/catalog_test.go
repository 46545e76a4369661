package view

import (
	"testing"

	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/stretchr/testify/require"
)

func resources(ids ...int64) []db_model.Resource {
	out := make([]db_model.Resource, 0, len(ids))
	for _, id := range ids {
		out = append(out, db_model.Resource{ID: id, Title: "r"})
	}
	return out
}

func ids(rs []db_model.Resource) []int64 {
	out := make([]int64, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestCategorize(t *testing.T) {
	c := Categorize(resources(5, 4, 3, 2, 1), []int64{2, 4}, []int64{4, 3, 9})

	require.Equal(t, []int64{4, 2}, ids(c.Pinned))
	require.Equal(t, []int64{3}, ids(c.Viewed))
	require.Equal(t, []int64{5, 1}, ids(c.Available))

	p, v, a := c.Counts()
	require.Equal(t, 2, p)
	require.Equal(t, 1, v)
	require.Equal(t, 2, a)
}

func TestCategorize_Anonymous(t *testing.T) {
	c := Categorize(resources(3, 2, 1), nil, nil)
	require.Empty(t, c.Pinned)
	require.Empty(t, c.Viewed)
	require.Equal(t, []int64{3, 2, 1}, ids(c.Available))
}

func TestCategorize_Idempotent(t *testing.T) {
	in := resources(3, 2, 1)
	first := Categorize(in, []int64{1}, []int64{2})
	second := Categorize(in, []int64{1}, []int64{2})
	require.Equal(t, first, second)
	require.Equal(t, []int64{3, 2, 1}, ids(in))
}

func TestRefIDs(t *testing.T) {
	require.Equal(t, []int64{3, 7}, RefIDs([]db_model.ResourceRef{{ResourceID: 3}, {ResourceID: 7}}))
	require.Empty(t, RefIDs(nil))
}
