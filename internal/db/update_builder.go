package db

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAssignments is returned when an update has nothing to set.
var ErrNoAssignments = errors.New("no columns to update")

// Assignment is one column = value pair.
type Assignment struct {
	Column string
	Value  interface{}
}

// UpdateBuilder accumulates the columns of a partial update in insertion order.
type UpdateBuilder struct {
	table       string
	assignments []Assignment
}

func NewUpdateBuilder(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

// Set adds a column, replacing an earlier value for the same column.
func (b *UpdateBuilder) Set(column string, value interface{}) *UpdateBuilder {
	for i := range b.assignments {
		if b.assignments[i].Column == column {
			b.assignments[i].Value = value
			return b
		}
	}
	b.assignments = append(b.assignments, Assignment{Column: column, Value: value})
	return b
}

func (b *UpdateBuilder) Table() string {
	return b.table
}

func (b *UpdateBuilder) Len() int {
	return len(b.assignments)
}

func (b *UpdateBuilder) Empty() bool {
	return len(b.assignments) == 0
}

// Assignments returns a copy of the accumulated pairs.
func (b *UpdateBuilder) Assignments() []Assignment {
	out := make([]Assignment, len(b.assignments))
	copy(out, b.assignments)
	return out
}

// Columns returns the pairs as a map, the form gorm's Updates expects.
func (b *UpdateBuilder) Columns() map[string]interface{} {
	out := make(map[string]interface{}, len(b.assignments))
	for _, a := range b.assignments {
		out[a.Column] = a.Value
	}
	return out
}

// SQL renders a Postgres UPDATE with $n placeholders. The where pairs are
// joined with AND after the SET list.
func (b *UpdateBuilder) SQL(where ...Assignment) (string, []interface{}, error) {
	if b.Empty() {
		return "", nil, ErrNoAssignments
	}

	args := make([]interface{}, 0, len(b.assignments)+len(where))
	sets := make([]string, 0, len(b.assignments))
	for _, a := range b.assignments {
		args = append(args, a.Value)
		sets = append(sets, fmt.Sprintf("%s = $%d", a.Column, len(args)))
	}

	var sb strings.Builder
	sb.WriteString("UPDATE ")
	sb.WriteString(b.table)
	sb.WriteString(" SET ")
	sb.WriteString(strings.Join(sets, ", "))

	if len(where) > 0 {
		conds := make([]string, 0, len(where))
		for _, w := range where {
			args = append(args, w.Value)
			conds = append(conds, fmt.Sprintf("%s = $%d", w.Column, len(args)))
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	return sb.String(), args, nil
}
