package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shaibs3/studyhub/internal/db_model"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// InsertUser creates a user and returns its id.
func InsertUser(ctx context.Context, q Querier, username, passwordHash string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash,
	).Scan(&id)
	return id, err
}

// GetUserByUsername returns nil when no user matches.
func GetUserByUsername(ctx context.Context, q Querier, username string) (*db_model.User, error) {
	var u db_model.User
	err := q.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at FROM users WHERE username = $1`,
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// InsertResource creates a catalog entry and returns its id.
func InsertResource(ctx context.Context, q Querier, r db_model.Resource) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO resources (title, url, category, description, user_id) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		r.Title, r.URL, nullString(r.Category), nullString(r.Description), r.UserID,
	).Scan(&id)
	return id, err
}

// GetResources lists the catalog newest first.
func GetResources(ctx context.Context, q Querier) ([]db_model.Resource, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, title, url, category, description, user_id, created_at
		FROM resources
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []db_model.Resource{}
	for rows.Next() {
		var (
			rec         db_model.Resource
			category    sql.NullString
			description sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.URL, &category, &description, &rec.UserID, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Category = stringPtr(category)
		rec.Description = stringPtr(description)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertMark adds a (user, resource) pair to a status table. It reports
// false when the pair was already present.
func InsertMark(ctx context.Context, q Querier, table string, userID, resourceID int64) (bool, error) {
	if err := checkMarkTable(table); err != nil {
		return false, err
	}
	res, err := q.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (user_id, resource_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, table),
		userID, resourceID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// DeleteMark removes a (user, resource) pair and reports whether it existed.
func DeleteMark(ctx context.Context, q Querier, table string, userID, resourceID int64) (bool, error) {
	if err := checkMarkTable(table); err != nil {
		return false, err
	}
	res, err := q.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND resource_id = $2`, table),
		userID, resourceID,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetMarks returns the resource ids a user has in a status table.
func GetMarks(ctx context.Context, q Querier, table string, userID int64) ([]int64, error) {
	if err := checkMarkTable(table); err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT resource_id FROM %s WHERE user_id = $1 ORDER BY resource_id ASC`, table),
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// InsertTask creates a task and returns its id.
func InsertTask(ctx context.Context, q Querier, t db_model.Task) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx,
		`INSERT INTO tasks (user_id, name, due_date, course, completed) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		t.UserID, t.Name, DueValue(t.DueDate), nullString(t.Course), t.Completed,
	).Scan(&id)
	return id, err
}

// GetTasks lists a user's tasks: dated before undated, then by due date,
// then by creation.
func GetTasks(ctx context.Context, q Querier, userID int64) ([]db_model.Task, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, name, due_date, course, completed, created_at
		FROM tasks
		WHERE user_id = $1
		ORDER BY due_date IS NULL, due_date ASC, created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []db_model.Task{}
	for rows.Next() {
		var (
			task   db_model.Task
			due    sql.NullTime
			course sql.NullString
		)
		if err := rows.Scan(&task.ID, &task.UserID, &task.Name, &due, &course, &task.Completed, &task.CreatedAt); err != nil {
			return nil, err
		}
		task.DueDate = datePtr(due)
		task.Course = stringPtr(course)
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// UpdateTask applies the builder to the task owned by userID and returns the
// number of matched rows.
func UpdateTask(ctx context.Context, q Querier, id, userID int64, b *UpdateBuilder) (int64, error) {
	query, args, err := b.SQL(Assignment{"id", id}, Assignment{"user_id", userID})
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteTask removes the task owned by userID and returns the affected rows.
func DeleteTask(ctx context.Context, q Querier, id, userID int64) (int64, error) {
	res, err := q.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// TaskExists checks the id alone, regardless of owner.
func TaskExists(ctx context.Context, q Querier, id int64) (bool, error) {
	var found int64
	err := q.QueryRowContext(ctx, `SELECT id FROM tasks WHERE id = $1`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func checkMarkTable(table string) error {
	if table != ViewedTable && table != PinnedTable {
		return fmt.Errorf("unknown status table %q", table)
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func datePtr(nt sql.NullTime) *db_model.Date {
	if !nt.Valid {
		return nil
	}
	d := db_model.NewDate(nt.Time)
	return &d
}

// DueValue converts an optional date into a driver value.
func DueValue(d *db_model.Date) interface{} {
	if d == nil {
		return nil
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}
