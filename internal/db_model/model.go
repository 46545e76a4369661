package db_model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire and storage format of a calendar date.
const DateLayout = "2006-01-02"

// User is a registered account.
type User struct {
	ID           int64     `db_model:"id" json:"id"`
	Username     string    `db_model:"username" json:"username"`
	PasswordHash string    `db_model:"password_hash" json:"-"`
	CreatedAt    time.Time `db_model:"created_at" json:"created_at"`
}

// Resource is an entry of the shared link catalog.
type Resource struct {
	ID          int64     `db_model:"id" json:"id"`
	Title       string    `db_model:"title" json:"title"`
	URL         string    `db_model:"url" json:"url"`
	Category    *string   `db_model:"category" json:"category"`
	Description *string   `db_model:"description" json:"description"`
	UserID      int64     `db_model:"user_id" json:"user_id"`
	CreatedAt   time.Time `db_model:"created_at" json:"created_at"`
}

// Task is a per-user work item.
type Task struct {
	ID        int64     `db_model:"id" json:"id"`
	UserID    int64     `db_model:"user_id" json:"-"`
	Name      string    `db_model:"name" json:"name"`
	DueDate   *Date     `db_model:"due_date" json:"due_date"`
	Course    *string   `db_model:"course" json:"course"`
	Completed bool      `db_model:"completed" json:"completed"`
	CreatedAt time.Time `db_model:"created_at" json:"created_at"`
}

// ResourceRef is one entry of a viewed or pinned listing.
type ResourceRef struct {
	ResourceID int64 `json:"resource_id"`
}

// Date is a calendar date without a time of day. The zero hour is UTC.
type Date struct {
	time.Time
}

// NewDate keeps only the year, month and day of t.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// In returns local midnight of the date in loc.
func (d Date) In(loc *time.Location) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	// Accept full timestamps as some drivers return them for date columns.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
