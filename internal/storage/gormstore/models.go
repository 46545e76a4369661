package gormstore

import (
	"time"

	"github.com/shaibs3/studyhub/internal/db"
	"github.com/shaibs3/studyhub/internal/db_model"
)

type GormUser struct {
	ID           int64  `gorm:"primaryKey"`
	Username     string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	CreatedAt    time.Time
}

func (GormUser) TableName() string {
	return db.UsersTable
}

type GormResource struct {
	ID          int64  `gorm:"primaryKey"`
	Title       string `gorm:"not null"`
	URL         string `gorm:"column:url;not null"`
	Category    *string
	Description *string
	UserID      int64 `gorm:"index;not null"`
	CreatedAt   time.Time
}

func (GormResource) TableName() string {
	return db.ResourcesTable
}

type GormTask struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"index;not null"`
	Name      string     `gorm:"not null"`
	DueDate   *time.Time `gorm:"type:date"`
	Course    *string
	Completed bool `gorm:"not null;default:false"`
	CreatedAt time.Time
}

func (GormTask) TableName() string {
	return db.TasksTable
}

type GormViewedMark struct {
	UserID     int64     `gorm:"primaryKey;autoIncrement:false"`
	ResourceID int64     `gorm:"primaryKey;autoIncrement:false"`
	ViewedAt   time.Time `gorm:"autoCreateTime"`
}

func (GormViewedMark) TableName() string {
	return db.ViewedTable
}

type GormPinnedMark struct {
	UserID     int64     `gorm:"primaryKey;autoIncrement:false"`
	ResourceID int64     `gorm:"primaryKey;autoIncrement:false"`
	PinnedAt   time.Time `gorm:"autoCreateTime"`
}

func (GormPinnedMark) TableName() string {
	return db.PinnedTable
}

func (u GormUser) toModel() db_model.User {
	return db_model.User{ID: u.ID, Username: u.Username, PasswordHash: u.PasswordHash, CreatedAt: u.CreatedAt}
}

func (r GormResource) toModel() db_model.Resource {
	return db_model.Resource{
		ID:          r.ID,
		Title:       r.Title,
		URL:         r.URL,
		Category:    r.Category,
		Description: r.Description,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
	}
}

func (t GormTask) toModel() db_model.Task {
	task := db_model.Task{
		ID:        t.ID,
		UserID:    t.UserID,
		Name:      t.Name,
		Course:    t.Course,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
	if t.DueDate != nil {
		d := db_model.NewDate(*t.DueDate)
		task.DueDate = &d
	}
	return task
}

func taskFromModel(t db_model.Task) GormTask {
	task := GormTask{
		UserID:    t.UserID,
		Name:      t.Name,
		Course:    t.Course,
		Completed: t.Completed,
	}
	if due, ok := db.DueValue(t.DueDate).(time.Time); ok {
		task.DueDate = &due
	}
	return task
}
