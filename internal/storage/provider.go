package storage

import (
	"context"

	"github.com/shaibs3/studyhub/internal/db"
	"github.com/shaibs3/studyhub/internal/db_model"
)

// Provider is the relational store behind the services. Writes scoped by
// owner return affected row counts; callers decide what zero means.
type Provider interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUserByUsername(ctx context.Context, username string) (*db_model.User, error)

	CreateResource(ctx context.Context, r db_model.Resource) (int64, error)
	ListResources(ctx context.Context) ([]db_model.Resource, error)

	MarkViewed(ctx context.Context, userID, resourceID int64) (bool, error)
	ListViewed(ctx context.Context, userID int64) ([]int64, error)
	Pin(ctx context.Context, userID, resourceID int64) (bool, error)
	Unpin(ctx context.Context, userID, resourceID int64) (bool, error)
	ListPinned(ctx context.Context, userID int64) ([]int64, error)

	CreateTask(ctx context.Context, t db_model.Task) (int64, error)
	ListTasks(ctx context.Context, userID int64) ([]db_model.Task, error)
	UpdateTask(ctx context.Context, id, userID int64, update *db.UpdateBuilder) (int64, error)
	DeleteTask(ctx context.Context, id, userID int64) (int64, error)
	TaskExists(ctx context.Context, id int64) (bool, error)

	Ping(ctx context.Context) error
	Close() error
}
