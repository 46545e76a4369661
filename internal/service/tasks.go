package service

import (
	"context"
	"errors"

	"github.com/shaibs3/studyhub/internal/apperr"
	"github.com/shaibs3/studyhub/internal/db"
	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/shaibs3/studyhub/internal/events"
	"github.com/shaibs3/studyhub/internal/storage"
	"go.uber.org/zap"
)

const (
	msgTaskNotOwned   = "Task does not belong to the logged-in user"
	msgTaskNotFound   = "Task not found"
	msgNoValidFields  = "No valid fields provided for update"
	msgInvalidDueDate = "Invalid due date, expected YYYY-MM-DD"
)

// NewTask is the input of TaskService.Create. Empty strings mean absent.
type NewTask struct {
	Name    string
	DueDate string
	Course  string
}

// TaskPatch lists the fields to change; nil means untouched. An empty
// DueDate or Course clears the column.
type TaskPatch struct {
	Name      *string
	DueDate   *string
	Course    *string
	Completed *bool
}

func (p TaskPatch) IsEmpty() bool {
	return p.Name == nil && p.DueDate == nil && p.Course == nil && p.Completed == nil
}

// TaskService manages per-user tasks.
type TaskService struct {
	store  storage.Provider
	events events.Publisher
	logger *zap.Logger
}

func NewTaskService(store storage.Provider, pub events.Publisher, logger *zap.Logger) *TaskService {
	return &TaskService{store: store, events: pub, logger: logger.Named("tasks")}
}

func (s *TaskService) Create(ctx context.Context, userID int64, in NewTask) (int64, error) {
	if in.Name == "" {
		return 0, apperr.Validation("Task name is required")
	}
	task := db_model.Task{UserID: userID, Name: in.Name, Course: optional(in.Course)}
	if in.DueDate != "" {
		d, err := db_model.ParseDate(in.DueDate)
		if err != nil {
			return 0, apperr.Validation(msgInvalidDueDate)
		}
		task.DueDate = &d
	}

	id, err := s.store.CreateTask(ctx, task)
	if err != nil {
		return 0, apperr.Internal("Error adding task", err)
	}
	publish(ctx, s.events, s.logger, events.New(events.TaskCreated, userID, id))
	return id, nil
}

func (s *TaskService) List(ctx context.Context, userID int64) ([]db_model.Task, error) {
	tasks, err := s.store.ListTasks(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("Error fetching tasks", err)
	}
	return tasks, nil
}

// Update applies patch to a task owned by userID.
func (s *TaskService) Update(ctx context.Context, userID, id int64, patch TaskPatch) error {
	update, err := buildTaskUpdate(patch)
	if err != nil {
		return err
	}

	n, err := s.store.UpdateTask(ctx, id, userID, update)
	if errors.Is(err, db.ErrNoAssignments) {
		return apperr.Validation(msgNoValidFields)
	}
	if err != nil {
		return apperr.Internal("Error updating task", err)
	}
	if n == 0 {
		return s.missingTaskError(ctx, id)
	}
	publish(ctx, s.events, s.logger, events.New(events.TaskUpdated, userID, id))
	return nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	n, err := s.store.DeleteTask(ctx, id, userID)
	if err != nil {
		return apperr.Internal("Error deleting task", err)
	}
	if n == 0 {
		return s.missingTaskError(ctx, id)
	}
	publish(ctx, s.events, s.logger, events.New(events.TaskDeleted, userID, id))
	return nil
}

// missingTaskError tells a foreign task from an absent one after a scoped
// write matched nothing.
func (s *TaskService) missingTaskError(ctx context.Context, id int64) error {
	exists, err := s.store.TaskExists(ctx, id)
	if err != nil {
		return apperr.Internal("Error checking task", err)
	}
	if exists {
		return apperr.Forbidden(msgTaskNotOwned)
	}
	return apperr.NotFound(msgTaskNotFound)
}

func buildTaskUpdate(patch TaskPatch) (*db.UpdateBuilder, error) {
	if patch.IsEmpty() {
		return nil, apperr.Validation(msgNoValidFields)
	}
	update := db.NewUpdateBuilder(db.TasksTable)
	if patch.Name != nil {
		update.Set("name", *patch.Name)
	}
	if patch.DueDate != nil {
		if *patch.DueDate == "" {
			update.Set("due_date", nil)
		} else {
			d, err := db_model.ParseDate(*patch.DueDate)
			if err != nil {
				return nil, apperr.Validation(msgInvalidDueDate)
			}
			update.Set("due_date", db.DueValue(&d))
		}
	}
	if patch.Course != nil {
		if *patch.Course == "" {
			update.Set("course", nil)
		} else {
			update.Set("course", *patch.Course)
		}
	}
	if patch.Completed != nil {
		update.Set("completed", *patch.Completed)
	}
	return update, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
