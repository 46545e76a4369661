package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shaibs3/studyhub/internal/db"
	"github.com/shaibs3/studyhub/internal/db_model"
)

type markKey struct {
	userID     int64
	resourceID int64
}

// InMemoryProvider keeps every table in process memory.
type InMemoryProvider struct {
	mu sync.RWMutex

	users     map[string]db_model.User
	resources []db_model.Resource
	tasks     map[int64]db_model.Task
	viewed    map[markKey]struct{}
	pinned    map[markKey]struct{}

	nextUserID     int64
	nextResourceID int64
	nextTaskID     int64

	now func() time.Time
}

func NewInMemoryProvider() *InMemoryProvider {
	return &InMemoryProvider{
		users:          make(map[string]db_model.User),
		tasks:          make(map[int64]db_model.Task),
		viewed:         make(map[markKey]struct{}),
		pinned:         make(map[markKey]struct{}),
		nextUserID:     1,
		nextResourceID: 1,
		nextTaskID:     1,
		now:            time.Now,
	}
}

func (m *InMemoryProvider) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[username]; ok {
		return 0, fmt.Errorf("user %q: %w", username, ErrDuplicate)
	}
	id := m.nextUserID
	m.nextUserID++
	m.users[username] = db_model.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    m.now(),
	}
	return id, nil
}

func (m *InMemoryProvider) GetUserByUsername(ctx context.Context, username string) (*db_model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *InMemoryProvider) CreateResource(ctx context.Context, r db_model.Resource) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextResourceID
	m.nextResourceID++
	r.CreatedAt = m.now()
	m.resources = append(m.resources, r)
	return r.ID, nil
}

func (m *InMemoryProvider) ListResources(ctx context.Context) ([]db_model.Resource, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]db_model.Resource, len(m.resources))
	copy(out, m.resources)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *InMemoryProvider) MarkViewed(ctx context.Context, userID, resourceID int64) (bool, error) {
	return m.insertMark(m.viewed, userID, resourceID), nil
}

func (m *InMemoryProvider) ListViewed(ctx context.Context, userID int64) ([]int64, error) {
	return m.listMarks(m.viewed, userID), nil
}

func (m *InMemoryProvider) Pin(ctx context.Context, userID, resourceID int64) (bool, error) {
	return m.insertMark(m.pinned, userID, resourceID), nil
}

func (m *InMemoryProvider) Unpin(ctx context.Context, userID, resourceID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := markKey{userID, resourceID}
	if _, ok := m.pinned[key]; !ok {
		return false, nil
	}
	delete(m.pinned, key)
	return true, nil
}

func (m *InMemoryProvider) ListPinned(ctx context.Context, userID int64) ([]int64, error) {
	return m.listMarks(m.pinned, userID), nil
}

func (m *InMemoryProvider) insertMark(set map[markKey]struct{}, userID, resourceID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := markKey{userID, resourceID}
	if _, ok := set[key]; ok {
		return false
	}
	set[key] = struct{}{}
	return true
}

func (m *InMemoryProvider) listMarks(set map[markKey]struct{}, userID int64) []int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := []int64{}
	for key := range set {
		if key.userID == userID {
			ids = append(ids, key.resourceID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (m *InMemoryProvider) CreateTask(ctx context.Context, t db_model.Task) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextTaskID
	m.nextTaskID++
	t.CreatedAt = m.now()
	m.tasks[t.ID] = t
	return t.ID, nil
}

func (m *InMemoryProvider) ListTasks(ctx context.Context, userID int64) ([]db_model.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []db_model.Task{}
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return taskLess(out[i], out[j]) })
	return out, nil
}

// taskLess orders dated tasks first, then by due date, creation time and id.
func taskLess(a, b db_model.Task) bool {
	if (a.DueDate == nil) != (b.DueDate == nil) {
		return a.DueDate != nil
	}
	if a.DueDate != nil && !a.DueDate.Equal(b.DueDate.Time) {
		return a.DueDate.Before(b.DueDate.Time)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (m *InMemoryProvider) UpdateTask(ctx context.Context, id, userID int64, update *db.UpdateBuilder) (int64, error) {
	if update.Empty() {
		return 0, db.ErrNoAssignments
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return 0, nil
	}
	for _, a := range update.Assignments() {
		if err := applyTaskAssignment(&t, a); err != nil {
			return 0, err
		}
	}
	m.tasks[id] = t
	return 1, nil
}

func applyTaskAssignment(t *db_model.Task, a db.Assignment) error {
	switch a.Column {
	case "name":
		name, ok := a.Value.(string)
		if !ok {
			return fmt.Errorf("name: unexpected value type %T", a.Value)
		}
		t.Name = name
	case "course":
		switch v := a.Value.(type) {
		case nil:
			t.Course = nil
		case string:
			t.Course = &v
		default:
			return fmt.Errorf("course: unexpected value type %T", a.Value)
		}
	case "due_date":
		switch v := a.Value.(type) {
		case nil:
			t.DueDate = nil
		case time.Time:
			d := db_model.NewDate(v)
			t.DueDate = &d
		default:
			return fmt.Errorf("due_date: unexpected value type %T", a.Value)
		}
	case "completed":
		done, ok := a.Value.(bool)
		if !ok {
			return fmt.Errorf("completed: unexpected value type %T", a.Value)
		}
		t.Completed = done
	default:
		return fmt.Errorf("unknown task column %q", a.Column)
	}
	return nil
}

func (m *InMemoryProvider) DeleteTask(ctx context.Context, id, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return 0, nil
	}
	delete(m.tasks, id)
	return 1, nil
}

func (m *InMemoryProvider) TaskExists(ctx context.Context, id int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.tasks[id]
	return ok, nil
}

func (m *InMemoryProvider) Ping(ctx context.Context) error {
	return nil
}

func (m *InMemoryProvider) Close() error {
	return nil
}
