package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shaibs3/studyhub/internal/apperr"
	"github.com/shaibs3/studyhub/internal/db"
	"github.com/shaibs3/studyhub/internal/events"
	"github.com/shaibs3/studyhub/internal/session"
	"github.com/shaibs3/studyhub/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store     *storage.InMemoryProvider
	sessions  *session.Manager
	recorder  *events.Recorder
	auth      *AuthService
	tasks     *TaskService
	resources *ResourceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := storage.NewInMemoryProvider()
	sessions := session.NewManager(session.NewMemoryStore(zap.NewNop()), "secret", time.Hour)
	rec := events.NewRecorder()
	return &testEnv{
		store:     store,
		sessions:  sessions,
		recorder:  rec,
		auth:      NewAuthService(store, sessions, rec, zap.NewNop(), WithBcryptCost(bcrypt.MinCost)),
		tasks:     NewTaskService(store, rec, zap.NewNop()),
		resources: NewResourceService(store, rec, zap.NewNop()),
	}
}

func requireKind(t *testing.T, err error, kind apperr.Kind, message string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), err.Error())
	require.Equal(t, message, apperr.Message(err))
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// failingProvider fails task writes and delegates everything else.
type failingProvider struct {
	storage.Provider
}

var errStoreDown = errors.New("store down")

func (failingProvider) DeleteTask(ctx context.Context, id, userID int64) (int64, error) {
	return 0, errStoreDown
}

func (failingProvider) UpdateTask(ctx context.Context, id, userID int64, update *db.UpdateBuilder) (int64, error) {
	return 0, errStoreDown
}
