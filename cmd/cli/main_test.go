package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shaibs3/studyhub/internal/db_model"
	"github.com/shaibs3/studyhub/internal/events"
	"github.com/shaibs3/studyhub/internal/handlers"
	"github.com/shaibs3/studyhub/internal/router"
	"github.com/shaibs3/studyhub/internal/service"
	"github.com/shaibs3/studyhub/internal/session"
	"github.com/shaibs3/studyhub/internal/storage"
	"github.com/shaibs3/studyhub/internal/view"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := storage.NewInMemoryProvider()
	sessions := session.NewManager(session.NewMemoryStore(zap.NewNop()), "secret", time.Hour)
	pub := events.NewRecorder()
	resources := service.NewResourceService(store, pub, zap.NewNop())

	r := router.NewRouter(nil, nil, zap.NewNop(), []router.Handler{
		handlers.NewAuthHandler(
			service.NewAuthService(store, sessions, pub, zap.NewNop(), service.WithBcryptCost(bcrypt.MinCost)),
			handlers.CookieConfig{Name: "studyhub_session", MaxAge: time.Hour},
		),
		handlers.NewResourceHandler(resources),
		handlers.NewStatusHandler(resources),
		handlers.NewTaskHandler(service.NewTaskService(store, pub, zap.NewNop())),
	}, router.WithSessions(sessions, "studyhub_session"))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun_SessionSurvivesInvocations(t *testing.T) {
	srv := newTestServer(t)
	sessionFile := filepath.Join(t.TempDir(), "session")

	cli := func(args ...string) (string, error) {
		var out bytes.Buffer
		full := append([]string{"-server", srv.URL, "-session", sessionFile}, args...)
		err := run(testContext(t), full, &out, zap.NewNop())
		return out.String(), err
	}

	out, err := cli("register", "alice", "pw")
	require.NoError(t, err)
	require.Contains(t, out, "registered alice")

	out, err = cli("status")
	require.NoError(t, err)
	require.Equal(t, "not logged in\n", out)

	_, err = cli("login", "alice", "pw")
	require.NoError(t, err)
	_, err = os.Stat(sessionFile)
	require.NoError(t, err)

	out, err = cli("status")
	require.NoError(t, err)
	require.Equal(t, "logged in as alice (id 1)\n", out)

	_, err = cli("add-resource", "-title", "Go Tour", "-url", "https://go.dev/tour", "-category", "Programming")
	require.NoError(t, err)
	_, err = cli("add-resource", "-title", "SICP", "-url", "https://example.com/sicp")
	require.NoError(t, err)

	out, err = cli("pin", "1")
	require.NoError(t, err)
	require.Equal(t, "Resource pinned successfully\n", out)

	out, err = cli("resources")
	require.NoError(t, err)
	require.Contains(t, out, "Pinned (1)\n  #1 Go Tour <https://go.dev/tour> [Programming]")
	require.Contains(t, out, "Viewed (0)\n  none")
	require.Contains(t, out, "Available (1)\n  #2 SICP")

	_, err = cli("add-task", "-name", "Essay", "-due", "2999-01-01", "-course", "HIST")
	require.NoError(t, err)
	_, err = cli("done", "1")
	require.NoError(t, err)

	out, err = cli("tasks")
	require.NoError(t, err)
	require.Contains(t, out, "[x] #1 Essay (HIST) due 2999-01-01")

	_, err = cli("delete-task", "7")
	require.ErrorContains(t, err, "Task not found")

	_, err = cli("logout")
	require.NoError(t, err)
	_, err = os.Stat(sessionFile)
	require.True(t, os.IsNotExist(err))

	_, err = cli("tasks")
	require.ErrorContains(t, err, "Please log in to manage tasks")
}

func TestRun_BadInput(t *testing.T) {
	var out bytes.Buffer
	err := run(testContext(t), nil, &out, zap.NewNop())
	require.ErrorContains(t, err, "missing command")
	require.Contains(t, out.String(), "usage:")

	srv := newTestServer(t)
	out.Reset()
	err = run(testContext(t), []string{"-server", srv.URL, "-session", "", "frobnicate"}, &out, zap.NewNop())
	require.ErrorContains(t, err, `unknown command "frobnicate"`)

	err = run(testContext(t), []string{"-server", srv.URL, "-session", "", "pin", "abc"}, &out, zap.NewNop())
	require.ErrorContains(t, err, `invalid id "abc"`)
}

func TestRenderTasks(t *testing.T) {
	now := time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC)
	due, err := db_model.ParseDate("2024-05-11")
	require.NoError(t, err)
	course := "HIST"

	var out bytes.Buffer
	renderTasks(&out, []db_model.Task{
		{ID: 1, Name: "Essay", Course: &course, DueDate: &due, CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: 2, Name: "Reading", Completed: true},
	}, now)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "[ ] #1 Essay (HIST) due 2024-05-11", lines[0])
	require.Equal(t, "    [################----]  80% warning", lines[1])
	require.Equal(t, "[x] #2 Reading", lines[2])

	out.Reset()
	renderTasks(&out, nil, now)
	require.Equal(t, "no tasks\n", out.String())
}

func TestRenderCatalog_Empty(t *testing.T) {
	var out bytes.Buffer
	renderCatalog(&out, view.Categorize(nil, nil, nil))
	require.Equal(t, "Pinned (0)\n  none\nViewed (0)\n  none\nAvailable (0)\n  none\n", out.String())
}
