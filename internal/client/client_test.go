package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shaibs3/studyhub/internal/events"
	"github.com/shaibs3/studyhub/internal/handlers"
	"github.com/shaibs3/studyhub/internal/router"
	"github.com/shaibs3/studyhub/internal/service"
	"github.com/shaibs3/studyhub/internal/session"
	"github.com/shaibs3/studyhub/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const cookieName = "studyhub_session"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := storage.NewInMemoryProvider()
	sessions := session.NewManager(session.NewMemoryStore(zap.NewNop()), "secret", time.Hour)
	pub := events.NewRecorder()
	resources := service.NewResourceService(store, pub, zap.NewNop())

	r := router.NewRouter(nil, nil, zap.NewNop(), []router.Handler{
		handlers.NewAuthHandler(
			service.NewAuthService(store, sessions, pub, zap.NewNop(), service.WithBcryptCost(bcrypt.MinCost)),
			handlers.CookieConfig{Name: cookieName, MaxAge: time.Hour},
		),
		handlers.NewResourceHandler(resources),
		handlers.NewStatusHandler(resources),
		handlers.NewTaskHandler(service.NewTaskService(store, pub, zap.NewNop())),
	}, router.WithSessions(sessions, cookieName))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func loggedIn(t *testing.T, srv *httptest.Server, username string) *Client {
	t.Helper()
	c := newClient(t, srv)
	_, err := c.Register(testContext(t), username, "pw")
	require.NoError(t, err)
	_, err = c.Login(testContext(t), username, "pw")
	require.NoError(t, err)
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New("not a url")
	require.Error(t, err)
}

func TestClient_AuthFlow(t *testing.T) {
	srv := newTestServer(t)
	c := newClient(t, srv)
	ctx := testContext(t)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	require.False(t, st.IsLoggedIn)

	id, err := c.Register(ctx, "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, int64(1), id)

	_, err = c.Register(ctx, "alice", "pw")
	require.True(t, IsStatus(err, http.StatusConflict))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Username already exists", apiErr.Message)

	_, err = c.Login(ctx, "alice", "wrong")
	require.True(t, IsStatus(err, http.StatusUnauthorized))

	st, err = c.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	require.Equal(t, Status{IsLoggedIn: true, UserID: 1, Username: "alice"}, st)

	st, err = c.Status(ctx)
	require.NoError(t, err)
	require.True(t, st.IsLoggedIn)
	require.Equal(t, "alice", st.Username)

	require.NoError(t, c.Logout(ctx))
	st, err = c.Status(ctx)
	require.NoError(t, err)
	require.False(t, st.IsLoggedIn)

	// Logout is idempotent.
	require.NoError(t, c.Logout(ctx))
}

func TestClient_CatalogAndStatus(t *testing.T) {
	srv := newTestServer(t)
	alice := loggedIn(t, srv, "alice")
	ctx := testContext(t)

	first, err := alice.AddResource(ctx, NewResource{Title: "Go Tour", URL: "https://go.dev/tour", Category: "Programming"})
	require.NoError(t, err)
	second, err := alice.AddResource(ctx, NewResource{Title: "SICP", URL: "https://example.com/sicp"})
	require.NoError(t, err)
	third, err := alice.AddResource(ctx, NewResource{Title: "CLRS", URL: "https://example.com/clrs"})
	require.NoError(t, err)

	msg, err := alice.MarkViewed(ctx, first)
	require.NoError(t, err)
	require.Equal(t, "Resource marked as viewed", msg)
	msg, err = alice.MarkViewed(ctx, first)
	require.NoError(t, err)
	require.Equal(t, "Resource was already marked as viewed", msg)

	_, err = alice.MarkViewed(ctx, second)
	require.NoError(t, err)
	msg, err = alice.Pin(ctx, second)
	require.NoError(t, err)
	require.Equal(t, "Resource pinned successfully", msg)

	catalog, err := alice.Categorized(ctx)
	require.NoError(t, err)
	p, v, a := catalog.Counts()
	require.Equal(t, [3]int{1, 1, 1}, [3]int{p, v, a})
	require.Equal(t, second, catalog.Pinned[0].ID)
	require.Equal(t, first, catalog.Viewed[0].ID)
	require.Equal(t, third, catalog.Available[0].ID)

	require.NoError(t, alice.Unpin(ctx, second))
	err = alice.Unpin(ctx, second)
	require.True(t, IsStatus(err, http.StatusNotFound))

	// Anonymous visitors see everything as available.
	anon := newClient(t, srv)
	catalog, err = anon.Categorized(ctx)
	require.NoError(t, err)
	p, v, a = catalog.Counts()
	require.Equal(t, [3]int{0, 0, 3}, [3]int{p, v, a})

	_, err = anon.AddResource(ctx, NewResource{Title: "x", URL: "y"})
	require.True(t, IsStatus(err, http.StatusUnauthorized))
	_, err = anon.Pin(ctx, first)
	require.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestClient_Tasks(t *testing.T) {
	srv := newTestServer(t)
	alice := loggedIn(t, srv, "alice")
	bob := loggedIn(t, srv, "bob")
	ctx := testContext(t)

	essay, err := alice.AddTask(ctx, NewTask{Name: "Essay", DueDate: "2024-05-01", Course: "HIST"})
	require.NoError(t, err)
	_, err = alice.AddTask(ctx, NewTask{Name: "Reading"})
	require.NoError(t, err)

	_, err = alice.AddTask(ctx, NewTask{Name: ""})
	require.True(t, IsStatus(err, http.StatusBadRequest))

	require.NoError(t, alice.CompleteTask(ctx, essay, true))
	tasks, err := alice.Tasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, "Essay", tasks[0].Name)
	require.True(t, tasks[0].Completed)

	noDue := ""
	require.NoError(t, alice.UpdateTask(ctx, essay, TaskUpdate{DueDate: &noDue}))
	tasks, err = alice.Tasks(ctx)
	require.NoError(t, err)
	for _, task := range tasks {
		require.Nil(t, task.DueDate)
	}

	err = bob.DeleteTask(ctx, essay)
	require.True(t, IsStatus(err, http.StatusForbidden))
	err = bob.CompleteTask(ctx, essay, false)
	require.True(t, IsStatus(err, http.StatusForbidden))

	require.NoError(t, alice.DeleteTask(ctx, essay))
	err = alice.DeleteTask(ctx, essay)
	require.True(t, IsStatus(err, http.StatusNotFound))

	bobTasks, err := bob.Tasks(ctx)
	require.NoError(t, err)
	require.Empty(t, bobTasks)
}

func TestClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := newClient(t, srv)
	_, err := c.Resources(testContext(t))
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.Status)
	require.Equal(t, "upstream exploded", apiErr.Message)
}

func TestClient_RetriesTransportErrors(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(url, WithRetryAttempts(2))
	require.NoError(t, err)
	_, err = c.Resources(testContext(t))
	require.Error(t, err)
	var apiErr *APIError
	require.False(t, errors.As(err, &apiErr))
}

func TestClient_CookiesCarryTheSession(t *testing.T) {
	srv := newTestServer(t)
	alice := loggedIn(t, srv, "alice")
	require.NotEmpty(t, alice.Cookies())

	resumed := newClient(t, srv)
	resumed.SetCookies(alice.Cookies())
	st, err := resumed.Status(testContext(t))
	require.NoError(t, err)
	require.True(t, st.IsLoggedIn)
	require.Equal(t, "alice", st.Username)
}
