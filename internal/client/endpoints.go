package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shaibs3/studyhub/internal/db_model"
)

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

type registerBody struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, username, password string) (int64, error) {
	var out registerBody
	if err := c.do(ctx, http.MethodPost, "/auth", authRequest{Action: "register", Username: username, Password: password}, &out); err != nil {
		return 0, err
	}
	return out.UserID, nil
}

// Login opens a session; the cookie is kept for later calls.
func (c *Client) Login(ctx context.Context, username, password string) (Status, error) {
	var out Status
	if err := c.do(ctx, http.MethodPost, "/auth", authRequest{Action: "login", Username: username, Password: password}, &out); err != nil {
		return Status{}, err
	}
	out.IsLoggedIn = true
	c.setUser(out.UserID)
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth", authRequest{Action: "logout"}, nil); err != nil {
		return err
	}
	c.setUser(0)
	return nil
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	var out Status
	if err := c.get(ctx, "/auth", &out); err != nil {
		return Status{}, err
	}
	if out.IsLoggedIn {
		c.setUser(out.UserID)
	} else {
		c.setUser(0)
	}
	return out, nil
}

// NewResource is the body of AddResource. Category and Description are optional.
type NewResource struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// Resources lists the shared catalog, newest first.
func (c *Client) Resources(ctx context.Context) ([]db_model.Resource, error) {
	var out []db_model.Resource
	if err := c.get(ctx, "/resources", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddResource(ctx context.Context, r NewResource) (int64, error) {
	var out createdBody
	if err := c.do(ctx, http.MethodPost, "/resources", r, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

type resourceRef struct {
	ResourceID int64 `json:"resource_id"`
}

func (c *Client) userPath(ctx context.Context, suffix string) (string, error) {
	uid, err := c.currentUser(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/users/%d/%s", uid, suffix), nil
}

func (c *Client) Viewed(ctx context.Context) ([]db_model.ResourceRef, error) {
	return c.listRefs(ctx, "viewed")
}

func (c *Client) Pinned(ctx context.Context) ([]db_model.ResourceRef, error) {
	return c.listRefs(ctx, "pinned")
}

func (c *Client) listRefs(ctx context.Context, kind string) ([]db_model.ResourceRef, error) {
	path, err := c.userPath(ctx, kind)
	if err != nil {
		return nil, err
	}
	var out []db_model.ResourceRef
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkViewed returns the server's message, which says whether the mark is new.
func (c *Client) MarkViewed(ctx context.Context, resourceID int64) (string, error) {
	return c.postRef(ctx, "viewed", resourceID)
}

// Pin returns the server's message, which says whether the pin is new.
func (c *Client) Pin(ctx context.Context, resourceID int64) (string, error) {
	return c.postRef(ctx, "pinned", resourceID)
}

func (c *Client) postRef(ctx context.Context, kind string, resourceID int64) (string, error) {
	path, err := c.userPath(ctx, kind)
	if err != nil {
		return "", err
	}
	var out messageBody
	if err := c.do(ctx, http.MethodPost, path, resourceRef{ResourceID: resourceID}, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Unpin(ctx context.Context, resourceID int64) error {
	path, err := c.userPath(ctx, fmt.Sprintf("pinned/%d", resourceID))
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// NewTask is the body of AddTask. DueDate is YYYY-MM-DD or empty.
type NewTask struct {
	Name    string `json:"name"`
	DueDate string `json:"dueDate,omitempty"`
	Course  string `json:"course,omitempty"`
}

// TaskUpdate lists the fields to change; nil fields are left alone. An
// empty DueDate clears the due date.
type TaskUpdate struct {
	Name      *string `json:"name,omitempty"`
	DueDate   *string `json:"due_date,omitempty"`
	Course    *string `json:"course,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Tasks lists the user's tasks in due order.
func (c *Client) Tasks(ctx context.Context) ([]db_model.Task, error) {
	var out []db_model.Task
	if err := c.get(ctx, "/tasks", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddTask(ctx context.Context, t NewTask) (int64, error) {
	var out createdBody
	if err := c.do(ctx, http.MethodPost, "/tasks", t, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, u TaskUpdate) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), u, nil)
}

// CompleteTask sets the completed flag.
func (c *Client) CompleteTask(ctx context.Context, id int64, done bool) error {
	return c.UpdateTask(ctx, id, TaskUpdate{Completed: &done})
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}
