// Command cli is a terminal front end for a StudyHub server.
//
//	cli [-server URL] [-session FILE] <command> [args]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/shaibs3/studyhub/internal/client"
	"github.com/shaibs3/studyhub/internal/logger"
	"go.uber.org/zap"
)

const usage = `usage: cli [-server URL] [-session FILE] <command> [args]

commands:
  register <username> <password>
  login <username> <password>
  logout
  status
  resources
  add-resource -title T -url U [-category C] [-description D]
  view <resource-id>
  pin <resource-id>
  unpin <resource-id>
  tasks
  add-task -name N [-due YYYY-MM-DD] [-course C]
  done [-undo] <task-id>
  delete-task <task-id>
`

func main() {
	log, err := logger.NewLogger("development", envOr("STUDYHUB_LOG_LEVEL", "warn"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, log); err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "error (%d): %s\n", apiErr.Status, apiErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, log *zap.Logger) error {
	fs := flag.NewFlagSet("cli", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() { fmt.Fprint(out, usage) }
	server := fs.String("server", envOr("STUDYHUB_URL", "http://localhost:8080"), "server base URL")
	sessionFile := fs.String("session", defaultSessionFile(), "file holding the session cookie")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	c, err := client.New(*server)
	if err != nil {
		return err
	}
	jar := &cookieFile{path: *sessionFile, logger: log}
	c.SetCookies(jar.load())

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if err := dispatch(ctx, c, cmd, rest, out); err != nil {
		return err
	}
	return jar.save(c.Cookies())
}

func dispatch(ctx context.Context, c *client.Client, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "register":
		if len(args) != 2 {
			return errors.New("register needs <username> <password>")
		}
		id, err := c.Register(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "registered %s (id %d); now run login\n", args[0], id)

	case "login":
		if len(args) != 2 {
			return errors.New("login needs <username> <password>")
		}
		st, err := c.Login(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "logged in as %s (id %d)\n", st.Username, st.UserID)

	case "logout":
		if err := c.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(out, "logged out")

	case "status":
		st, err := c.Status(ctx)
		if err != nil {
			return err
		}
		if !st.IsLoggedIn {
			fmt.Fprintln(out, "not logged in")
			return nil
		}
		fmt.Fprintf(out, "logged in as %s (id %d)\n", st.Username, st.UserID)

	case "resources":
		catalog, err := c.Categorized(ctx)
		if err != nil {
			return err
		}
		renderCatalog(out, catalog)

	case "add-resource":
		fs := flag.NewFlagSet("add-resource", flag.ContinueOnError)
		fs.SetOutput(out)
		var r client.NewResource
		fs.StringVar(&r.Title, "title", "", "resource title")
		fs.StringVar(&r.URL, "url", "", "resource link")
		fs.StringVar(&r.Category, "category", "", "optional category")
		fs.StringVar(&r.Description, "description", "", "optional description")
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := c.AddResource(ctx, r)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added resource %d\n", id)

	case "view", "pin":
		id, err := oneID(cmd, args)
		if err != nil {
			return err
		}
		mark := c.MarkViewed
		if cmd == "pin" {
			mark = c.Pin
		}
		msg, err := mark(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, msg)

	case "unpin":
		id, err := oneID(cmd, args)
		if err != nil {
			return err
		}
		if err := c.Unpin(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(out, "unpinned")

	case "tasks":
		tasks, err := c.Tasks(ctx)
		if err != nil {
			return err
		}
		renderTasks(out, tasks, time.Now())

	case "add-task":
		fs := flag.NewFlagSet("add-task", flag.ContinueOnError)
		fs.SetOutput(out)
		var t client.NewTask
		fs.StringVar(&t.Name, "name", "", "task name")
		fs.StringVar(&t.DueDate, "due", "", "due date, YYYY-MM-DD")
		fs.StringVar(&t.Course, "course", "", "optional course")
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := c.AddTask(ctx, t)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added task %d\n", id)

	case "done":
		fs := flag.NewFlagSet("done", flag.ContinueOnError)
		fs.SetOutput(out)
		undo := fs.Bool("undo", false, "mark the task as not done")
		if err := fs.Parse(args); err != nil {
			return err
		}
		id, err := oneID(cmd, fs.Args())
		if err != nil {
			return err
		}
		if err := c.CompleteTask(ctx, id, !*undo); err != nil {
			return err
		}
		fmt.Fprintln(out, "task updated")

	case "delete-task":
		id, err := oneID(cmd, args)
		if err != nil {
			return err
		}
		if err := c.DeleteTask(ctx, id); err != nil {
			return err
		}
		fmt.Fprintln(out, "task deleted")

	default:
		fmt.Fprint(out, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func oneID(cmd string, args []string) (int64, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s needs exactly one id", cmd)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// cookieFile persists the session cookie between invocations.
type cookieFile struct {
	path   string
	logger *zap.Logger
}

type savedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func (f *cookieFile) load() []*http.Cookie {
	if f.path == "" {
		return nil
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.logger.Warn("failed to read session file", zap.String("path", f.path), zap.Error(err))
		}
		return nil
	}
	var saved []savedCookie
	if err := json.Unmarshal(raw, &saved); err != nil {
		f.logger.Warn("ignoring corrupt session file", zap.String("path", f.path), zap.Error(err))
		return nil
	}
	cookies := make([]*http.Cookie, 0, len(saved))
	for _, s := range saved {
		cookies = append(cookies, &http.Cookie{Name: s.Name, Value: s.Value})
	}
	return cookies
}

func (f *cookieFile) save(cookies []*http.Cookie) error {
	if f.path == "" {
		return nil
	}
	if len(cookies) == 0 {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	saved := make([]savedCookie, 0, len(cookies))
	for _, c := range cookies {
		saved = append(saved, savedCookie{Name: c.Name, Value: c.Value})
	}
	raw, err := json.Marshal(saved)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, raw, 0o600)
}

func defaultSessionFile() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, ".studyhub_session")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
