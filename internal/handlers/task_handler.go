package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shaibs3/studyhub/internal/apperr"
	"github.com/shaibs3/studyhub/internal/service"
	"go.uber.org/zap"
)

const msgLoginForTasks = "Please log in to manage tasks"

// TaskHandler serves the logged-in user's tasks.
type TaskHandler struct {
	tasks  *service.TaskService
	logger *zap.Logger
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: zap.NewNop()}
}

// RegisterRoutes registers the routes for this handler
func (h *TaskHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	h.logger = logger.Named("task_handler")
	router.HandleFunc("/tasks", h.handleList).Methods(http.MethodGet)
	router.HandleFunc("/tasks", h.handleCreate).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{id}", h.handleUpdate).Methods(http.MethodPut, http.MethodPatch)
	router.HandleFunc("/tasks/{id}", h.handleDelete).Methods(http.MethodDelete)
}

// createTaskRequest accepts due_date as an alias of dueDate.
type createTaskRequest struct {
	Name         string  `json:"name"`
	DueDate      *string `json:"dueDate"`
	DueDateAlias *string `json:"due_date"`
	Course       string  `json:"course"`
}

func (h *TaskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, msgLoginForTasks)
	if !ok {
		return
	}
	tasks, err := h.tasks.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, tasks)
}

func (h *TaskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, msgLoginForTasks)
	if !ok {
		return
	}
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	due := ""
	switch {
	case req.DueDate != nil:
		due = *req.DueDate
	case req.DueDateAlias != nil:
		due = *req.DueDateAlias
	}
	taskID, err := h.tasks.Create(r.Context(), id.UserID, service.NewTask{Name: req.Name, DueDate: due, Course: req.Course})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, createdResponse{Message: "New task added successfully", ID: taskID})
}

func (h *TaskHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, msgLoginForTasks)
	if !ok {
		return
	}
	taskID, err := pathID(r, "id", "Invalid task ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	body, err := readBody(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	patch, err := decodeTaskPatch(body)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.tasks.Update(r.Context(), id.UserID, taskID, patch); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Task updated successfully")
}

func (h *TaskHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := requireIdentity(w, r, msgLoginForTasks)
	if !ok {
		return
	}
	taskID, err := pathID(r, "id", "Invalid task ID")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.tasks.Delete(r.Context(), id.UserID, taskID); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Task deleted successfully")
}

// decodeTaskPatch reads the recognized keys of a partial update. Unknown keys
// and null values are ignored.
func decodeTaskPatch(body []byte) (service.TaskPatch, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return service.TaskPatch{}, apperr.Validation("Invalid JSON body")
	}

	var patch service.TaskPatch
	if v, ok := present(raw, "name"); ok {
		s := scalarString(v)
		patch.Name = &s
	}
	if v, ok := present(raw, "due_date"); ok {
		s := ""
		if truthy(v) {
			s = scalarString(v)
		}
		patch.DueDate = &s
	}
	if v, ok := present(raw, "course"); ok {
		s := scalarString(v)
		patch.Course = &s
	}
	if v, ok := present(raw, "completed"); ok {
		b := truthy(v)
		patch.Completed = &b
	}
	return patch, nil
}

func present(raw map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil, false
	}
	return v, true
}

// scalarString returns a JSON string's contents, or the literal text of any
// other value.
func scalarString(v json.RawMessage) string {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

// truthy converts a JSON value to a boolean: false, 0, "", "0", "false",
// [] and {} are false.
func truthy(v json.RawMessage) bool {
	var decoded interface{}
	if err := json.Unmarshal(v, &decoded); err != nil {
		return false
	}
	switch t := decoded.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == "0" || strings.EqualFold(s, "false") {
			return false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f != 0
		}
		return true
	case []interface{}:
		return len(t) > 0
	case map[string]interface{}:
		return len(t) > 0
	default:
		return false
	}
}
