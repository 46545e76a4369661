package handlers

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shaibs3/studyhub/internal/apperr"
	"github.com/shaibs3/studyhub/internal/service"
	"github.com/shaibs3/studyhub/internal/session"
	"go.uber.org/zap"
)

// StatusHandler serves a user's viewed and pinned marks under /users/{uid}.
type StatusHandler struct {
	resources *service.ResourceService
	logger    *zap.Logger
}

func NewStatusHandler(resources *service.ResourceService) *StatusHandler {
	return &StatusHandler{resources: resources, logger: zap.NewNop()}
}

// RegisterRoutes registers the routes for this handler
func (h *StatusHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	h.logger = logger.Named("status_handler")
	users := router.PathPrefix("/users/{uid}").Subrouter()
	users.HandleFunc("/viewed", h.withOwner(h.handleListViewed)).Methods(http.MethodGet)
	users.HandleFunc("/viewed", h.withOwner(h.handleMarkViewed)).Methods(http.MethodPost)
	users.HandleFunc("/pinned", h.withOwner(h.handleListPinned)).Methods(http.MethodGet)
	users.HandleFunc("/pinned", h.withOwner(h.handlePin)).Methods(http.MethodPost)
	users.HandleFunc("/pinned/{rid}", h.withOwner(h.handleUnpin)).Methods(http.MethodDelete)
}

type ownedHandler func(w http.ResponseWriter, r *http.Request, id session.Identity)

// withOwner requires a session whose user matches the {uid} path segment.
func (h *StatusHandler) withOwner(next ownedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := requireIdentity(w, r, "Please log in to manage your resources")
		if !ok {
			return
		}
		uid, err := pathID(r, "uid", "Invalid user ID")
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		if uid != id.UserID {
			writeError(w, r, h.logger, apperr.Forbidden("Access denied. You can only access your own data."))
			return
		}
		next(w, r, id)
	}
}

// resourceIDBody accepts {"resource_id": 5} and {"resource_id": "5"}.
type resourceIDBody struct {
	ResourceID flexibleID `json:"resource_id"`
}

type flexibleID int64

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		// Unparseable ids read as missing.
		*f = 0
		return nil
	}
	*f = flexibleID(n)
	return nil
}

func (h *StatusHandler) handleListViewed(w http.ResponseWriter, r *http.Request, id session.Identity) {
	refs, err := h.resources.ListViewed(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, refs)
}

func (h *StatusHandler) handleMarkViewed(w http.ResponseWriter, r *http.Request, id session.Identity) {
	var body resourceIDBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	added, err := h.resources.MarkViewed(r.Context(), id.UserID, int64(body.ResourceID))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if added {
		WriteMessage(w, http.StatusOK, "Resource marked as viewed")
		return
	}
	WriteMessage(w, http.StatusOK, "Resource was already marked as viewed")
}

func (h *StatusHandler) handleListPinned(w http.ResponseWriter, r *http.Request, id session.Identity) {
	refs, err := h.resources.ListPinned(r.Context(), id.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, refs)
}

func (h *StatusHandler) handlePin(w http.ResponseWriter, r *http.Request, id session.Identity) {
	var body resourceIDBody
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	added, err := h.resources.Pin(r.Context(), id.UserID, int64(body.ResourceID))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if added {
		WriteMessage(w, http.StatusOK, "Resource pinned successfully")
		return
	}
	WriteMessage(w, http.StatusOK, "Resource was already pinned")
}

func (h *StatusHandler) handleUnpin(w http.ResponseWriter, r *http.Request, id session.Identity) {
	rid, err := pathID(r, "rid", "Resource ID is required in URL")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.resources.Unpin(r.Context(), id.UserID, rid); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Resource unpinned successfully")
}
