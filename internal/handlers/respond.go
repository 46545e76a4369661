package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shaibs3/studyhub/internal/apperr"
	"github.com/shaibs3/studyhub/internal/session"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && logger != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

// WriteMessage writes a {"message": ...} body.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, nil, status, messageResponse{Message: message})
}

// writeError maps err onto its status. Server-side failures are logged at
// error level, client errors at debug.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		logger.Error("request failed", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.String("kind", kind.String()), zap.Error(err))
	}
	writeJSON(w, logger, kind.HTTPStatus(), messageResponse{Message: apperr.Message(err)})
}

// requireIdentity writes 401 with message when the request is anonymous.
func requireIdentity(w http.ResponseWriter, r *http.Request, message string) (session.Identity, bool) {
	id, ok := session.FromContext(r.Context())
	if !ok {
		WriteMessage(w, http.StatusUnauthorized, message)
		return session.Identity{}, false
	}
	return id, true
}

// pathID parses a numeric route variable.
func pathID(r *http.Request, name, message string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.Validation(message)
	}
	return id, nil
}

// readBody returns the request body; an empty body decodes as {}.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, apperr.Validation("Invalid request body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

func decodeJSON(r *http.Request, v interface{}) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}
