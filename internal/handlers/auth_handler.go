package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shaibs3/studyhub/internal/apperr"
	"github.com/shaibs3/studyhub/internal/service"
	"go.uber.org/zap"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	MaxAge time.Duration
}

// AuthHandler serves /auth.
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
	logger *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{auth: auth, cookie: cookie, logger: zap.NewNop()}
}

// RegisterRoutes registers the routes for this handler
func (h *AuthHandler) RegisterRoutes(router *mux.Router, logger *zap.Logger) {
	h.logger = logger.Named("auth_handler")
	router.HandleFunc("/auth", h.handleStatus).Methods(http.MethodGet)
	router.HandleFunc("/auth", h.handleAction).Methods(http.MethodPost)
}

type statusResponse struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	UserID     int64  `json:"userId,omitempty"`
	Username   string `json:"username,omitempty"`
}

type authRequest struct {
	Action   string `json:"action"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"userId"`
}

type loginResponse struct {
	Message  string `json:"message"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

func (h *AuthHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.auth.Status(r.Context())
	if !ok {
		writeJSON(w, h.logger, http.StatusOK, statusResponse{IsLoggedIn: false})
		return
	}
	writeJSON(w, h.logger, http.StatusOK, statusResponse{IsLoggedIn: true, UserID: id.UserID, Username: id.Username})
}

func (h *AuthHandler) handleAction(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	switch req.Action {
	case "register":
		id, err := h.auth.Register(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusCreated, registerResponse{Message: "User registered successfully", UserID: id})

	case "login":
		res, err := h.auth.Login(r.Context(), req.Username, req.Password, h.tokenFrom(r))
		if err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		h.setCookie(w, res.Token, h.cookie.MaxAge)
		writeJSON(w, h.logger, http.StatusOK, loginResponse{
			Message:  "Login successful",
			UserID:   res.Identity.UserID,
			Username: res.Identity.Username,
		})

	case "logout":
		if err := h.auth.Logout(r.Context(), h.tokenFrom(r)); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
		h.setCookie(w, "", -1)
		WriteMessage(w, http.StatusOK, "Logout successful")

	default:
		writeError(w, r, h.logger, apperr.Validation("Invalid authentication action"))
	}
}

func (h *AuthHandler) tokenFrom(r *http.Request) string {
	c, err := r.Cookie(h.cookie.Name)
	if err != nil {
		return ""
	}
	return c.Value
}

// setCookie writes the session cookie; a negative maxAge expires it.
func (h *AuthHandler) setCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	c := &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if maxAge < 0 {
		c.MaxAge = -1
		c.Expires = time.Unix(0, 0)
	} else {
		c.MaxAge = int(maxAge.Seconds())
	}
	http.SetCookie(w, c)
}
