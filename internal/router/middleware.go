package router

import (
	"errors"
	"net/http"
	"time"

	"github.com/shaibs3/studyhub/internal/handlers"
	"github.com/shaibs3/studyhub/internal/session"
	"go.uber.org/zap"
)

// statusRecorder captures the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) code() int {
	if s.status == 0 {
		return http.StatusOK
	}
	return s.status
}

func (r *Router) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("panic while serving request",
					zap.Any("panic", rec),
					zap.String("method", req.Method),
					zap.String("path", req.URL.Path),
				)
				handlers.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, req)
		r.logger.Info("request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", rec.code()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// corsMiddleware answers preflights and sets CORS headers. With "*" no
// credentials are allowed, so browsers will not send the session cookie
// cross-origin; listed origins are echoed back with credentials allowed.
func (r *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h := w.Header()
		if r.allowAnyOrigin() {
			h.Set("Access-Control-Allow-Origin", "*")
		} else {
			h.Add("Vary", "Origin")
			if origin := req.Header.Get("Origin"); origin != "" && r.corsOrigins[origin] {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (r *Router) allowAnyOrigin() bool {
	return len(r.corsOrigins) == 0 || r.corsOrigins["*"]
}

func (r *Router) rateLimitMiddleware(next http.Handler) http.Handler {
	if r.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !r.limiter.Allow() {
			r.logger.Warn("rate limit exceeded", zap.String("path", req.URL.Path))
			handlers.WriteMessage(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, req)
	})
}

// sessionMiddleware attaches the cookie's identity to the request context.
// Invalid, expired or revoked tokens leave the request anonymous; a failing
// session store is a 500.
func (r *Router) sessionMiddleware(next http.Handler) http.Handler {
	if r.sessions == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		c, err := req.Cookie(r.cookieName)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, req)
			return
		}
		id, err := r.sessions.Resolve(req.Context(), c.Value)
		if errors.Is(err, session.ErrNoSession) {
			r.logger.Debug("session not resolved", zap.Error(err))
			next.ServeHTTP(w, req)
			return
		}
		if err != nil {
			r.logger.Error("session lookup failed", zap.String("path", req.URL.Path), zap.Error(err))
			handlers.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
			return
		}
		next.ServeHTTP(w, req.WithContext(session.WithIdentity(req.Context(), id)))
	})
}
