package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shaibs3/studyhub/internal/handlers"
	"github.com/shaibs3/studyhub/internal/session"
	"github.com/shaibs3/studyhub/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Handler is implemented by every HTTP handler group.
type Handler interface {
	RegisterRoutes(router *mux.Router, logger *zap.Logger)
}

// SessionResolver maps a session token to the identity it was issued for.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (session.Identity, error)
}

// Option customizes a Router.
type Option func(*Router)

// WithSessions resolves the named cookie on every request.
func WithSessions(resolver SessionResolver, cookieName string) Option {
	return func(r *Router) {
		r.sessions = resolver
		r.cookieName = cookieName
	}
}

// WithCORSOrigin sets the allowed origins as a comma-separated list.
// Defaults to "*".
func WithCORSOrigin(origins string) Option {
	return func(r *Router) {
		r.corsOrigins = map[string]bool{}
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				r.corsOrigins[o] = true
			}
		}
	}
}

// Router wraps a mux.Router with the service middleware chain.
type Router struct {
	mux         *mux.Router
	handler     http.Handler
	limiter     *rate.Limiter
	logger      *zap.Logger
	metrics     *httpMetrics
	sessions    SessionResolver
	cookieName  string
	corsOrigins map[string]bool
}

// NewRouter registers handlers and /metrics and builds the middleware chain.
// A nil limiter disables rate limiting; a nil tel disables metrics.
func NewRouter(limiter *rate.Limiter, tel *telemetry.Telemetry, logger *zap.Logger, handlerList []Handler, opts ...Option) *Router {
	r := &Router{
		mux:     mux.NewRouter(),
		limiter: limiter,
		logger:  logger.Named("router"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.mux.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteMessage(w, http.StatusNotFound, "Not found")
	})
	r.mux.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		handlers.WriteMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if tel != nil {
		m, err := newHTTPMetrics(tel.Meter)
		if err != nil {
			r.logger.Warn("failed to create http metrics, continuing without them", zap.Error(err))
		} else {
			r.metrics = m
		}
		r.mux.Handle("/metrics", tel.Handler()).Methods(http.MethodGet)
	}

	for _, h := range handlerList {
		h.RegisterRoutes(r.mux, logger)
	}

	// Outermost first. These wrap the mux instead of using mux.Use so they
	// also run for unmatched routes and method mismatches.
	var h http.Handler = r.mux
	h = r.sessionMiddleware(h)
	h = r.metricsMiddleware(h)
	h = r.rateLimitMiddleware(h)
	h = r.corsMiddleware(h)
	h = r.loggingMiddleware(h)
	h = r.recoveryMiddleware(h)
	r.handler = h

	return r
}

// ServeHTTP implements the http.Handler interface
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

// CreateServer returns an http.Server serving this router on addr.
func (r *Router) CreateServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// routeTemplate names the matched route for metric labels.
func (r *Router) routeTemplate(req *http.Request) string {
	var match mux.RouteMatch
	if !r.mux.Match(req, &match) || match.Route == nil || match.MatchErr != nil {
		return "unmatched"
	}
	tpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return "unmatched"
	}
	return tpl
}
