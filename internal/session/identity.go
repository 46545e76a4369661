// Package session issues and resolves login sessions. A session is a signed
// token naming a server-side record; the token is only honored while the
// record exists.
package session

import "context"

// Identity is the authenticated user behind a request.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
