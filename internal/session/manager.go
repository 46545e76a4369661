package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "studyhub"

// ErrNoSession means the token is missing, invalid, expired or revoked.
var ErrNoSession = errors.New("no active session")

// Manager signs session tokens and tracks their records in a Store.
type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a session record for identity and returns its signed token.
func (m *Manager) Issue(ctx context.Context, identity Identity) (string, error) {
	now := m.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   strconv.FormatInt(identity.UserID, 10),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	if err := m.store.Save(ctx, claims.ID, identity, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the identity behind token, or ErrNoSession.
func (m *Manager) Resolve(ctx context.Context, token string) (Identity, error) {
	claims, err := m.parse(token)
	if err != nil {
		return Identity{}, ErrNoSession
	}
	identity, ok, err := m.store.Get(ctx, claims.ID)
	if err != nil {
		return Identity{}, err
	}
	if !ok || strconv.FormatInt(identity.UserID, 10) != claims.Subject {
		return Identity{}, ErrNoSession
	}
	return identity, nil
}

// Revoke deletes the record behind token. Unknown or invalid tokens are ignored.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	claims, err := m.parse(token)
	if err != nil {
		return nil
	}
	return m.store.Delete(ctx, claims.ID)
}

func (m *Manager) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, ErrNoSession
	}
	return claims, nil
}
