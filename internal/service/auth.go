package service

import (
	"context"
	"errors"
	"sync"

	"github.com/shaibs3/studyhub/internal/apperr"
	"github.com/shaibs3/studyhub/internal/events"
	"github.com/shaibs3/studyhub/internal/session"
	"github.com/shaibs3/studyhub/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgCredentialsRequired = "Username and password are required"
	msgInvalidCredentials  = "Invalid username or password"
	msgUsernameTaken       = "Username already exists"
)

// AuthService registers users and manages their sessions.
type AuthService struct {
	store    storage.Provider
	sessions *session.Manager
	events   events.Publisher
	logger   *zap.Logger
	cost     int

	dummyOnce sync.Once
	dummyHash []byte
}

// AuthOption customizes an AuthService.
type AuthOption func(*AuthService)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) AuthOption {
	return func(s *AuthService) { s.cost = cost }
}

func NewAuthService(store storage.Provider, sessions *session.Manager, pub events.Publisher, logger *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		store:    store,
		sessions: sessions,
		events:   pub,
		logger:   logger.Named("auth"),
		cost:     bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Identity session.Identity
	Token    string
}

// Register creates an account. It does not log the user in.
func (s *AuthService) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, apperr.Validation(msgCredentialsRequired)
	}

	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return 0, apperr.Internal("Database error", err)
	}
	if existing != nil {
		return 0, apperr.Conflict(msgUsernameTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return 0, apperr.Validation("Password is too long")
	}
	if err != nil {
		return 0, apperr.Internal("Error registering user", err)
	}

	id, err := s.store.CreateUser(ctx, username, string(hash))
	if errors.Is(err, storage.ErrDuplicate) {
		return 0, apperr.Conflict(msgUsernameTaken)
	}
	if err != nil {
		return 0, apperr.Internal("Error registering user", err)
	}

	s.logger.Info("user registered", zap.Int64("user_id", id))
	publish(ctx, s.events, s.logger, events.New(events.UserRegistered, id, id))
	return id, nil
}

// Login verifies credentials and issues a new session. Any session the
// client already holds is revoked first.
func (s *AuthService) Login(ctx context.Context, username, password, priorToken string) (LoginResult, error) {
	if username == "" || password == "" {
		return LoginResult{}, apperr.Validation(msgCredentialsRequired)
	}

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return LoginResult{}, apperr.Internal("Database error", err)
	}

	// Unknown users still pay for a comparison.
	hash := s.dummy()
	if user != nil {
		hash = []byte(user.PasswordHash)
	}
	cmpErr := bcrypt.CompareHashAndPassword(hash, []byte(password))
	if user == nil || cmpErr != nil {
		s.logger.Debug("login rejected")
		return LoginResult{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	if err := s.sessions.Revoke(ctx, priorToken); err != nil {
		s.logger.Warn("failed to revoke prior session", zap.Error(err))
	}

	identity := session.Identity{UserID: user.ID, Username: user.Username}
	token, err := s.sessions.Issue(ctx, identity)
	if err != nil {
		return LoginResult{}, apperr.Internal("Error creating session", err)
	}
	s.logger.Info("user logged in", zap.Int64("user_id", user.ID))
	return LoginResult{Identity: identity, Token: token}, nil
}

// Logout revokes the session behind token. It succeeds without one.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Revoke(ctx, token); err != nil {
		return apperr.Internal("Error ending session", err)
	}
	return nil
}

// Status reports the identity resolved for the current request.
func (s *AuthService) Status(ctx context.Context) (session.Identity, bool) {
	return session.FromContext(ctx)
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("studyhub-placeholder-password"), s.cost)
		if err != nil {
			s.logger.Error("failed to build placeholder hash", zap.Error(err))
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
