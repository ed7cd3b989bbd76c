package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/leaderboard-go/internal/dependencies/clock"
	"github.com/mcoot/leaderboard-go/internal/dependencies/random"
	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/services/identity"
	"github.com/mcoot/leaderboard-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = identity.ErrInvalidCredentials
	ErrNotLoggedIn        = errors.New("not logged in")
)

const (
	tokenLength   = 43
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
)

// IdentityStore is what the session manager needs from the identity service
type IdentityStore interface {
	identity.Verifier
	identity.Registrar
}

// Config holds configuration for the session manager
type Config struct {
	SessionDuration time.Duration
	Call            call.Policy
}

// DefaultConfig returns default session configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
		Call:            call.DefaultPolicy(),
	}
}

// Service handles login, logout and session lookup
type Service struct {
	storage    storage.Storage
	identities IdentityStore
	clock      clock.Clock
	random     random.Random
	cfg        Config
	logger     *slog.Logger
}

// New creates a new session Service
func New(storage storage.Storage, identities IdentityStore, clock clock.Clock, random random.Random, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.Call.MaxTries == 0 {
		cfg.Call = defaults.Call
	}
	cfg.Call = cfg.Call.WithPermanent(model.ErrSessionNotFound)
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		storage:    storage,
		identities: identities,
		clock:      clock,
		random:     random,
		cfg:        cfg,
		logger:     logger,
	}
}

// Register creates an identity. It does not log the new user in.
func (s *Service) Register(ctx context.Context, username, password string) (*model.Identity, error) {
	return s.identities.Register(ctx, username, password)
}

// Login verifies credentials and opens a new session for the identity. The
// session held under prior, if any, is destroyed so the client is bound to the
// new session only.
func (s *Service) Login(ctx context.Context, username, password, prior string) (*model.Session, error) {
	ident, err := s.identities.Verify(ctx, username, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			s.logger.Info("login rejected", slog.String("username", username))
		}
		return nil, err
	}

	if prior != "" {
		if err := s.destroy(ctx, prior); err != nil {
			s.logger.Error("failed to replace prior session", slog.String("error", err.Error()))
			return nil, err
		}
	}

	now := s.clock.Now()
	session := &model.Session{
		Token:         s.random.String(tokenLength, tokenAlphabet),
		IdentityID:    ident.ID,
		Username:      ident.Username,
		Authenticated: true,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.cfg.SessionDuration),
	}

	_, err = call.Do(ctx, s.cfg.Call, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.storage.SaveSession(ctx, session)
	})
	if err != nil {
		s.logger.Error("failed to save session",
			slog.String("identity_id", string(ident.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return session, nil
}

// Logout destroys the session for token. Logging out a session that does not
// exist is reported as ErrNotLoggedIn.
func (s *Service) Logout(ctx context.Context, token string) error {
	if s.Current(ctx, token) == nil {
		return ErrNotLoggedIn
	}

	if err := s.destroy(ctx, token); err != nil {
		s.logger.Error("failed to destroy session", slog.String("error", err.Error()))
		return err
	}
	return nil
}

func (s *Service) destroy(ctx context.Context, token string) error {
	_, err := call.Do(ctx, s.cfg.Call, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.storage.DeleteSession(ctx, token)
	})
	return err
}

// Current returns the live session for token, or nil. It never fails: lookup
// errors are logged and treated as no session.
func (s *Service) Current(ctx context.Context, token string) *model.Session {
	if token == "" {
		return nil
	}

	session, err := call.Do(ctx, s.cfg.Call, func(ctx context.Context) (*model.Session, error) {
		return s.storage.GetSession(ctx, token)
	})
	if err != nil {
		if !errors.Is(err, model.ErrSessionNotFound) {
			s.logger.Warn("session lookup failed", slog.String("error", err.Error()))
		}
		return nil
	}

	if session.Expired(s.clock.Now()) {
		if err := s.destroy(ctx, token); err != nil {
			s.logger.Warn("failed to delete expired session", slog.String("error", err.Error()))
		}
		return nil
	}
	if !session.Authenticated {
		return nil
	}

	return session
}
