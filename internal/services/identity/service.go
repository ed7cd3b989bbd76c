package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/leaderboard-go/internal/dependencies/clock"
	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidUsername    = errors.New("username must not contain whitespace or '@'")
	ErrPasswordTooLong    = fmt.Errorf("password must be at most %d bytes", MaxPasswordBytes)
)

// MaxPasswordBytes is the longest password bcrypt can hash. The limit is in
// bytes, so multi-byte characters count several times.
const MaxPasswordBytes = 72

// Verifier checks credentials and resolves them to an identity
type Verifier interface {
	Verify(ctx context.Context, username, password string) (*model.Identity, error)
}

// Registrar creates new identities
type Registrar interface {
	Register(ctx context.Context, username, password string) (*model.Identity, error)
}

// Config holds configuration for the identity service
type Config struct {
	// Domain is appended to usernames to form the provider-facing subject
	Domain     string
	BcryptCost int
	Call       call.Policy
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		Domain:     "players.local",
		BcryptCost: bcrypt.DefaultCost,
		Call:       call.DefaultPolicy(),
	}
}

// Service is the identity store: it owns password hashing and verification
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	// dummyHash is compared against when the user does not exist, so unknown
	// users cost the same as wrong passwords
	dummyHash []byte
}

var (
	_ Verifier  = (*Service)(nil)
	_ Registrar = (*Service)(nil)
)

// New creates a new identity Service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	defaults := DefaultConfig()
	if cfg.Domain == "" {
		cfg.Domain = defaults.Domain
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = defaults.BcryptCost
	}
	if cfg.Call.MaxTries == 0 {
		cfg.Call = defaults.Call
	}
	cfg.Call = cfg.Call.WithPermanent(model.ErrIdentityNotFound, model.ErrUsernameTaken)
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	dummy, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cfg.BcryptCost)

	return &Service{
		storage:   storage,
		clock:     clock,
		cfg:       cfg,
		logger:    logger,
		dummyHash: dummy,
	}
}

// Subject maps a username to its provider-facing identifier
func (s *Service) Subject(username string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "@" + s.cfg.Domain
}

// Register creates a new identity with a hashed password
func (s *Service) Register(ctx context.Context, username, password string) (*model.Identity, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if len(password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	identity := &model.Identity{
		ID:           model.IdentityID(uuid.NewString()),
		Username:     username,
		Subject:      s.Subject(username),
		PasswordHash: string(hash),
		CreatedAt:    s.clock.Now(),
	}

	_, err = call.Do(ctx, s.cfg.Call, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.storage.CreateIdentity(ctx, identity)
	})
	if err != nil {
		if !errors.Is(err, model.ErrUsernameTaken) {
			s.logger.Error("failed to create identity",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("identity registered",
		slog.String("identity_id", string(identity.ID)),
		slog.String("username", username),
	)
	return identity, nil
}

// Verify checks a username/password pair. Unknown usernames and wrong
// passwords both yield ErrInvalidCredentials.
func (s *Service) Verify(ctx context.Context, username, password string) (*model.Identity, error) {
	// bcrypt only reads the first 72 bytes, so a longer password could match
	// a hash made from its prefix
	if len(password) > MaxPasswordBytes {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password[:MaxPasswordBytes]))
		return nil, ErrInvalidCredentials
	}

	identity, err := call.Do(ctx, s.cfg.Call, func(ctx context.Context) (*model.Identity, error) {
		return s.storage.GetIdentityBySubject(ctx, s.Subject(username))
	})
	if err != nil {
		if errors.Is(err, model.ErrIdentityNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(identity.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return identity, nil
}

func validateUsername(username string) error {
	if username == "" {
		return ErrInvalidUsername
	}
	for _, r := range username {
		if r == '@' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return ErrInvalidUsername
		}
	}
	return nil
}
