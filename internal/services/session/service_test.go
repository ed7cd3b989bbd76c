package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/leaderboard-go/internal/dependencies/mocks"
	"github.com/mcoot/leaderboard-go/internal/dependencies/random"
	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/identity"
	"github.com/mcoot/leaderboard-go/internal/storage/memory"
	"github.com/mcoot/leaderboard-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.random.QueueString("token-1", "token-2", "token-3")

	idCfg := identity.DefaultConfig()
	idCfg.BcryptCost = bcrypt.MinCost
	identities := identity.New(s.storage, s.clock, idCfg, testutil.NopLogger())

	s.service = New(s.storage, identities, s.clock, s.random, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()

	_, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
}

// Login tests

func (s *ServiceSuite) TestLoginCreatesSession() {
	session, err := s.service.Login(s.ctx, "alice", "pw1", "")
	s.Require().NoError(err)

	s.Equal("token-1", session.Token)
	s.Equal("alice", session.Username)
	s.True(session.Authenticated)
	s.Equal(s.clock.Now().Add(24*time.Hour), session.ExpiresAt)

	stored, err := s.storage.GetSession(s.ctx, "token-1")
	s.Require().NoError(err)
	s.Equal(session.IdentityID, stored.IdentityID)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	session, err := s.service.Login(s.ctx, "alice", "wrong", "")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Nil(session)
}

func (s *ServiceSuite) TestLoginUnknownUser() {
	_, err := s.service.Login(s.ctx, "bob", "pw1", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestIdentityMayHoldManySessions() {
	first, _ := s.service.Login(s.ctx, "alice", "pw1", "")
	second, _ := s.service.Login(s.ctx, "alice", "pw1", "")

	s.NotEqual(first.Token, second.Token)
	s.NotNil(s.service.Current(s.ctx, first.Token))
	s.NotNil(s.service.Current(s.ctx, second.Token))
}

// Current tests

func (s *ServiceSuite) TestCurrentReturnsLiveSession() {
	session, _ := s.service.Login(s.ctx, "alice", "pw1", "")

	current := s.service.Current(s.ctx, session.Token)
	s.Require().NotNil(current)
	s.Equal(session.IdentityID, current.IdentityID)
}

func (s *ServiceSuite) TestCurrentUnknownToken() {
	s.Nil(s.service.Current(s.ctx, "nope"))
	s.Nil(s.service.Current(s.ctx, ""))
}

func (s *ServiceSuite) TestCurrentExpiresAfterTTL() {
	session, _ := s.service.Login(s.ctx, "alice", "pw1", "")

	s.clock.Advance(24*time.Hour - time.Second)
	s.NotNil(s.service.Current(s.ctx, session.Token))

	s.clock.Advance(time.Second)
	s.Nil(s.service.Current(s.ctx, session.Token))

	// Expired sessions are removed on sight
	_, err := s.storage.GetSession(s.ctx, session.Token)
	s.ErrorIs(err, model.ErrSessionNotFound)
}

func (s *ServiceSuite) TestCurrentSwallowsStorageErrors() {
	failing := &failingStorage{Storage: s.storage, err: errors.New("boom")}
	svc := New(failing, nil, s.clock, random.New(), DefaultConfig(), testutil.NopLogger())

	s.Nil(svc.Current(s.ctx, "token-1"))
}

func (s *ServiceSuite) TestExpiredSessionCleanupIsBounded() {
	session, _ := s.service.Login(s.ctx, "alice", "pw1", "")
	s.clock.Advance(25 * time.Hour)

	failing := &failingStorage{Storage: s.storage, hangDelete: true}
	cfg := DefaultConfig()
	cfg.Call.Timeout = 10 * time.Millisecond
	cfg.Call.Budget = 50 * time.Millisecond
	cfg.Call.InitialInterval = time.Millisecond
	svc := New(failing, nil, s.clock, random.New(), cfg, testutil.NopLogger())

	start := time.Now()
	s.Nil(svc.Current(s.ctx, session.Token))
	s.Less(time.Since(start), time.Second)
}

// Re-login tests

func (s *ServiceSuite) TestLoginReplacesPriorSession() {
	first, err := s.service.Login(s.ctx, "alice", "pw1", "")
	s.Require().NoError(err)

	second, err := s.service.Login(s.ctx, "alice", "pw1", first.Token)
	s.Require().NoError(err)
	s.NotEqual(first.Token, second.Token)

	s.Nil(s.service.Current(s.ctx, first.Token))
	s.NotNil(s.service.Current(s.ctx, second.Token))
}

func (s *ServiceSuite) TestLoginWithStalePriorToken() {
	session, err := s.service.Login(s.ctx, "alice", "pw1", "gone")
	s.Require().NoError(err)
	s.NotNil(s.service.Current(s.ctx, session.Token))
}

func (s *ServiceSuite) TestFailedLoginKeepsPriorSession() {
	first, _ := s.service.Login(s.ctx, "alice", "pw1", "")

	_, err := s.service.Login(s.ctx, "alice", "wrong", first.Token)
	s.ErrorIs(err, ErrInvalidCredentials)
	s.NotNil(s.service.Current(s.ctx, first.Token))
}

func (s *ServiceSuite) TestLoginFailsWhenPriorSessionCannotBeReplaced() {
	first, _ := s.service.Login(s.ctx, "alice", "pw1", "")

	idCfg := identity.DefaultConfig()
	idCfg.BcryptCost = bcrypt.MinCost
	failing := &failingStorage{Storage: s.storage, deleteErr: errors.New("boom")}
	cfg := DefaultConfig()
	cfg.Call.MaxTries = 1
	svc := New(failing, identity.New(failing, s.clock, idCfg, testutil.NopLogger()), s.clock, random.New(), cfg, testutil.NopLogger())

	_, err := svc.Login(s.ctx, "alice", "pw1", first.Token)
	s.Error(err)
	s.NotNil(s.service.Current(s.ctx, first.Token))
}

// Logout tests

func (s *ServiceSuite) TestLogoutDestroysSession() {
	session, _ := s.service.Login(s.ctx, "alice", "pw1", "")

	s.Require().NoError(s.service.Logout(s.ctx, session.Token))

	// Replaying the old token is never accepted again
	s.Nil(s.service.Current(s.ctx, session.Token))
	s.ErrorIs(s.service.Logout(s.ctx, session.Token), ErrNotLoggedIn)
}

func (s *ServiceSuite) TestLogoutWithoutSession() {
	s.ErrorIs(s.service.Logout(s.ctx, "nope"), ErrNotLoggedIn)
}

func (s *ServiceSuite) TestLogoutLeavesOtherSessions() {
	first, _ := s.service.Login(s.ctx, "alice", "pw1", "")
	second, _ := s.service.Login(s.ctx, "alice", "pw1", "")

	s.Require().NoError(s.service.Logout(s.ctx, first.Token))
	s.NotNil(s.service.Current(s.ctx, second.Token))
}

func (s *ServiceSuite) TestLogoutSurfacesTeardownFailure() {
	session, _ := s.service.Login(s.ctx, "alice", "pw1", "")

	failing := &failingStorage{Storage: s.storage, deleteErr: errors.New("boom")}
	cfg := DefaultConfig()
	cfg.Call.MaxTries = 1
	svc := New(failing, nil, s.clock, random.New(), cfg, testutil.NopLogger())

	err := svc.Logout(s.ctx, session.Token)
	s.Error(err)
	s.NotErrorIs(err, ErrNotLoggedIn)
}

// failingStorage wraps a store and fails selected session operations
type failingStorage struct {
	*memory.Storage
	err       error
	deleteErr error
	// hangDelete blocks DeleteSession until its context ends
	hangDelete bool
}

func (f *failingStorage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.Storage.GetSession(ctx, token)
}

func (f *failingStorage) DeleteSession(ctx context.Context, token string) error {
	if f.hangDelete {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.Storage.DeleteSession(ctx, token)
}
