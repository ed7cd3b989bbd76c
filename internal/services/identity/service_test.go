package identity

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/leaderboard-go/internal/dependencies/mocks"
	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/storage/memory"
	"github.com/mcoot/leaderboard-go/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	cfg := DefaultConfig()
	cfg.Domain = "example.test"
	cfg.BcryptCost = bcrypt.MinCost
	s.service = New(s.storage, s.clock, cfg, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestSubjectNormalizesUsername() {
	s.Equal("alice@example.test", s.service.Subject("alice"))
	s.Equal("alice@example.test", s.service.Subject("  Alice "))
}

// Register tests

func (s *ServiceSuite) TestRegisterPersistsHashedPassword() {
	identity, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	s.NotEmpty(identity.ID)
	s.Equal("alice", identity.Username)
	s.Equal("alice@example.test", identity.Subject)
	s.Equal(s.clock.Now(), identity.CreatedAt)

	stored, err := s.storage.GetIdentity(s.ctx, identity.ID)
	s.Require().NoError(err)
	s.NotEqual("pw1", stored.PasswordHash)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw1")))
}

func (s *ServiceSuite) TestRegisterDuplicateFails() {
	_, err := s.service.Register(s.ctx, "alice", "pw1")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestRegisterDuplicateIgnoresCase() {
	_, _ = s.service.Register(s.ctx, "alice", "pw1")

	_, err := s.service.Register(s.ctx, "ALICE", "pw2")
	s.ErrorIs(err, model.ErrUsernameTaken)
}

func (s *ServiceSuite) TestRegisterRejectsInvalidUsernames() {
	for _, username := range []string{"", "   ", "a b", "a@b", "tab\tname"} {
		_, err := s.service.Register(s.ctx, username, "pw")
		s.ErrorIs(err, ErrInvalidUsername, "username %q", username)
	}
}

func (s *ServiceSuite) TestRegisterCountsPasswordBytes() {
	// 40 characters but 80 bytes
	_, err := s.service.Register(s.ctx, "alice", strings.Repeat("é", 40))
	s.ErrorIs(err, ErrPasswordTooLong)

	_, err = s.storage.GetIdentityBySubject(s.ctx, "alice@example.test")
	s.ErrorIs(err, model.ErrIdentityNotFound)

	_, err = s.service.Register(s.ctx, "alice", strings.Repeat("é", 36))
	s.NoError(err)
}

func (s *ServiceSuite) TestVerifyRejectsPasswordBeyondBcryptLimit() {
	password := strings.Repeat("x", MaxPasswordBytes)
	_, err := s.service.Register(s.ctx, "alice", password)
	s.Require().NoError(err)

	_, err = s.service.Verify(s.ctx, "alice", password+"suffix")
	s.ErrorIs(err, ErrInvalidCredentials)

	_, err = s.service.Verify(s.ctx, "alice", password)
	s.NoError(err)
}

func (s *ServiceSuite) TestNewFallsBackFromUnusableCost() {
	svc := New(s.storage, s.clock, Config{BcryptCost: bcrypt.MaxCost + 1}, testutil.NopLogger())
	s.Equal(bcrypt.DefaultCost, svc.cfg.BcryptCost)
	s.NotEmpty(svc.dummyHash)
}

func (s *ServiceSuite) TestConcurrentRegisterCreatesOneIdentity() {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.service.Register(s.ctx, "alice", "pw1"); err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, accepted)
}

// Verify tests

func (s *ServiceSuite) TestVerifySucceeds() {
	registered, _ := s.service.Register(s.ctx, "alice", "pw1")

	identity, err := s.service.Verify(s.ctx, "alice", "pw1")
	s.Require().NoError(err)
	s.Equal(registered.ID, identity.ID)
}

func (s *ServiceSuite) TestVerifyWrongPassword() {
	_, _ = s.service.Register(s.ctx, "alice", "pw1")

	_, err := s.service.Verify(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestVerifyUnknownUserLooksLikeWrongPassword() {
	_, err := s.service.Verify(s.ctx, "nobody", "pw1")
	s.ErrorIs(err, ErrInvalidCredentials)
}
