package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/leaderboard-go/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) entry(id model.IdentityID, game model.GameID, score int64) model.ScoreEntry {
	return model.ScoreEntry{
		IdentityID: id,
		Username:   string(id),
		Game:       game,
		Score:      score,
		AchievedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// Identity tests

func (s *StorageSuite) TestCreateAndGetIdentity() {
	identity := &model.Identity{ID: "id-1", Username: "alice", Subject: "alice@example.test", PasswordHash: "hash"}
	s.Require().NoError(s.storage.CreateIdentity(s.ctx, identity))

	byID, err := s.storage.GetIdentity(s.ctx, "id-1")
	s.Require().NoError(err)
	s.Equal("alice", byID.Username)

	bySubject, err := s.storage.GetIdentityBySubject(s.ctx, "alice@example.test")
	s.Require().NoError(err)
	s.Equal(model.IdentityID("id-1"), bySubject.ID)
}

func (s *StorageSuite) TestCreateIdentityRejectsDuplicateUsername() {
	first := &model.Identity{ID: "id-1", Username: "alice", Subject: "alice@example.test"}
	second := &model.Identity{ID: "id-2", Username: "alice", Subject: "alice@example.test"}
	s.Require().NoError(s.storage.CreateIdentity(s.ctx, first))

	err := s.storage.CreateIdentity(s.ctx, second)
	s.ErrorIs(err, model.ErrUsernameTaken)

	_, err = s.storage.GetIdentity(s.ctx, "id-2")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

func (s *StorageSuite) TestGetIdentityNotFound() {
	_, err := s.storage.GetIdentityBySubject(s.ctx, "nobody@example.test")
	s.ErrorIs(err, model.ErrIdentityNotFound)
}

// Session tests

func (s *StorageSuite) TestSessionLifecycle() {
	session := &model.Session{Token: "tok", IdentityID: "id-1", Username: "alice", Authenticated: true}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	got, err := s.storage.GetSession(s.ctx, "tok")
	s.Require().NoError(err)
	s.Equal("alice", got.Username)

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "tok"))
	_, err = s.storage.GetSession(s.ctx, "tok")
	s.ErrorIs(err, model.ErrSessionNotFound)
}

// Score tests

func (s *StorageSuite) TestSubmitBestCreatesThenKeepsMaximum() {
	outcome, err := s.storage.SubmitBest(s.ctx, s.entry("a", model.DefaultGame, 10))
	s.Require().NoError(err)
	s.True(outcome.Created)
	s.True(outcome.Updated)

	outcome, err = s.storage.SubmitBest(s.ctx, s.entry("a", model.DefaultGame, 5))
	s.Require().NoError(err)
	s.False(outcome.Updated)
	s.Equal(int64(10), outcome.Best)

	outcome, err = s.storage.SubmitBest(s.ctx, s.entry("a", model.DefaultGame, 10))
	s.Require().NoError(err)
	s.False(outcome.Updated)

	outcome, err = s.storage.SubmitBest(s.ctx, s.entry("a", model.DefaultGame, 15))
	s.Require().NoError(err)
	s.False(outcome.Created)
	s.True(outcome.Updated)

	stored, err := s.storage.GetScore(s.ctx, model.DefaultGame, "a")
	s.Require().NoError(err)
	s.Equal(int64(15), stored.Score)
}

func (s *StorageSuite) TestGamesAreIndependent() {
	_, _ = s.storage.SubmitBest(s.ctx, s.entry("a", "chess", 100))
	_, _ = s.storage.SubmitBest(s.ctx, s.entry("a", model.DefaultGame, 1))

	chess, err := s.storage.ListScores(s.ctx, "chess", 0)
	s.Require().NoError(err)
	s.Require().Len(chess, 1)
	s.Equal(int64(100), chess[0].Score)

	global, err := s.storage.ListScores(s.ctx, model.DefaultGame, 0)
	s.Require().NoError(err)
	s.Require().Len(global, 1)
	s.Equal(int64(1), global[0].Score)
}

func (s *StorageSuite) TestListScoresOrdersWithTieBreak() {
	_, _ = s.storage.SubmitBest(s.ctx, s.entry("b", model.DefaultGame, 50))
	_, _ = s.storage.SubmitBest(s.ctx, s.entry("c", model.DefaultGame, 70))
	_, _ = s.storage.SubmitBest(s.ctx, s.entry("a", model.DefaultGame, 50))

	entries, err := s.storage.ListScores(s.ctx, model.DefaultGame, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal(model.IdentityID("c"), entries[0].IdentityID)
	// b reached 50 first
	s.Equal(model.IdentityID("b"), entries[1].IdentityID)
	s.Equal(model.IdentityID("a"), entries[2].IdentityID)

	top, err := s.storage.ListScores(s.ctx, model.DefaultGame, 2)
	s.Require().NoError(err)
	s.Equal(entries[:2], top)
}

func (s *StorageSuite) TestConcurrentSubmitsKeepMaximum() {
	var wg sync.WaitGroup
	for i := int64(0); i <= 100; i++ {
		wg.Add(1)
		go func(score int64) {
			defer wg.Done()
			_, _ = s.storage.SubmitBest(s.ctx, s.entry("a", model.DefaultGame, score))
		}(i)
	}
	wg.Wait()

	stored, err := s.storage.GetScore(s.ctx, model.DefaultGame, "a")
	s.Require().NoError(err)
	s.Equal(int64(100), stored.Score)
}

func (s *StorageSuite) TestSubmitBestReplayReportsOriginalOutcome() {
	first := s.entry("a", model.DefaultGame, 42)
	first.SubmissionID = "sub-1"

	outcome, err := s.storage.SubmitBest(s.ctx, first)
	s.Require().NoError(err)
	s.Equal(model.SubmitOutcome{Created: true, Updated: true, Best: 42}, outcome)

	outcome, err = s.storage.SubmitBest(s.ctx, first)
	s.Require().NoError(err)
	s.Equal(model.SubmitOutcome{Created: true, Updated: true, Best: 42}, outcome)

	better := s.entry("a", model.DefaultGame, 60)
	better.SubmissionID = "sub-2"
	_, err = s.storage.SubmitBest(s.ctx, better)
	s.Require().NoError(err)

	outcome, err = s.storage.SubmitBest(s.ctx, better)
	s.Require().NoError(err)
	s.Equal(model.SubmitOutcome{Updated: true, Best: 60}, outcome)

	// A superseded submission is no longer recognised
	outcome, err = s.storage.SubmitBest(s.ctx, first)
	s.Require().NoError(err)
	s.Equal(model.SubmitOutcome{Best: 60}, outcome)

	stored, err := s.storage.GetScore(s.ctx, model.DefaultGame, "a")
	s.Require().NoError(err)
	s.Equal("sub-2", stored.SubmissionID)
	s.Equal("sub-1", stored.CreatedBy)
}
