package leaderboard

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/storage"
)

// ErrQueryFailed is returned when the ledger cannot be read
var ErrQueryFailed = errors.New("leaderboard query failed")

const (
	// DefaultLimit is the size of the top board when no limit is given
	DefaultLimit = 10
	// MaxLimit caps any bounded query
	MaxLimit = 100
)

// Entry is one ranked row of a leaderboard
type Entry struct {
	Rank     int
	Username string
	Score    int64
}

// Service serves read-only ranked views of the ledger
type Service struct {
	storage storage.Storage
	policy  call.Policy
	logger  *slog.Logger
}

// New creates a new leaderboard Service
func New(storage storage.Storage, policy call.Policy, logger *slog.Logger) *Service {
	if policy.MaxTries == 0 {
		policy = call.DefaultPolicy()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{storage: storage, policy: policy, logger: logger}
}

// TopN returns the n best entries of the default board. n <= 0 means
// DefaultLimit and n is capped at MaxLimit.
func (s *Service) TopN(ctx context.Context, n int) ([]Entry, error) {
	return s.query(ctx, model.DefaultGame, clampLimit(n))
}

// All returns the full default board
func (s *Service) All(ctx context.Context) ([]Entry, error) {
	return s.query(ctx, model.DefaultGame, 0)
}

// ByGame returns one game's board. n == 0 means unbounded; otherwise n is
// capped at MaxLimit.
func (s *Service) ByGame(ctx context.Context, game string, n int) ([]Entry, error) {
	gameID, err := model.NormalizeGameID(game)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		n = 0
	}
	if n > MaxLimit {
		n = MaxLimit
	}
	return s.query(ctx, gameID, n)
}

func (s *Service) query(ctx context.Context, game model.GameID, limit int) ([]Entry, error) {
	scores, err := call.Do(ctx, s.policy, func(ctx context.Context) ([]model.ScoreEntry, error) {
		return s.storage.ListScores(ctx, game, limit)
	})
	if err != nil {
		s.logger.Error("leaderboard query failed",
			slog.String("game", string(game)),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, call.ErrServiceUnavailable) {
			return nil, err
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}

	entries := make([]Entry, len(scores))
	for i, score := range scores {
		entries[i] = Entry{
			Rank:     i + 1,
			Username: score.Username,
			Score:    score.Score,
		}
	}
	return entries, nil
}

func clampLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}
