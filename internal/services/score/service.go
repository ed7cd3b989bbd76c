package score

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mcoot/leaderboard-go/internal/dependencies/clock"
	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/call"
	"github.com/mcoot/leaderboard-go/internal/storage"
)

// ErrUnauthenticated is returned when a submission has no valid session
var ErrUnauthenticated = errors.New("not logged in")

// Result describes what a submission did to the caller's best score
type Result struct {
	Created bool
	Updated bool
	Best    int64
}

// Service applies score submissions to the ledger
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	policy  call.Policy
	logger  *slog.Logger
}

// New creates a new score Service
func New(storage storage.Storage, clock clock.Clock, policy call.Policy, logger *slog.Logger) *Service {
	if policy.MaxTries == 0 {
		policy = call.DefaultPolicy()
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Service{
		storage: storage,
		clock:   clock,
		policy:  policy,
		logger:  logger,
	}
}

// Submit records score for the session's identity on game's board, keeping the
// best score seen. Submitting the same score twice is a no-op.
func (s *Service) Submit(ctx context.Context, session *model.Session, score int64, game string) (Result, error) {
	now := s.clock.Now()
	if !session.Valid(now) {
		return Result{}, ErrUnauthenticated
	}
	if err := model.ValidateScore(score); err != nil {
		return Result{}, err
	}
	gameID, err := model.NormalizeGameID(game)
	if err != nil {
		return Result{}, err
	}

	// The submission id lets a retry recognise a write whose acknowledgement
	// was lost
	entry := model.ScoreEntry{
		IdentityID:   session.IdentityID,
		Username:     session.Username,
		Game:         gameID,
		Score:        score,
		AchievedAt:   now,
		SubmissionID: uuid.NewString(),
	}

	outcome, err := call.Do(ctx, s.policy, func(ctx context.Context) (model.SubmitOutcome, error) {
		return s.storage.SubmitBest(ctx, entry)
	})
	if err != nil {
		s.logger.Error("score submission failed",
			slog.String("identity_id", string(session.IdentityID)),
			slog.String("game", string(gameID)),
			slog.String("error", err.Error()),
		)
		return Result{}, err
	}

	if outcome.Updated {
		s.logger.Info("best score updated",
			slog.String("identity_id", string(session.IdentityID)),
			slog.String("game", string(gameID)),
			slog.Int64("score", outcome.Best),
		)
	}

	return Result{
		Created: outcome.Created,
		Updated: outcome.Updated,
		Best:    outcome.Best,
	}, nil
}
