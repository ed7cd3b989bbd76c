package storage

import (
	"context"

	"github.com/mcoot/leaderboard-go/internal/model"
)

// Storage defines the interface for data persistence
type Storage interface {
	// Identity operations
	// CreateIdentity fails with model.ErrUsernameTaken if the username or subject is in use
	CreateIdentity(ctx context.Context, identity *model.Identity) error
	GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error)
	GetIdentityBySubject(ctx context.Context, subject string) (*model.Identity, error)

	// Session operations
	SaveSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Score operations

	// SubmitBest stores entry if no entry exists for its (identity, game) or if
	// entry.Score is greater than the stored score. The compare and the write
	// happen atomically with respect to other submissions for the same key.
	// Re-applying the submission that produced the stored entry (same
	// non-empty SubmissionID) reports that submission's original outcome.
	SubmitBest(ctx context.Context, entry model.ScoreEntry) (model.SubmitOutcome, error)
	GetScore(ctx context.Context, game model.GameID, id model.IdentityID) (*model.ScoreEntry, error)
	// ListScores returns the board ranked by model.ScoreEntry.Less.
	// A limit <= 0 returns every entry.
	ListScores(ctx context.Context, game model.GameID, limit int) ([]model.ScoreEntry, error)

	Close() error
}
