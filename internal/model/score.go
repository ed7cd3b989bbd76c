package model

import (
	"strings"
	"time"
)

// GameID names a leaderboard. The empty GameID is the default board.
type GameID string

// DefaultGame is the board used when a submission or query names no game
const DefaultGame GameID = ""

// MaxGameIDLength bounds the length of a game identifier
const MaxGameIDLength = 64

// MaxScore is the largest score every backend stores exactly
const MaxScore int64 = 1<<53 - 1

// ValidateScore checks that a submitted score can be stored
func ValidateScore(score int64) error {
	switch {
	case score < 0:
		return ErrNegativeScore
	case score > MaxScore:
		return ErrScoreTooLarge
	}
	return nil
}

// ScoreEntry is one leaderboard row: the best score an identity holds on one board
type ScoreEntry struct {
	IdentityID IdentityID
	Username   string // denormalized copy taken at submission time
	Game       GameID
	Score      int64
	AchievedAt time.Time
	// Seq is assigned by the store each time the row is inserted or improved.
	// Equal scores rank by ascending Seq.
	Seq int64
	// SubmissionID names the submission that set Score. A retried submission
	// finds its own earlier write through it.
	SubmissionID string
	// CreatedBy is the SubmissionID that first inserted the entry
	CreatedBy string
}

// ReplayOutcome reports whether e was written by submission id, and if so the
// outcome that write had. Stores use it so a retry whose first attempt landed
// reports what that attempt did.
func (e ScoreEntry) ReplayOutcome(id string) (SubmitOutcome, bool) {
	if id == "" || e.SubmissionID != id {
		return SubmitOutcome{}, false
	}
	return SubmitOutcome{Created: e.CreatedBy == id, Updated: true, Best: e.Score}, true
}

// Less reports whether a ranks strictly above b on a leaderboard
func (a ScoreEntry) Less(b ScoreEntry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Seq != b.Seq {
		return a.Seq < b.Seq
	}
	return a.IdentityID < b.IdentityID
}

// NormalizeGameID trims the id and checks its shape
func NormalizeGameID(raw string) (GameID, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return DefaultGame, nil
	}
	if len(id) > MaxGameIDLength {
		return "", ErrInvalidGameID
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.':
		default:
			return "", ErrInvalidGameID
		}
	}
	return GameID(id), nil
}

// SubmitOutcome is the result of applying a submission to the ledger
type SubmitOutcome struct {
	Created bool  // no previous entry existed
	Updated bool  // the stored score changed
	Best    int64 // the stored score after the submission
}
