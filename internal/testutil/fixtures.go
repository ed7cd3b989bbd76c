package testutil

import (
	"time"

	"github.com/mcoot/leaderboard-go/internal/model"
)

// FixedTime is the instant the test clocks start at.
var FixedTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// Session returns an authenticated session for id that is valid for a day from now.
func Session(now time.Time, id model.IdentityID, username string) *model.Session {
	return &model.Session{
		Token:         "tok-" + string(id),
		IdentityID:    id,
		Username:      username,
		Authenticated: true,
		CreatedAt:     now,
		ExpiresAt:     now.Add(24 * time.Hour),
	}
}

// Entry returns a score entry for username on game, achieved at FixedTime.
// The identity id is derived from the username.
func Entry(username string, game model.GameID, score int64) model.ScoreEntry {
	return model.ScoreEntry{
		IdentityID: model.IdentityID("id-" + username),
		Username:   username,
		Game:       game,
		Score:      score,
		AchievedAt: FixedTime,
	}
}
