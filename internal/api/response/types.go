package response

import (
	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/leaderboard"
	"github.com/mcoot/leaderboard-go/internal/services/score"
)

// User represents an account in API responses
type User struct {
	LoggedIn bool   `json:"loggedIn,omitempty"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

// UserFromIdentity converts a model.Identity to a response User
func UserFromIdentity(i *model.Identity) User {
	return User{
		ID:       string(i.ID),
		Username: i.Username,
	}
}

// UserFromSession converts a model.Session to a logged-in response User
func UserFromSession(s *model.Session) User {
	return User{
		LoggedIn: true,
		ID:       string(s.IdentityID),
		Username: s.Username,
	}
}

// RegisterResponse is the response for POST /register
type RegisterResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginResponse is the response for POST /login. Token carries the same value
// as the session cookie for clients that send a bearer header instead.
type LoginResponse struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// MessageResponse carries a human readable message
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionResponse reports whether the caller is logged in
type SessionResponse struct {
	LoggedIn bool  `json:"loggedIn"`
	User     *User `json:"user,omitempty"`
}

// SubmitScoreResponse is the response for POST /score
type SubmitScoreResponse struct {
	Updated bool  `json:"updated"`
	Best    int64 `json:"best"`
}

// SubmitScoreResponseFromResult converts a score.Result
func SubmitScoreResponseFromResult(r score.Result) SubmitScoreResponse {
	return SubmitScoreResponse{
		Updated: r.Updated,
		Best:    r.Best,
	}
}

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}

// LeaderboardFromEntries converts leaderboard entries, never returning nil
func LeaderboardFromEntries(entries []leaderboard.Entry) []LeaderboardEntry {
	result := make([]LeaderboardEntry, len(entries))
	for i, e := range entries {
		result[i] = LeaderboardEntry{
			Rank:     e.Rank,
			Username: e.Username,
			Score:    e.Score,
		}
	}
	return result
}

// HealthResponse is the response for GET /health
type HealthResponse struct {
	Status string `json:"status"`
}
