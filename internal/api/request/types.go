package request

// RegisterRequest is the request body for registering an account
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SubmitScoreRequest is the request body for submitting a score.
// Score is a pointer so a missing score is told apart from zero.
type SubmitScoreRequest struct {
	Score  *int64 `json:"score" validate:"required,min=0"`
	GameID string `json:"game_id" validate:"max=64"`
}

// LeaderboardRequest selects a board. It may arrive as a JSON body or as
// query parameters.
type LeaderboardRequest struct {
	GameID string `json:"gameId" validate:"max=64"`
	Limit  int    `json:"limit" validate:"min=0"`
}
