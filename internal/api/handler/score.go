package handler

import (
	"context"
	"net/http"

	"github.com/mcoot/leaderboard-go/internal/api/middleware"
	"github.com/mcoot/leaderboard-go/internal/api/request"
	"github.com/mcoot/leaderboard-go/internal/api/response"
	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/services/score"
)

// ScoreSubmitter applies score submissions
type ScoreSubmitter interface {
	Submit(ctx context.Context, session *model.Session, value int64, game string) (score.Result, error)
}

// ScoreHandler handles score submission
type ScoreHandler struct {
	scores ScoreSubmitter
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scores ScoreSubmitter) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

// Submit handles POST /score
func (h *ScoreHandler) Submit(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	var req request.SubmitScoreRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.scores.Submit(r.Context(), session, *req.Score, req.GameID)
	if err != nil {
		WriteError(w, err)
		return
	}

	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.JSON(w, status, response.SubmitScoreResponseFromResult(result))
}
