package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/mcoot/leaderboard-go/internal/api/request"
	"github.com/mcoot/leaderboard-go/internal/api/response"
	"github.com/mcoot/leaderboard-go/internal/services/leaderboard"
)

// LeaderboardQuerier serves ranked views of the ledger
type LeaderboardQuerier interface {
	TopN(ctx context.Context, n int) ([]leaderboard.Entry, error)
	All(ctx context.Context) ([]leaderboard.Entry, error)
	ByGame(ctx context.Context, game string, n int) ([]leaderboard.Entry, error)
}

// LeaderboardHandler handles leaderboard reads
type LeaderboardHandler struct {
	boards LeaderboardQuerier
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(boards LeaderboardQuerier) *LeaderboardHandler {
	return &LeaderboardHandler{boards: boards}
}

// Top handles GET/POST /leaderboard
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	req, ok := parseLeaderboardRequest(w, r)
	if !ok {
		return
	}

	var (
		entries []leaderboard.Entry
		err     error
	)
	if req.GameID == "" {
		entries, err = h.boards.TopN(r.Context(), req.Limit)
	} else {
		limit := req.Limit
		if limit == 0 {
			limit = leaderboard.DefaultLimit
		}
		entries, err = h.boards.ByGame(r.Context(), req.GameID, limit)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromEntries(entries))
}

// All handles GET/POST /allleaderboard
func (h *LeaderboardHandler) All(w http.ResponseWriter, r *http.Request) {
	req, ok := parseLeaderboardRequest(w, r)
	if !ok {
		return
	}

	var (
		entries []leaderboard.Entry
		err     error
	)
	if req.GameID == "" {
		entries, err = h.boards.All(r.Context())
	} else {
		entries, err = h.boards.ByGame(r.Context(), req.GameID, 0)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.LeaderboardFromEntries(entries))
}

// parseLeaderboardRequest reads the board selection from the query string,
// then from a JSON body when one is sent. Body values win.
func parseLeaderboardRequest(w http.ResponseWriter, r *http.Request) (request.LeaderboardRequest, bool) {
	var req request.LeaderboardRequest

	query := r.URL.Query()
	req.GameID = query.Get("gameId")
	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, NewInvalidRequestError("limit must be an integer"))
			return req, false
		}
		req.Limit = limit
	}

	if r.Method == http.MethodPost && r.ContentLength != 0 {
		var body request.LeaderboardRequest
		if err := request.Decode(r, &body); err == nil {
			if body.GameID != "" {
				req.GameID = body.GameID
			}
			if body.Limit != 0 {
				req.Limit = body.Limit
			}
		} else if !errors.Is(err, request.ErrEmptyBody) {
			WriteError(w, NewInvalidRequestError("invalid request body"))
			return req, false
		}
	}

	if err := request.Validate(&req); err != nil {
		WriteError(w, NewInvalidRequestError(err.Error()))
		return req, false
	}
	return req, true
}
