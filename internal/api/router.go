package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mcoot/leaderboard-go/internal/api/handler"
	"github.com/mcoot/leaderboard-go/internal/api/middleware"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger             *slog.Logger
	SessionService     handler.SessionService
	ScoreService       handler.ScoreSubmitter
	LeaderboardService handler.LeaderboardQuerier
	// SessionDuration sets the cookie Max-Age
	SessionDuration time.Duration
	SecureCookies   bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = 24 * time.Hour
	}

	r := mux.NewRouter()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	// Create handlers
	authHandler := handler.NewAuthHandler(cfg.SessionService, cfg.SessionDuration, cfg.SecureCookies)
	scoreHandler := handler.NewScoreHandler(cfg.ScoreService)
	leaderboardHandler := handler.NewLeaderboardHandler(cfg.LeaderboardService)

	requireSession := middleware.RequireSession(cfg.SessionService)
	optionalSession := middleware.OptionalSession(cfg.SessionService)

	// Public routes
	r.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	r.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	r.HandleFunc("/leaderboard", leaderboardHandler.Top).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/allleaderboard", leaderboardHandler.All).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/health", handler.Health).Methods(http.MethodGet)

	// Session check; never rejects
	for _, path := range []string{"/session", "/check-login", "/checklogin"} {
		r.Handle(path, optionalSession(http.HandlerFunc(authHandler.Session))).
			Methods(http.MethodGet, http.MethodPost)
	}

	// Routes that need a live session
	r.Handle("/logout", requireSession(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodPost)
	r.Handle("/score", requireSession(http.HandlerFunc(scoreHandler.Submit))).Methods(http.MethodPost)

	return r
}
