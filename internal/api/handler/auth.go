package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mcoot/leaderboard-go/internal/api/middleware"
	"github.com/mcoot/leaderboard-go/internal/api/request"
	"github.com/mcoot/leaderboard-go/internal/api/response"
	"github.com/mcoot/leaderboard-go/internal/model"
)

// SessionService is the session manager as seen by the HTTP layer
type SessionService interface {
	Register(ctx context.Context, username, password string) (*model.Identity, error)
	Login(ctx context.Context, username, password, prior string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
	Current(ctx context.Context, token string) *model.Session
}

// AuthHandler handles registration and session endpoints
type AuthHandler struct {
	sessions     SessionService
	cookieMaxAge time.Duration
	secureCookie bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(sessions SessionService, cookieMaxAge time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

// Register handles POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	identity, err := h.sessions.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RegisterResponse{
		Message: "User registered successfully",
		User:    response.UserFromIdentity(identity),
	})
}

// Login handles POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	// A token already presented by this client is replaced by the new session
	session, err := h.sessions.Login(r.Context(), req.Username, req.Password, middleware.ExtractToken(r))
	if err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, h.cookie(session.Token, int(h.cookieMaxAge.Seconds())))
	response.JSON(w, http.StatusOK, response.LoginResponse{
		Message: "Logged in successfully",
		User:    response.UserFromSession(session),
		Token:   session.Token,
	})
}

// Logout handles POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := middleware.MustGetSession(r.Context())

	if err := h.sessions.Logout(r.Context(), session.Token); err != nil {
		WriteError(w, err)
		return
	}

	http.SetCookie(w, h.cookie("", -1))
	response.JSON(w, http.StatusOK, response.MessageResponse{Message: "Logged out successfully"})
}

// Session handles GET/POST /session and its aliases
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSession(r.Context())
	if session == nil {
		response.JSON(w, http.StatusOK, response.SessionResponse{LoggedIn: false})
		return
	}

	user := response.UserFromSession(session)
	response.JSON(w, http.StatusOK, response.SessionResponse{LoggedIn: true, User: &user})
}

func (h *AuthHandler) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

// decodeAndValidate reads a JSON body into req and writes a 400 on failure
func decodeAndValidate(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := request.Decode(r, req); err != nil {
		if errors.Is(err, request.ErrEmptyBody) {
			WriteError(w, NewInvalidRequestError("request body is required"))
			return false
		}
		detail := ""
		if cause := errors.Unwrap(err); cause != nil {
			detail = cause.Error()
		}
		WriteError(w, NewValidationError("invalid request body", detail))
		return false
	}
	if err := request.Validate(req); err != nil {
		var ferr *request.FieldError
		if errors.As(err, &ferr) {
			WriteError(w, NewValidationError(ferr.Error(), ferr.Detail()))
			return false
		}
		WriteError(w, NewInvalidRequestError(err.Error()))
		return false
	}
	return true
}
