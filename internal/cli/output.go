package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case RegisterResult:
		_, _ = fmt.Fprintf(o.w, "Registered %s (id %s)\n", v.User.Username, v.User.ID)
	case LoginResult:
		_, _ = fmt.Fprintf(o.w, "Logged in as %s\n", v.User.Username)
	case SessionResult:
		o.printSession(v)
	case SubmitResult:
		o.printSubmit(v)
	case []LeaderboardEntry:
		o.printLeaderboard(v)
	case HealthResult:
		_, _ = fmt.Fprintf(o.w, "Server status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	LoggedIn bool   `json:"loggedIn,omitempty"`
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RegisterResult is the response of POST /register
type RegisterResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
}

// LoginResult is the response of POST /login
type LoginResult struct {
	Message string `json:"message"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// SessionResult is the response of /session
type SessionResult struct {
	LoggedIn bool  `json:"loggedIn"`
	User     *User `json:"user,omitempty"`
}

// SubmitResult is the response of POST /score
type SubmitResult struct {
	Updated bool  `json:"updated"`
	Best    int64 `json:"best"`
}

// LeaderboardEntry is one ranked row
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}

// HealthResult is the response of GET /health
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printSession(s SessionResult) {
	if !s.LoggedIn || s.User == nil {
		_, _ = fmt.Fprintln(o.w, "Not logged in")
		return
	}
	_, _ = fmt.Fprintf(o.w, "Logged in as %s (id %s)\n", s.User.Username, s.User.ID)
}

func (o *Output) printSubmit(r SubmitResult) {
	if r.Updated {
		_, _ = fmt.Fprintf(o.w, "New best score: %d\n", r.Best)
		return
	}
	_, _ = fmt.Fprintf(o.w, "Score not improved; best is still %d\n", r.Best)
}

func (o *Output) printLeaderboard(entries []LeaderboardEntry) {
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(o.w, "No scores yet")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tUSER\tSCORE")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\n", e.Rank, e.Username, e.Score)
	}
	_ = tw.Flush()
}
