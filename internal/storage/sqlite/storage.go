// Package sqlite provides a SQLite-backed implementation of the storage interface.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/storage"
)

//go:embed schema.sql
var schema string

// Storage persists identities, sessions and scores in SQLite
type Storage struct {
	db *sql.DB
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite database at path and applies the schema
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// A single connection serializes writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the SQLite handle
func (s *Storage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// withTx runs fn inside a transaction, committing on success
func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY
}

// Identity operations

func (s *Storage) CreateIdentity(ctx context.Context, identity *model.Identity) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (id, username, subject, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		string(identity.ID), identity.Username, identity.Subject, identity.PasswordHash, toMillis(identity.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return model.ErrUsernameTaken
		}
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, subject, password_hash, created_at FROM identities WHERE id = ?`,
		string(id),
	)
	return scanIdentity(row)
}

func (s *Storage) GetIdentityBySubject(ctx context.Context, subject string) (*model.Identity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, subject, password_hash, created_at FROM identities WHERE subject = ?`,
		subject,
	)
	return scanIdentity(row)
}

func scanIdentity(row *sql.Row) (*model.Identity, error) {
	var (
		identity  model.Identity
		id        string
		createdAt int64
	)
	if err := row.Scan(&id, &identity.Username, &identity.Subject, &identity.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	identity.ID = model.IdentityID(id)
	identity.CreatedAt = fromMillis(createdAt)
	return &identity, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, identity_id, username, authenticated, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (token) DO UPDATE SET
		   identity_id = excluded.identity_id,
		   username = excluded.username,
		   authenticated = excluded.authenticated,
		   created_at = excluded.created_at,
		   expires_at = excluded.expires_at`,
		session.Token, string(session.IdentityID), session.Username, session.Authenticated,
		toMillis(session.CreatedAt), toMillis(session.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var (
		session    model.Session
		identityID string
		createdAt  int64
		expiresAt  int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, identity_id, username, authenticated, created_at, expires_at
		 FROM sessions WHERE token = ?`,
		token,
	).Scan(&session.Token, &identityID, &session.Username, &session.Authenticated, &createdAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	session.IdentityID = model.IdentityID(identityID)
	session.CreatedAt = fromMillis(createdAt)
	session.ExpiresAt = fromMillis(expiresAt)
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Score operations

func (s *Storage) SubmitBest(ctx context.Context, entry model.ScoreEntry) (model.SubmitOutcome, error) {
	var outcome model.SubmitOutcome

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := scanEntry(tx.QueryRowContext(ctx,
			`SELECT `+entryColumns+` FROM scores WHERE game = ? AND identity_id = ?`,
			string(entry.Game), string(entry.IdentityID),
		), entry.Game)
		exists := true
		if errors.Is(err, sql.ErrNoRows) {
			exists = false
		} else if err != nil {
			return fmt.Errorf("read score: %w", err)
		}

		if exists {
			if replay, ok := current.ReplayOutcome(entry.SubmissionID); ok {
				outcome = replay
				return nil
			}
		}

		// The WHERE clause keeps the upsert monotonic on its own
		res, err := tx.ExecContext(ctx,
			`INSERT INTO scores (game, identity_id, username, score, achieved_at, seq, submission, created_by)
			 VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM scores), ?, ?)
			 ON CONFLICT (game, identity_id) DO UPDATE SET
			   username = excluded.username,
			   score = excluded.score,
			   achieved_at = excluded.achieved_at,
			   seq = excluded.seq,
			   submission = excluded.submission
			 WHERE excluded.score > scores.score`,
			string(entry.Game), string(entry.IdentityID), entry.Username, entry.Score, toMillis(entry.AchievedAt),
			entry.SubmissionID, entry.SubmissionID,
		)
		if err != nil {
			return fmt.Errorf("upsert score: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("upsert score: %w", err)
		}

		outcome.Created = !exists
		outcome.Updated = affected > 0
		outcome.Best = entry.Score
		if exists && !outcome.Updated {
			outcome.Best = current.Score
		}
		return nil
	})
	if err != nil {
		return model.SubmitOutcome{}, err
	}
	return outcome, nil
}

func (s *Storage) GetScore(ctx context.Context, game model.GameID, id model.IdentityID) (*model.ScoreEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM scores WHERE game = ? AND identity_id = ?`,
		string(game), string(id),
	)
	entry, err := scanEntry(row, game)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrScoreNotFound
		}
		return nil, fmt.Errorf("get score: %w", err)
	}
	return &entry, nil
}

func (s *Storage) ListScores(ctx context.Context, game model.GameID, limit int) ([]model.ScoreEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM scores WHERE game = ?
		 ORDER BY score DESC, seq ASC, identity_id ASC`
	args := []any{string(game)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []model.ScoreEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows, game)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	return entries, nil
}

const entryColumns = `identity_id, username, score, achieved_at, seq, submission, created_by`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner, game model.GameID) (model.ScoreEntry, error) {
	var (
		entry      model.ScoreEntry
		identityID string
		achievedAt int64
	)
	if err := row.Scan(&identityID, &entry.Username, &entry.Score, &achievedAt, &entry.Seq,
		&entry.SubmissionID, &entry.CreatedBy); err != nil {
		return model.ScoreEntry{}, err
	}
	entry.IdentityID = model.IdentityID(identityID)
	entry.Game = game
	entry.AchievedAt = fromMillis(achievedAt)
	return entry, nil
}
