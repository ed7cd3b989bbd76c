package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	identities   map[model.IdentityID]*model.Identity
	subjectIndex map[string]model.IdentityID
	usernames    map[string]struct{}
	sessions     map[string]*model.Session
	scores       map[scoreKey]*model.ScoreEntry
	seq          int64
}

type scoreKey struct {
	game       model.GameID
	identityID model.IdentityID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		identities:   make(map[model.IdentityID]*model.Identity),
		subjectIndex: make(map[string]model.IdentityID),
		usernames:    make(map[string]struct{}),
		sessions:     make(map[string]*model.Session),
		scores:       make(map[scoreKey]*model.ScoreEntry),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for the in-memory store
func (s *Storage) Close() error {
	return nil
}

// Identity operations

func (s *Storage) CreateIdentity(ctx context.Context, identity *model.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usernames[identity.Username]; ok {
		return model.ErrUsernameTaken
	}
	if _, ok := s.subjectIndex[identity.Subject]; ok {
		return model.ErrUsernameTaken
	}
	stored := *identity
	s.identities[identity.ID] = &stored
	s.subjectIndex[identity.Subject] = identity.ID
	s.usernames[identity.Username] = struct{}{}
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	result := *identity
	return &result, nil
}

func (s *Storage) GetIdentityBySubject(ctx context.Context, subject string) (*model.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.subjectIndex[subject]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	identity, ok := s.identities[id]
	if !ok {
		return nil, model.ErrIdentityNotFound
	}
	result := *identity
	return &result, nil
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *session
	s.sessions[session.Token] = &stored
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, model.ErrSessionNotFound
	}
	result := *session
	return &result, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Score operations

func (s *Storage) SubmitBest(ctx context.Context, entry model.ScoreEntry) (model.SubmitOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := scoreKey{game: entry.Game, identityID: entry.IdentityID}
	current, ok := s.scores[key]
	if ok {
		if outcome, replayed := current.ReplayOutcome(entry.SubmissionID); replayed {
			return outcome, nil
		}
		if entry.Score <= current.Score {
			return model.SubmitOutcome{Best: current.Score}, nil
		}
	}

	s.seq++
	stored := entry
	stored.Seq = s.seq
	stored.CreatedBy = entry.SubmissionID
	if ok {
		stored.CreatedBy = current.CreatedBy
	}
	s.scores[key] = &stored

	return model.SubmitOutcome{Created: !ok, Updated: true, Best: entry.Score}, nil
}

func (s *Storage) GetScore(ctx context.Context, game model.GameID, id model.IdentityID) (*model.ScoreEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.scores[scoreKey{game: game, identityID: id}]
	if !ok {
		return nil, model.ErrScoreNotFound
	}
	result := *entry
	return &result, nil
}

func (s *Storage) ListScores(ctx context.Context, game model.GameID, limit int) ([]model.ScoreEntry, error) {
	s.mu.RLock()
	entries := make([]model.ScoreEntry, 0, len(s.scores))
	for key, entry := range s.scores {
		if key.game == game {
			entries = append(entries, *entry)
		}
	}
	s.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Less(entries[j])
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
