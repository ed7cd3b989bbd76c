package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/leaderboard-go/internal/model"
	"github.com/mcoot/leaderboard-go/internal/storage"
)

// submitBestScript applies a submission server-side so the compare and the
// write cannot interleave with another submission for the same entry.
//
// KEYS: board zset, entry hash, sequence counter
// ARGV: identity id, score, username, achieved_at (unix nanos), submission id
// Returns {created, updated, best}.
var submitBestScript = redis.NewScript(`
local current = redis.call('HGET', KEYS[2], 'score')
if current and ARGV[5] ~= '' and redis.call('HGET', KEYS[2], 'submission') == ARGV[5] then
  local created = 0
  if redis.call('HGET', KEYS[2], 'created_by') == ARGV[5] then
    created = 1
  end
  return {created, 1, current}
end
if current and tonumber(ARGV[2]) <= tonumber(current) then
  return {0, 0, current}
end
local seq = redis.call('INCR', KEYS[3])
redis.call('HSET', KEYS[2],
  'identity_id', ARGV[1],
  'username', ARGV[3],
  'score', ARGV[2],
  'achieved_at', ARGV[4],
  'seq', seq,
  'submission', ARGV[5])
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[1])
local created = 0
if not current then
  redis.call('HSET', KEYS[2], 'created_by', ARGV[5])
  created = 1
end
return {created, 1, ARGV[2]}
`)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Identity operations

func (s *Storage) CreateIdentity(ctx context.Context, identity *model.Identity) error {
	data, err := json.Marshal(identity)
	if err != nil {
		return err
	}

	// The subject index is the uniqueness guard: SETNX claims it or fails
	claimed, err := s.client.SetNX(ctx, subjectIndexKey(identity.Subject), string(identity.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrUsernameTaken
	}

	if err := s.client.Set(ctx, identityKey(identity.ID), data, 0).Err(); err != nil {
		// Release the claim so the username can be registered again
		_ = s.client.Del(ctx, subjectIndexKey(identity.Subject)).Err()
		return err
	}
	return nil
}

func (s *Storage) GetIdentity(ctx context.Context, id model.IdentityID) (*model.Identity, error) {
	data, err := s.client.Get(ctx, identityKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}

	var identity model.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *Storage) GetIdentityBySubject(ctx context.Context, subject string) (*model.Identity, error) {
	id, err := s.client.Get(ctx, subjectIndexKey(subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrIdentityNotFound
		}
		return nil, err
	}

	return s.GetIdentity(ctx, model.IdentityID(id))
}

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	// Redis evicts the key once the session's own lifetime is over
	ttl := session.ExpiresAt.Sub(session.CreatedAt)
	if ttl <= 0 {
		ttl = s.cfg.SessionTTL
	}
	return s.client.Set(ctx, sessionKey(session.Token), data, ttl).Err()
}

func (s *Storage) GetSession(ctx context.Context, token string) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrSessionNotFound
		}
		return nil, err
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	return s.client.Del(ctx, sessionKey(token)).Err()
}

// Score operations

func (s *Storage) SubmitBest(ctx context.Context, entry model.ScoreEntry) (model.SubmitOutcome, error) {
	keys := []string{boardKey(entry.Game), entryKey(entry.Game, entry.IdentityID), seqKey()}
	args := []any{
		string(entry.IdentityID),
		strconv.FormatInt(entry.Score, 10),
		entry.Username,
		strconv.FormatInt(entry.AchievedAt.UnixNano(), 10),
		entry.SubmissionID,
	}

	result, err := submitBestScript.Run(ctx, s.client, keys, args...).Slice()
	if err != nil {
		return model.SubmitOutcome{}, err
	}
	if len(result) != 3 {
		return model.SubmitOutcome{}, fmt.Errorf("unexpected submit result: %v", result)
	}

	best, err := toInt64(result[2])
	if err != nil {
		return model.SubmitOutcome{}, err
	}
	created, _ := toInt64(result[0])
	updated, _ := toInt64(result[1])

	return model.SubmitOutcome{
		Created: created == 1,
		Updated: updated == 1,
		Best:    best,
	}, nil
}

func (s *Storage) GetScore(ctx context.Context, game model.GameID, id model.IdentityID) (*model.ScoreEntry, error) {
	fields, err := s.client.HGetAll(ctx, entryKey(game, id)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, model.ErrScoreNotFound
	}
	entry, err := entryFromHash(game, fields)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Storage) ListScores(ctx context.Context, game model.GameID, limit int) ([]model.ScoreEntry, error) {
	key := boardKey(game)

	var members []string
	if limit <= 0 {
		all, err := s.client.ZRevRange(ctx, key, 0, -1).Result()
		if err != nil {
			return nil, err
		}
		members = all
	} else {
		top, err := s.client.ZRevRangeWithScores(ctx, key, 0, int64(limit-1)).Result()
		if err != nil {
			return nil, err
		}
		if len(top) == 0 {
			return []model.ScoreEntry{}, nil
		}
		// Members tied with the last one may outrank it on sequence, so widen
		// the candidate set to everything at or above the boundary score.
		boundary := strconv.FormatFloat(top[len(top)-1].Score, 'f', -1, 64)
		candidates, err := s.client.ZRevRangeByScore(ctx, key, &redis.ZRangeBy{
			Min: boundary,
			Max: "+inf",
		}).Result()
		if err != nil {
			return nil, err
		}
		members = candidates
	}

	if len(members) == 0 {
		return []model.ScoreEntry{}, nil
	}

	// Fetch all entry hashes in one round trip
	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(members))
	for i, member := range members {
		cmds[i] = pipe.HGetAll(ctx, entryKey(game, model.IdentityID(member)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	entries := make([]model.ScoreEntry, 0, len(members))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		entry, err := entryFromHash(game, fields)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Less(entries[j])
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func entryFromHash(game model.GameID, fields map[string]string) (model.ScoreEntry, error) {
	score, err := strconv.ParseInt(fields["score"], 10, 64)
	if err != nil {
		return model.ScoreEntry{}, fmt.Errorf("parse score: %w", err)
	}
	seq, err := strconv.ParseInt(fields["seq"], 10, 64)
	if err != nil {
		return model.ScoreEntry{}, fmt.Errorf("parse seq: %w", err)
	}
	achievedAt, err := strconv.ParseInt(fields["achieved_at"], 10, 64)
	if err != nil {
		return model.ScoreEntry{}, fmt.Errorf("parse achieved_at: %w", err)
	}

	return model.ScoreEntry{
		IdentityID:   model.IdentityID(fields["identity_id"]),
		Username:     fields["username"],
		Game:         game,
		Score:        score,
		AchievedAt:   time.Unix(0, achievedAt).UTC(),
		Seq:          seq,
		SubmissionID: fields["submission"],
		CreatedBy:    fields["created_by"],
	}, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected value type %T", v)
	}
}
