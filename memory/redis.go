package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zero-day-ai/kgchat/llm"
)

// Key layout: session:<id>:history holds the turn list, oldest first.
const sessionKeyFormat = "session:%s:history"

// DefaultSessionTTL expires idle sessions. The TTL is refreshed on every
// append.
const DefaultSessionTTL = 24 * time.Hour

// RedisOptions configures the Redis-backed store.
type RedisOptions struct {
	// URL is the Redis connection string (e.g., "redis://localhost:6379").
	URL string

	// MaxTurns caps retained turns per session. Zero selects the default.
	MaxTurns int

	// SessionTTL expires idle sessions. Zero selects the default.
	SessionTTL time.Duration

	// ConnectTimeout is the maximum time to wait for connection establishment.
	ConnectTimeout time.Duration
}

// RedisStore keeps session history in Redis lists, one list per session.
// History survives process restarts and is shared across replicas.
type RedisStore struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(opts RedisOptions) (*RedisStore, error) {
	if opts.URL == "" {
		opts.URL = "redis://localhost:6379"
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 5 * time.Second
	}

	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	redisOpts.DialTimeout = opts.ConnectTimeout

	client := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client:   client,
		maxTurns: opts.MaxTurns,
		ttl:      opts.SessionTTL,
	}, nil
}

// History returns the session's turns, oldest first.
func (s *RedisStore) History(ctx context.Context, sessionID string) ([]llm.Turn, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	raw, err := s.client.LRange(ctx, sessionKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: reading session %s: %v", ErrStorageFailed, sessionID, err)
	}

	turns := make([]llm.Turn, 0, len(raw))
	for _, item := range raw {
		var turn llm.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			// Skip entries written by incompatible versions.
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Append pushes turns onto the session list, trims to the cap, and refreshes
// the session TTL.
func (s *RedisStore) Append(ctx context.Context, sessionID string, turns ...llm.Turn) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	if len(turns) == 0 {
		return nil
	}

	values := make([]any, 0, len(turns))
	for _, turn := range turns {
		data, err := json.Marshal(turn)
		if err != nil {
			return fmt.Errorf("failed to marshal turn: %w", err)
		}
		values = append(values, data)
	}

	key := sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-s.maxTurns), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: appending to session %s: %v", ErrStorageFailed, sessionID, err)
	}
	return nil
}

// Clear removes the session's history.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrInvalidSession
	}
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("%w: clearing session %s: %v", ErrStorageFailed, sessionID, err)
	}
	return nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf(sessionKeyFormat, sessionID)
}
