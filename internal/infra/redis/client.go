package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/tipbot/internal/export"
)

// Client wraps Redis operations for the bot: shared challenge storage and
// inbound-event deduplication.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Key helpers
func challengeKey(k export.Key) string {
	return "export_challenge:" + k.String()
}

func dedupeKey(eventID string) string {
	return "event_seen:" + eventID
}

// consumeScript deletes the challenge only when the stored code matches,
// in one atomic step on the server.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	redis.call("DEL", KEYS[1])
	return 1
end
return 0
`)

// ChallengeStore returns an export.ChallengeStore backed by this client.
// SET with EX both supersedes a prior challenge and arms the TTL expiry.
func (c *Client) ChallengeStore() export.ChallengeStore {
	return &challengeStore{c: c}
}

type challengeStore struct {
	c *Client
}

func (s *challengeStore) Put(ctx context.Context, key export.Key, code string, ttl time.Duration) error {
	if err := s.c.rdb.Set(ctx, challengeKey(key), code, ttl).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

func (s *challengeStore) ConsumeIfMatch(ctx context.Context, key export.Key, code string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.c.rdb, []string{challengeKey(key)}, code).Int()
	if err != nil {
		return false, fmt.Errorf("consume script failed: %w", err)
	}
	return n == 1, nil
}

func (s *challengeStore) Delete(ctx context.Context, key export.Key) error {
	if err := s.c.rdb.Del(ctx, challengeKey(key)).Err(); err != nil {
		return fmt.Errorf("del failed: %w", err)
	}
	return nil
}

// MarkProcessed records an inbound event ID and reports whether this is the
// first delivery. Duplicate transport deliveries return false.
func (c *Client) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, dedupeKey(eventID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}
