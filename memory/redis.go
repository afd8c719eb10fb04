package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix prefixes every Redis key written by RedisStore.
const DefaultKeyPrefix = "smartagents:memory"

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	// KeyPrefix (defaults to DefaultKeyPrefix)
	KeyPrefix string

	// MemoryLimit caps entries per namespace; 0 disables the cap.
	MemoryLimit int
}

// RedisStore keeps each namespace in one hash (entry id -> JSON entry) and a
// counter key used to order entries.
//
// Storage structure:
//
//	<prefix>:{<namespace>}      hash [id -> Entry(json)]
//	<prefix>:{<namespace>}:seq  integer
type RedisStore struct {
	client redis.UniversalClient
	opts   RedisOptions
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, optFns ...func(o *RedisOptions)) *RedisStore {
	opts := RedisOptions{KeyPrefix: DefaultKeyPrefix}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.KeyPrefix == "" {
		opts.KeyPrefix = DefaultKeyPrefix
	}

	return &RedisStore{client: client, opts: opts}
}

// Dial connects to Redis and verifies the connection with PING.
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}

	return client, nil
}

func (s *RedisStore) key(namespace string) string {
	return fmt.Sprintf("%s:{%s}", s.opts.KeyPrefix, namespace)
}

func (s *RedisStore) seqKey(namespace string) string {
	return s.key(namespace) + ":seq"
}

// Add stores a new entry.
func (s *RedisStore) Add(ctx context.Context, namespace, content string, metadata map[string]string) (Entry, error) {
	key := s.key(namespace)

	if s.opts.MemoryLimit > 0 {
		count, err := s.client.HLen(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return Entry{}, fmt.Errorf("check memory count failed: %w", err)
		}

		if int(count) >= s.opts.MemoryLimit {
			return Entry{}, fmt.Errorf("memory limit exceeded for namespace %s, limit: %d", namespace, s.opts.MemoryLimit)
		}
	}

	seq, err := s.client.Incr(ctx, s.seqKey(namespace)).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("allocate memory sequence failed: %w", err)
	}

	e := Entry{
		ID:        uuid.NewString(),
		Content:   content,
		Metadata:  copyMetadata(metadata),
		CreatedAt: time.Now(),
		Seq:       seq,
	}

	b, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal memory entry failed: %w", err)
	}

	if err := s.client.HSet(ctx, key, e.ID, b).Err(); err != nil {
		return Entry{}, fmt.Errorf("store memory entry failed: %w", err)
	}

	return e, nil
}

// Search returns entries whose content contains query.
func (s *RedisStore) Search(ctx context.Context, namespace, query string, limit int) ([]Entry, error) {
	all, err := s.client.HGetAll(ctx, s.key(namespace)).Result()
	if errors.Is(err, redis.Nil) {
		return []Entry{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("search memories failed: %w", err)
	}

	results := make([]Entry, 0, len(all))

	for _, v := range all {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("unmarshal memory entry failed: %w", err)
		}

		if matches(e, query) {
			results = append(results, e)
		}
	}

	return newestFirst(results, limit), nil
}

// List returns the most recent entries.
func (s *RedisStore) List(ctx context.Context, namespace string, limit int) ([]Entry, error) {
	return s.Search(ctx, namespace, "", limit)
}

// Delete removes one entry.
func (s *RedisStore) Delete(ctx context.Context, namespace, id string) error {
	n, err := s.client.HDel(ctx, s.key(namespace), id).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("delete memory entry failed: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	return nil
}

// Clear removes the namespace hash and its counter.
func (s *RedisStore) Clear(ctx context.Context, namespace string) error {
	if err := s.client.Del(ctx, s.key(namespace), s.seqKey(namespace)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("clear memories failed: %w", err)
	}

	return nil
}
