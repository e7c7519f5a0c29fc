package checkpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cartridge/sevens/internal/strategy/rl"
)

// KV is the subset of the go-redis client used by RedisStore.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisConfig holds connection settings for NewRedisClient.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient opens a client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisStore keeps each model as a string value under "<prefix>:<name>".
type RedisStore struct {
	kv     KV
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps kv. A zero ttl keeps models forever.
func NewRedisStore(kv KV, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, prefix: prefix, ttl: ttl}
}

// Key returns the redis key for a model name.
func (s *RedisStore) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

func (s *RedisStore) Save(ctx context.Context, name string, agent *rl.Agent) error {
	var buf bytes.Buffer
	if err := agent.WriteModel(&buf); err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", name, err)
	}
	if err := s.kv.Set(ctx, s.Key(name), buf.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", name, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, name string, agent *rl.Agent) (int, error) {
	val, err := s.kv.Get(ctx, s.Key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load checkpoint %s: %w", name, err)
	}
	n, err := agent.ReadModel(strings.NewReader(val))
	if err != nil {
		return n, fmt.Errorf("load checkpoint %s: %w", name, err)
	}
	return n, nil
}
