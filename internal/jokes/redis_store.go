package jokes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/koios/jokeview/internal/config"
	"github.com/koios/jokeview/pkg/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	idsKey     = "jokes:ids"
	jokePrefix = "jokes:"
)

// RedisStore serves jokes kept in Redis. Each joke is a JSON string under
// jokes:{id}, and jokes:ids is the set of known ids.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore connects to Redis and checks the connection
func NewRedisStore(cfg config.RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB))

	return NewRedisStoreFromClient(rdb, logger), nil
}

// NewRedisStoreFromClient creates a store from an existing client
func NewRedisStoreFromClient(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping tests the Redis connection
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func jokeKey(id int) string {
	return jokePrefix + strconv.Itoa(id)
}

// Seed replaces the stored jokes with the catalog
func (s *RedisStore) Seed(ctx context.Context, c *models.Catalog) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, j := range c.Jokes {
		body, err := json.Marshal(j)
		if err != nil {
			return fmt.Errorf("failed to marshal joke %d: %w", j.ID, err)
		}
		pipe.Set(ctx, jokeKey(j.ID), body, 0)
		pipe.SAdd(ctx, idsKey, j.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to seed jokes: %w", err)
	}

	s.logger.Info("Seeded jokes into Redis", zap.Int("count", len(c.Jokes)))
	return nil
}

// Flush removes every joke key
func (s *RedisStore) Flush(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, idsKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read joke ids: %w", err)
	}

	keys := []string{idsKey}
	for _, id := range ids {
		keys = append(keys, jokePrefix+id)
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete jokes: %w", err)
	}
	return nil
}

// Random returns any joke
func (s *RedisStore) Random(ctx context.Context) (models.Joke, error) {
	id, err := s.client.SRandMember(ctx, idsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Joke{}, ErrNotFound
		}
		return models.Joke{}, fmt.Errorf("failed to pick a joke: %w", err)
	}

	n, err := strconv.Atoi(id)
	if err != nil {
		return models.Joke{}, fmt.Errorf("invalid joke id %q: %w", id, err)
	}
	return s.Get(ctx, n)
}

// Get returns the joke with id
func (s *RedisStore) Get(ctx context.Context, id int) (models.Joke, error) {
	body, err := s.client.Get(ctx, jokeKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Joke{}, ErrNotFound
		}
		return models.Joke{}, fmt.Errorf("failed to get joke %d from Redis: %w", id, err)
	}

	var j models.Joke
	if err := json.Unmarshal(body, &j); err != nil {
		return models.Joke{}, fmt.Errorf("failed to decode joke %d: %w", id, err)
	}
	return j, nil
}

// List returns every joke ordered by id
func (s *RedisStore) List(ctx context.Context) ([]models.Joke, error) {
	ids, err := s.client.SMembers(ctx, idsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read joke ids: %w", err)
	}
	if len(ids) == 0 {
		return []models.Joke{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = jokePrefix + id
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read jokes: %w", err)
	}

	jokes := make([]models.Joke, 0, len(values))
	for i, v := range values {
		body, ok := v.(string)
		if !ok {
			s.logger.Warn("Joke id without a record", zap.String("key", keys[i]))
			continue
		}
		var j models.Joke
		if err := json.Unmarshal([]byte(body), &j); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", keys[i], err)
		}
		jokes = append(jokes, j)
	}

	sort.Slice(jokes, func(a, b int) bool { return jokes[a].ID < jokes[b].ID })
	return jokes, nil
}
