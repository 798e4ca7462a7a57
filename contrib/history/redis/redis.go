// Package redis persists the summary history in a capped Redis list so a
// restarted process keeps its recent runs.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/sweetpotato0/digest/history"
)

// Config holds Redis configuration for the history store.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
	Capacity int
}

// DefaultConfig returns default Redis history configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:     "localhost:6379",
		Key:      "digest:history",
		Capacity: history.DefaultCapacity,
	}
}

// ConfigFromEnv loads Redis history configuration from environment variables.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.DB = db
		}
	}
	if v := os.Getenv("REDIS_HISTORY_KEY"); v != "" {
		cfg.Key = v
	}
	return cfg
}

// Store implements history.Store backed by a Redis list. Records are pushed
// to the head and the list is trimmed to capacity, so Redis itself maintains
// newest-first order and eviction.
type Store struct {
	client   *redis.Client
	key      string
	capacity int
}

// New creates a Redis-backed history store.
func New(config *Config) *Store {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Capacity <= 0 {
		config.Capacity = history.DefaultCapacity
	}

	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	return &Store{
		client:   client,
		key:      config.Key,
		capacity: config.Capacity,
	}
}

// Save pushes the record and trims the list to capacity.
func (s *Store) Save(ctx context.Context, record *history.Record) error {
	if record == nil {
		return fmt.Errorf("history record cannot be nil")
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key, raw)
	pipe.LTrim(ctx, s.key, 0, int64(s.capacity)-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}
	return nil
}

// List returns records newest first.
func (s *Store) List(ctx context.Context) ([]*history.Record, error) {
	raws, err := s.client.LRange(ctx, s.key, 0, int64(s.capacity)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	records := make([]*history.Record, 0, len(raws))
	for _, raw := range raws {
		var rec history.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode history record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, nil
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
