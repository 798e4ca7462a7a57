// Package postgres persists the summary history in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"

	"github.com/sweetpotato0/digest/history"
)

// Config holds PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Capacity int
}

// DefaultConfig returns default PostgreSQL configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "postgres",
		DBName:   "digest",
		SSLMode:  "disable",
		Capacity: history.DefaultCapacity,
	}
}

// ConfigFromEnv loads PostgreSQL configuration from environment variables.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("POSTGRES_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("POSTGRES_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("POSTGRES_USER"); v != "" {
		cfg.User = v
	}
	if v := os.Getenv("POSTGRES_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("POSTGRES_DB"); v != "" {
		cfg.DBName = v
	}
	if v := os.Getenv("POSTGRES_SSLMODE"); v != "" {
		cfg.SSLMode = v
	}
	return cfg
}

// Store implements history.Store backed by PostgreSQL.
type Store struct {
	db       *sql.DB
	capacity int
}

// New connects to PostgreSQL and prepares the summaries table.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Capacity <= 0 {
		config.Capacity = history.DefaultCapacity
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	store := &Store{db: db, capacity: config.Capacity}

	if err := store.createTable(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return store, nil
}

func (s *Store) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS summaries (
		id VARCHAR(255) PRIMARY KEY,
		created_at TIMESTAMP NOT NULL,
		excerpt TEXT NOT NULL,
		summary TEXT NOT NULL,
		model VARCHAR(255) NOT NULL,
		style VARCHAR(64) NOT NULL,
		original_length INT NOT NULL,
		summary_length INT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_summaries_created_at ON summaries(created_at);
	`

	_, err := s.db.ExecContext(ctx, query)
	return err
}

// Save inserts the record and evicts rows beyond capacity, oldest first.
func (s *Store) Save(ctx context.Context, record *history.Record) error {
	if record == nil {
		return fmt.Errorf("history record cannot be nil")
	}

	query := `
	INSERT INTO summaries (id, created_at, excerpt, summary, model, style, original_length, summary_length)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	if _, err := s.db.ExecContext(ctx, query,
		record.ID, record.CreatedAt, record.Excerpt, record.Summary,
		record.Model, record.Style, record.OriginalLength, record.SummaryLength); err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}

	evict := `
	DELETE FROM summaries WHERE id NOT IN (
		SELECT id FROM summaries ORDER BY created_at DESC LIMIT $1
	)`
	if _, err := s.db.ExecContext(ctx, evict, s.capacity); err != nil {
		return fmt.Errorf("failed to evict old records: %w", err)
	}
	return nil
}

// List returns records newest first.
func (s *Store) List(ctx context.Context) ([]*history.Record, error) {
	query := `
	SELECT id, created_at, excerpt, summary, model, style, original_length, summary_length
	FROM summaries ORDER BY created_at DESC LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, s.capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var records []*history.Record
	for rows.Next() {
		var rec history.Record
		if err := rows.Scan(&rec.ID, &rec.CreatedAt, &rec.Excerpt, &rec.Summary,
			&rec.Model, &rec.Style, &rec.OriginalLength, &rec.SummaryLength); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM summaries`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
