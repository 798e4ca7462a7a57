// Package mongo persists the summary history in MongoDB.
package mongo

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sweetpotato0/digest/history"
)

// Config holds MongoDB connection configuration.
type Config struct {
	URI        string
	Database   string
	Collection string
	Capacity   int
}

// DefaultConfig returns default MongoDB configuration.
func DefaultConfig() *Config {
	return &Config{
		URI:        "mongodb://localhost:27017",
		Database:   "digest",
		Collection: "summaries",
		Capacity:   history.DefaultCapacity,
	}
}

// ConfigFromEnv loads MongoDB configuration from environment variables.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.URI = v
	}
	if v := os.Getenv("MONGODB_DB"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("MONGODB_COLLECTION"); v != "" {
		cfg.Collection = v
	}
	return cfg
}

// mongoRecord is the internal representation for MongoDB.
type mongoRecord struct {
	ID             string    `bson:"_id"`
	CreatedAt      time.Time `bson:"created_at"`
	Excerpt        string    `bson:"excerpt"`
	Summary        string    `bson:"summary"`
	Model          string    `bson:"model"`
	Style          string    `bson:"style"`
	OriginalLength int       `bson:"original_length"`
	SummaryLength  int       `bson:"summary_length"`
}

// Store implements history.Store backed by MongoDB.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	capacity   int
}

// New connects to MongoDB and prepares the summaries collection.
func New(config *Config) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Capacity <= 0 {
		config.Capacity = history.DefaultCapacity
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	store := &Store{
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		capacity:   config.Capacity,
	}

	indexModel := mongo.IndexModel{Keys: bson.D{{Key: "created_at", Value: -1}}}
	if _, err := store.collection.Indexes().CreateOne(context.Background(), indexModel); err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return store, nil
}

// Save inserts the record and evicts documents beyond capacity.
func (s *Store) Save(ctx context.Context, record *history.Record) error {
	if record == nil {
		return fmt.Errorf("history record cannot be nil")
	}

	doc := mongoRecord{
		ID:             record.ID,
		CreatedAt:      record.CreatedAt,
		Excerpt:        record.Excerpt,
		Summary:        record.Summary,
		Model:          record.Model,
		Style:          record.Style,
		OriginalLength: record.OriginalLength,
		SummaryLength:  record.SummaryLength,
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save history record: %w", err)
	}

	return s.evict(ctx)
}

func (s *Store) evict(ctx context.Context) error {
	count, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to count history records: %w", err)
	}
	excess := count - int64(s.capacity)
	if excess <= 0 {
		return nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(excess).
		SetProjection(bson.M{"_id": 1})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("failed to find evictable records: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode record id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if len(ids) == 0 {
		return nil
	}

	if _, err := s.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to evict old records: %w", err)
	}
	return nil
}

// List returns records newest first.
func (s *Store) List(ctx context.Context) ([]*history.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(s.capacity))
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer cursor.Close(ctx)

	var records []*history.Record
	for cursor.Next(ctx) {
		var doc mongoRecord
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode history record: %w", err)
		}
		records = append(records, &history.Record{
			ID:             doc.ID,
			CreatedAt:      doc.CreatedAt,
			Excerpt:        doc.Excerpt,
			Summary:        doc.Summary,
			Model:          doc.Model,
			Style:          doc.Style,
			OriginalLength: doc.OriginalLength,
			SummaryLength:  doc.SummaryLength,
		})
	}
	return records, cursor.Err()
}

// Clear removes every record.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
