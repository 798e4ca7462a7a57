// Package history keeps an insertion-ordered, bounded log of past summary
// runs. The log is caller-owned state: the application constructs one and
// threads it through explicitly instead of relying on process-wide globals.
package history

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultCapacity bounds the log; the oldest record is evicted first.
	DefaultCapacity = 10

	// excerptRunes is how much of the original text a record retains.
	excerptRunes = 200
)

// Record is one completed summary run.
type Record struct {
	ID             string    `json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	Excerpt        string    `json:"excerpt"`
	Summary        string    `json:"summary"`
	Model          string    `json:"model"`
	Style          string    `json:"style"`
	OriginalLength int       `json:"original_length"`
	SummaryLength  int       `json:"summary_length"`
}

// NewRecord builds a record from a finished run, truncating the original
// text to a short excerpt.
func NewRecord(original, summary, model, style string) *Record {
	excerpt := original
	if runes := []rune(original); len(runes) > excerptRunes {
		excerpt = string(runes[:excerptRunes]) + "..."
	}
	now := time.Now()
	return &Record{
		ID:             fmt.Sprintf("run:%d", now.UnixNano()),
		CreatedAt:      now,
		Excerpt:        excerpt,
		Summary:        summary,
		Model:          model,
		Style:          style,
		OriginalLength: len(original),
		SummaryLength:  len(summary),
	}
}

// Clone creates a copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	cloned := *r
	return &cloned
}

// Store persists summary records. Implementations keep newest-first order
// and honor the capacity bound.
type Store interface {
	// Save adds a record, evicting the oldest when full.
	Save(ctx context.Context, record *Record) error

	// List returns records newest first.
	List(ctx context.Context) ([]*Record, error)

	// Clear removes every record.
	Clear(ctx context.Context) error
}

// Log is the in-memory Store. It is safe for concurrent use.
type Log struct {
	mu       sync.RWMutex
	capacity int
	records  []*Record
}

// NewLog creates an in-memory log. A non-positive capacity falls back to
// DefaultCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Save prepends the record and drops the oldest beyond capacity.
func (l *Log) Save(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("history record cannot be nil")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append([]*Record{record.Clone()}, l.records...)
	if len(l.records) > l.capacity {
		l.records = l.records[:l.capacity]
	}
	return nil
}

// List returns records newest first.
func (l *Log) List(ctx context.Context) ([]*Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Record, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r.Clone())
	}
	return out, nil
}

// Clear removes every record.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = nil
	return nil
}

// Len reports the current record count.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}
