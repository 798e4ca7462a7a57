package history

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

func TestLogEvictsOldestBeyondCapacity(t *testing.T) {
	ctx := context.Background()
	log := NewLog(10)

	for i := 0; i < 12; i++ {
		rec := NewRecord(fmt.Sprintf("original %d", i), fmt.Sprintf("summary %d", i), "llama3.2:latest", "general")
		if err := log.Save(ctx, rec); err != nil {
			t.Fatalf("save error: %v", err)
		}
	}

	records, err := log.List(ctx)
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	if len(records) != 10 {
		t.Fatalf("expected capacity 10, got %d", len(records))
	}
	if records[0].Summary != "summary 11" {
		t.Errorf("newest record should be first, got %q", records[0].Summary)
	}
	if records[9].Summary != "summary 2" {
		t.Errorf("records 0 and 1 should be evicted, oldest kept is %q", records[9].Summary)
	}
}

func TestNewRecordTruncatesExcerpt(t *testing.T) {
	original := strings.Repeat("摘", 250)
	rec := NewRecord(original, "short", "m", "general")
	if !strings.HasSuffix(rec.Excerpt, "...") {
		t.Error("long excerpt should end with ellipsis")
	}
	if got := len([]rune(rec.Excerpt)); got != 203 {
		t.Errorf("excerpt rune length = %d, want 203", got)
	}
	if rec.OriginalLength != len(original) {
		t.Errorf("original length = %d, want %d", rec.OriginalLength, len(original))
	}
}

func TestNewRecordKeepsShortOriginal(t *testing.T) {
	rec := NewRecord("tiny", "s", "m", "general")
	if rec.Excerpt != "tiny" {
		t.Errorf("excerpt = %q, want %q", rec.Excerpt, "tiny")
	}
}

func TestLogClear(t *testing.T) {
	ctx := context.Background()
	log := NewLog(0) // default capacity

	if err := log.Save(ctx, NewRecord("a", "b", "m", "general")); err != nil {
		t.Fatalf("save error: %v", err)
	}
	if err := log.Clear(ctx); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	if log.Len() != 0 {
		t.Fatalf("expected empty log, got %d records", log.Len())
	}
}

func TestListReturnsClones(t *testing.T) {
	ctx := context.Background()
	log := NewLog(10)
	if err := log.Save(ctx, NewRecord("a", "b", "m", "general")); err != nil {
		t.Fatalf("save error: %v", err)
	}

	records, _ := log.List(ctx)
	records[0].Summary = "mutated"

	again, _ := log.List(ctx)
	if again[0].Summary != "b" {
		t.Error("mutating a listed record must not affect the log")
	}
}
